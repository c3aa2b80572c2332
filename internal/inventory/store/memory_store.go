package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/domain"
	"github.com/google/uuid"
)

const (
	// ReservationTTL is how long a reservation is valid before auto-expiring
	ReservationTTL = 5 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 30 * time.Second
)

// MemoryStore implements StockLedger with in-memory storage
type MemoryStore struct {
	mu           sync.RWMutex
	stocks       map[string]*domain.StockInfo   // ledger key -> stock info
	reservations map[string]*domain.Reservation // reservationID -> reservation

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewMemoryStore creates a new in-memory stock ledger
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		stocks:       make(map[string]*domain.StockInfo),
		reservations: make(map[string]*domain.Reservation),
		stopCleanup:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// cleanupLoop periodically checks and expires old reservations
func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireReservations()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireReservations finds and expires all reservations past their TTL
func (s *MemoryStore) expireReservations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reservation := range s.reservations {
		if reservation.Status == domain.StatusReserved && reservation.IsExpired() {
			reservation.Status = domain.StatusExpired
			for _, item := range reservation.Items {
				s.stocks[item.Ref.Key()].Reserved -= item.Quantity
			}
		}
	}
}

// GetStock returns stock information for the given item refs
func (s *MemoryStore) GetStock(_ context.Context, refs []domain.ItemRef) ([]domain.StockInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockInfo, 0, len(refs))
	for _, ref := range refs {
		if stock, exists := s.stocks[ref.Key()]; exists {
			result = append(result, *stock)
		}
	}
	return result, nil
}

// Reserve holds stock for all items under a single lock, so concurrent
// conversions for the same item cannot oversell.
func (s *MemoryStore) Reserve(_ context.Context, orderRef string, items []domain.ReservationItem) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate all items have sufficient stock
	for _, item := range items {
		stock, exists := s.stocks[item.Ref.Key()]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrStockNotFound, item.Ref.Key())
		}
		if stock.Available() < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.Ref.Key())
		}
	}

	// Second pass: reserve stock for all items
	for _, item := range items {
		s.stocks[item.Ref.Key()].Reserved += item.Quantity
	}

	now := time.Now()
	reservation := &domain.Reservation{
		ID:        uuid.New().String(),
		OrderRef:  orderRef,
		Items:     items,
		Status:    domain.StatusReserved,
		CreatedAt: now,
		ExpiresAt: now.Add(ReservationTTL),
	}

	s.reservations[reservation.ID] = reservation
	return reservation, nil
}

// Confirm finalizes a reservation after the order commit
func (s *MemoryStore) Confirm(_ context.Context, reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, exists := s.reservations[reservationID]
	if !exists {
		return ErrReservationNotFound
	}

	if reservation.Status != domain.StatusReserved {
		return ErrInvalidStatus
	}

	if reservation.IsExpired() {
		return ErrReservationExpired
	}

	// Deduct from total stock (reserved already holds the quantity)
	for _, item := range reservation.Items {
		stock := s.stocks[item.Ref.Key()]
		stock.Total -= item.Quantity
		stock.Reserved -= item.Quantity
	}

	reservation.Status = domain.StatusConfirmed
	return nil
}

// Release cancels a reservation when the conversion aborts
func (s *MemoryStore) Release(_ context.Context, reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, exists := s.reservations[reservationID]
	if !exists {
		return ErrReservationNotFound
	}

	if reservation.Status != domain.StatusReserved {
		return ErrInvalidStatus
	}

	// Return reserved stock to available pool
	for _, item := range reservation.Items {
		s.stocks[item.Ref.Key()].Reserved -= item.Quantity
	}

	reservation.Status = domain.StatusReleased
	return nil
}

// SetStock sets the stock level for an item
func (s *MemoryStore) SetStock(_ context.Context, ref domain.ItemRef, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stocks[ref.Key()] = &domain.StockInfo{
		Key:      ref.Key(),
		Total:    quantity,
		Reserved: 0,
	}
	return nil
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
