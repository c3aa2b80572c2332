package store

import (
	"context"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/domain"
)

// Common errors returned by the ledger
var (
	ErrStockNotFound       = errors.New("no stock tracked for item")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrInvalidStatus       = errors.New("invalid reservation status for this operation")
)

// StockLedger is the authoritative source of available quantity per product
// or variant. Reserve must be atomic under concurrency: it either debits all
// requested lines or none of them.
type StockLedger interface {
	// GetStock returns stock information for the given item refs
	GetStock(ctx context.Context, refs []domain.ItemRef) ([]domain.StockInfo, error)

	// Reserve holds stock for all items, reducing availability.
	// Returns ErrInsufficientStock if any line cannot be covered.
	Reserve(ctx context.Context, orderRef string, items []domain.ReservationItem) (*domain.Reservation, error)

	// Confirm finalizes a reservation, permanently deducting stock
	Confirm(ctx context.Context, reservationID string) error

	// Release cancels a reservation, returning stock to the available pool
	Release(ctx context.Context, reservationID string) error

	// SetStock sets the stock level for an item (used for initialization)
	SetStock(ctx context.Context, ref domain.ItemRef, quantity int) error

	// Close shuts down the ledger and any background processes
	Close() error
}
