package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the state of a stock reservation
type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusReleased  ReservationStatus = "released"
	StatusExpired   ReservationStatus = "expired"
)

// ItemRef identifies either a product or one of its specific variants.
// When VariantID is set the stock is tracked at the variant level.
type ItemRef struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

// Key returns the ledger key for the referenced stock pool.
func (r ItemRef) Key() string {
	if r.VariantID != nil {
		return "variant:" + r.VariantID.String()
	}
	return "product:" + r.ProductID.String()
}

// ReservationItem represents a single stock debit within a reservation
type ReservationItem struct {
	Ref      ItemRef
	Quantity int
}

// Reservation represents stock held for an in-flight order conversion
type Reservation struct {
	ID        string
	OrderRef  string
	Items     []ReservationItem
	Status    ReservationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired checks if the reservation has expired
func (r *Reservation) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// StockInfo contains stock information for a product or variant
type StockInfo struct {
	Key      string
	Total    int
	Reserved int
}

// Available returns the available stock (total - reserved)
func (s StockInfo) Available() int {
	return s.Total - s.Reserved
}
