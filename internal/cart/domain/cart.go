package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AddedAt   time.Time       `json:"added_at"`
}

type Totals struct {
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	Amount        decimal.Decimal `json:"amount"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Totals recomputes the cart totals from its items. Totals are never stored
// or incrementally mutated, so they cannot drift from the line items.
func (c *Cart) Totals() Totals {
	amount := decimal.Zero
	quantity := 0
	for _, item := range c.Items {
		amount = amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		quantity += item.Quantity
	}
	return Totals{
		ItemCount:     len(c.Items),
		TotalQuantity: quantity,
		Amount:        amount,
	}
}

// FindItem returns the cart item with the given id, or nil.
func (c *Cart) FindItem(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
