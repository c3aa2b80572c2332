package repository

import (
	"context"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/google/uuid"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the postgres implementation.
//
// Every mutation bumps the cart's version; the order conversion uses that
// version for its optimistic concurrency check.
type CartRepository interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	CreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}
