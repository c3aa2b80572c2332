package cache

import (
	"context"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/google/uuid"
)

var ErrCacheMiss = errors.New("cart not found in cache")

// CartCache is a read-through cache in front of the cart repository.
// Writes to the cart must invalidate the corresponding entry explicitly.
type CartCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	Set(ctx context.Context, userID uuid.UUID, cart *domain.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
