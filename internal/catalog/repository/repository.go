package repository

import (
	"context"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// ProductRepository defines the catalog data operations the rest of the
// system depends on. Consumers define this interface, not the postgres
// implementation.
type ProductRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error)
	UpdateVariantPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*domain.Variant, error)
	RecomputeMinPrice(ctx context.Context, productID uuid.UUID) error
}
