package service

import (
	"context"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInvalidPrice = errors.New("price must not be negative")

// PricePublisher notifies the pricing worker that a product's variant prices
// changed and its minimum price needs recomputing.
type PricePublisher interface {
	PublishPriceChanged(ctx context.Context, productID uuid.UUID) error
}

type CatalogService struct {
	repo      repository.ProductRepository
	publisher PricePublisher
	logger    *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, publisher PricePublisher, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	return s.repo.GetVariant(ctx, id)
}

// UpdateVariantPrice changes a variant's price and publishes a recomputation
// message for the owning product. Publishing happens after the write; a lost
// message only delays the min-price refresh until the next variant change.
func (s *CatalogService) UpdateVariantPrice(ctx context.Context, variantID uuid.UUID, price decimal.Decimal) (*domain.Variant, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	variant, err := s.repo.UpdateVariantPrice(ctx, variantID, price)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPriceChanged(ctx, variant.ProductID); err != nil {
		s.logger.Warn("failed to publish price change",
			zap.String("product_id", variant.ProductID.String()),
			zap.Error(err))
	}

	return variant, nil
}
