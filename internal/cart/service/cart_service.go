package service

import (
	"context"
	"errors"
	"time"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/cache"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/repository"
	catalogdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrVariantMismatch = errors.New("variant does not belong to the given product")
)

// Catalog is the collaborator used to resolve product data and capture the
// unit price when an item is first added.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*catalogdomain.Variant, error)
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog Catalog
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, catalog Catalog, logger *zap.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cartCache,
		catalog: catalog,
		logger:  logger,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one if absent.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID.String(), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.Error(err)) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			cart, errGet = s.repo.CreateCart(ctx, userID)
		}
		if errGet != nil {
			return nil, errGet
		}

		// Set synchronously inside the singleflight so the write cannot race
		// a concurrent mutation's invalidation and cache a stale cart.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			s.logger.Warn("cache set error", zap.Error(errSet))
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem captures the current catalog price and adds the line to the cart.
// Re-adding the same (product, variant) pair merges quantities and keeps the
// originally captured price.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	resolvedProduct, unitPrice, err := s.resolvePrice(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetOrCreateCart(ctx, userID); err != nil {
		return nil, err
	}

	item := domain.CartItem{
		ID:        uuid.New(),
		ProductID: resolvedProduct,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		AddedAt:   time.Now(),
	}
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

// resolvePrice looks up the current catalog price for the product or its
// variant. A variant reference implies its product; a mismatching explicit
// product id is rejected.
func (s *CartService) resolvePrice(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (uuid.UUID, decimal.Decimal, error) {
	if variantID != nil {
		variant, err := s.catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return uuid.Nil, decimal.Zero, err
		}
		if productID != uuid.Nil && productID != variant.ProductID {
			return uuid.Nil, decimal.Zero, ErrVariantMismatch
		}
		return variant.ProductID, variant.Price, nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	return product.ID, product.Price, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity // use RemoveItem to delete a line
	}

	err := s.repo.UpdateItemQuantity(ctx, userID, itemID, quantity)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, repository.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	if err := s.repo.RemoveItem(ctx, userID, itemID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// GetTotals is a pure read: an absent cart yields zero totals and is not
// created as a side effect.
func (s *CartService) GetTotals(ctx context.Context, userID uuid.UUID) (domain.Totals, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.Totals{Amount: decimal.Zero}, nil
	}
	if err != nil {
		return domain.Totals{}, err
	}
	return cart.Totals(), nil
}

// GetCart returns the user's persisted cart without creating one.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return s.repo.GetCart(ctx, userID)
}

// Invalidate drops the user's cached cart. The order conversion calls this
// after clearing the cart inside its transaction.
func (s *CartService) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Delete(ctx, userID)
}

func (s *CartService) invalidateCache(userID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate error", zap.Error(err))
	}
}
