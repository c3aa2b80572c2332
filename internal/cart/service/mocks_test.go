package service

import (
	"context"
	"sync"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/cache"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/repository"
	catalogdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockCartRepository implements repository.CartRepository with a single
// in-memory cart, enough for service-level behavior.
type MockCartRepository struct {
	Cart    *domain.Cart
	GetErr  error
	Created bool
}

func (m *MockCartRepository) GetCart(_ context.Context, _ uuid.UUID) (*domain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.Cart, nil
}

func (m *MockCartRepository) CreateCart(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	m.Created = true
	m.Cart = &domain.Cart{ID: uuid.New(), UserID: userID, Version: 1}
	return m.Cart, nil
}

func (m *MockCartRepository) AddItem(_ context.Context, _ uuid.UUID, item domain.CartItem) error {
	if m.Cart == nil {
		return repository.ErrCartNotFound
	}
	for i := range m.Cart.Items {
		existing := &m.Cart.Items[i]
		sameVariant := (existing.VariantID == nil && item.VariantID == nil) ||
			(existing.VariantID != nil && item.VariantID != nil && *existing.VariantID == *item.VariantID)
		if existing.ProductID == item.ProductID && sameVariant {
			existing.Quantity += item.Quantity
			m.Cart.Version++
			return nil
		}
	}
	m.Cart.Items = append(m.Cart.Items, item)
	m.Cart.Version++
	return nil
}

func (m *MockCartRepository) UpdateItemQuantity(_ context.Context, _ uuid.UUID, itemID uuid.UUID, quantity int) error {
	if m.Cart == nil {
		return repository.ErrCartNotFound
	}
	item := m.Cart.FindItem(itemID)
	if item == nil {
		return repository.ErrItemNotFound
	}
	item.Quantity = quantity
	m.Cart.Version++
	return nil
}

func (m *MockCartRepository) RemoveItem(_ context.Context, _ uuid.UUID, itemID uuid.UUID) error {
	if m.Cart == nil {
		return nil
	}
	for i := range m.Cart.Items {
		if m.Cart.Items[i].ID == itemID {
			m.Cart.Items = append(m.Cart.Items[:i], m.Cart.Items[i+1:]...)
			m.Cart.Version++
			return nil
		}
	}
	// Removing an absent item is a no-op success.
	return nil
}

func (m *MockCartRepository) ClearCart(_ context.Context, _ uuid.UUID) error {
	if m.Cart != nil {
		m.Cart.Items = nil
		m.Cart.Version++
	}
	return nil
}

// MockCache implements cache.CartCache
type MockCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.Cart
	Deletes int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[uuid.UUID]*domain.Cart)}
}

func (m *MockCache) Get(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *MockCache) Set(_ context.Context, userID uuid.UUID, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	m.Deletes++
	return nil
}

// MockCatalog implements Catalog
type MockCatalog struct {
	Products map[uuid.UUID]*catalogdomain.Product
	Variants map[uuid.UUID]*catalogdomain.Variant
}

func (m *MockCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	product, ok := m.Products[id]
	if !ok {
		return nil, catalogrepo.ErrProductNotFound
	}
	return product, nil
}

func (m *MockCatalog) GetVariant(_ context.Context, id uuid.UUID) (*catalogdomain.Variant, error) {
	variant, ok := m.Variants[id]
	if !ok {
		return nil, catalogrepo.ErrVariantNotFound
	}
	return variant, nil
}

func newTestCartService(repo *MockCartRepository, cartCache cache.CartCache, catalog *MockCatalog) *CartService {
	return NewCartService(repo, cartCache, catalog, zap.NewNop())
}
