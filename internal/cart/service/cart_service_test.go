package service

import (
	"context"
	"testing"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	catalogdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func catalogWithProduct(price string) (*MockCatalog, *catalogdomain.Product) {
	product := &catalogdomain.Product{
		ID:    uuid.New(),
		Name:  "Widget",
		SKU:   "WID-001",
		Price: mustDecimal(price),
	}
	return &MockCatalog{
		Products: map[uuid.UUID]*catalogdomain.Product{product.ID: product},
		Variants: map[uuid.UUID]*catalogdomain.Variant{},
	}, product
}

func TestGetOrCreateCart_CreatesWhenAbsent(t *testing.T) {
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), &MockCatalog{})

	userID := uuid.New()
	cart, err := svc.GetOrCreateCart(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, repo.Created)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestGetOrCreateCart_CacheHitSkipsRepo(t *testing.T) {
	userID := uuid.New()
	cached := &domain.Cart{ID: uuid.New(), UserID: userID}

	mockCache := NewMockCache()
	require.NoError(t, mockCache.Set(context.Background(), userID, cached))

	// Repo would error if touched.
	repo := &MockCartRepository{GetErr: assert.AnError}
	svc := newTestCartService(repo, mockCache, &MockCatalog{})

	cart, err := svc.GetOrCreateCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, cart.ID)
}

func TestAddItem_CapturesPrice(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	userID := uuid.New()
	cart, err := svc.AddItem(context.Background(), userID, product.ID, nil, 2)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].UnitPrice.Equal(mustDecimal("10.00")))
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// A later catalog price change does not touch the captured price.
	product.Price = mustDecimal("15.00")
	cart, err = svc.AddItem(context.Background(), userID, product.ID, nil, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product merges into one line")
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].UnitPrice.Equal(mustDecimal("10.00")))
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := newTestCartService(&MockCartRepository{}, NewMockCache(), &MockCatalog{})

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newTestCartService(&MockCartRepository{}, NewMockCache(), &MockCatalog{})

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), nil, 1)
	assert.ErrorIs(t, err, catalogrepo.ErrProductNotFound)
}

func TestAddItem_VariantResolvesProduct(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	variant := &catalogdomain.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		Name:      "Blue",
		SKU:       "WID-001-BLU",
		Price:     mustDecimal("12.00"),
	}
	catalog.Variants[variant.ID] = variant

	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	// Variant alone implies the product.
	cart, err := svc.AddItem(context.Background(), uuid.New(), uuid.Nil, &variant.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.ID, cart.Items[0].ProductID)
	assert.True(t, cart.Items[0].UnitPrice.Equal(mustDecimal("12.00")))

	// An explicit product id that contradicts the variant is rejected.
	_, err = svc.AddItem(context.Background(), uuid.New(), uuid.New(), &variant.ID, 1)
	assert.ErrorIs(t, err, ErrVariantMismatch)
}

func TestUpdateItemQuantity(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	userID := uuid.New()
	cart, err := svc.AddItem(context.Background(), userID, product.ID, nil, 2)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItemQuantity(context.Background(), userID, itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = svc.UpdateItemQuantity(context.Background(), userID, itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRemoveItem_InvalidatesCache(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	mockCache := NewMockCache()
	svc := newTestCartService(repo, mockCache, catalog)

	userID := uuid.New()
	cart, err := svc.AddItem(context.Background(), userID, product.ID, nil, 1)
	require.NoError(t, err)

	deletesBefore := mockCache.Deletes
	require.NoError(t, svc.RemoveItem(context.Background(), userID, cart.Items[0].ID))
	assert.Greater(t, mockCache.Deletes, deletesBefore)
	assert.Empty(t, repo.Cart.Items)
}

func TestRemoveItem_AbsentItemIsNoOp(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, product.ID, nil, 1)
	require.NoError(t, err)

	// Removing an id that is not in the cart succeeds and leaves it intact.
	require.NoError(t, svc.RemoveItem(context.Background(), userID, uuid.New()))
	assert.Len(t, repo.Cart.Items, 1)
}

func TestGetOrCreateCart_PopulatesCache(t *testing.T) {
	repo := &MockCartRepository{}
	mockCache := NewMockCache()
	svc := newTestCartService(repo, mockCache, &MockCatalog{})

	userID := uuid.New()
	cart, err := svc.GetOrCreateCart(context.Background(), userID)
	require.NoError(t, err)

	// The cache write completes before the call returns.
	cached, err := mockCache.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, cached.ID)
}

func TestGetTotals(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	userID := uuid.New()

	// Absent cart yields zero totals without creating one.
	totals, err := svc.GetTotals(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.ItemCount)
	assert.True(t, totals.Amount.IsZero())
	assert.False(t, repo.Created)

	_, err = svc.AddItem(context.Background(), userID, product.ID, nil, 3)
	require.NoError(t, err)

	totals, err = svc.GetTotals(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.True(t, totals.Amount.Equal(mustDecimal("30.00")))
}

func TestClearCart(t *testing.T) {
	catalog, product := catalogWithProduct("10.00")
	repo := &MockCartRepository{}
	svc := newTestCartService(repo, NewMockCache(), catalog)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, product.ID, nil, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), userID))
	assert.Empty(t, repo.Cart.Items)

	// Clearing an absent cart is a no-op.
	require.NoError(t, svc.ClearCart(context.Background(), uuid.New()))
}
