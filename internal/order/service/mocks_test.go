package service

import (
	"context"
	"time"

	cartdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	catalogdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/store"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockOrderRepository implements repository.OrderRepository for testing
type MockOrderRepository struct {
	CreatedOrder *domain.Order          // captures the order passed to CreateOrder
	CreatedSrc   *repository.CartSource // captures the cart source
	CreateErr    error

	Orders  map[uuid.UUID]*domain.Order
	ListRes []*domain.Order
	Active  bool

	UpdateStatusErr  error
	UpdatedFrom      domain.OrderStatus
	UpdatedTo        domain.OrderStatus
	UpdatedPatch     repository.StatusPatch
	PaymentUpdateErr error
	PaymentFrom      domain.PaymentStatus
	PaymentTo        domain.PaymentStatus
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, order *domain.Order, src *repository.CartSource) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedOrder = order
	m.CreatedSrc = src
	return nil
}

func (m *MockOrderRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *MockOrderRepository) ListOrdersByUserID(_ context.Context, _ uuid.UUID, limit int) ([]*domain.Order, error) {
	if limit < len(m.ListRes) {
		return m.ListRes[:limit], nil
	}
	return m.ListRes, nil
}

func (m *MockOrderRepository) HasActiveOrder(_ context.Context, _ uuid.UUID) (bool, error) {
	return m.Active, nil
}

func (m *MockOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus, patch repository.StatusPatch) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.UpdatedFrom = from
	m.UpdatedTo = to
	m.UpdatedPatch = patch
	if order, ok := m.Orders[id]; ok {
		order.Status = to
	}
	return nil
}

func (m *MockOrderRepository) UpdatePaymentStatus(_ context.Context, id uuid.UUID, from, to domain.PaymentStatus) error {
	if m.PaymentUpdateErr != nil {
		return m.PaymentUpdateErr
	}
	m.PaymentFrom = from
	m.PaymentTo = to
	if order, ok := m.Orders[id]; ok {
		order.PaymentStatus = to
	}
	return nil
}

func (m *MockOrderRepository) GetUnprocessedEvents(_ context.Context, _ int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *MockOrderRepository) MarkEventAsProcessed(_ context.Context, _ int64) error {
	return nil
}

// MockCartStore implements CartStore for testing
type MockCartStore struct {
	Cart        *cartdomain.Cart
	GetErr      error
	Invalidated bool
}

func (m *MockCartStore) GetCart(_ context.Context, _ uuid.UUID) (*cartdomain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Cart, nil
}

func (m *MockCartStore) Invalidate(_ context.Context, _ uuid.UUID) error {
	m.Invalidated = true
	return nil
}

// MockCatalog implements Catalog for testing
type MockCatalog struct {
	Products map[uuid.UUID]*catalogdomain.Product
	Variants map[uuid.UUID]*catalogdomain.Variant
	Err      error
}

func (m *MockCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	product, ok := m.Products[id]
	if !ok {
		return nil, catalogrepo.ErrProductNotFound
	}
	return product, nil
}

func (m *MockCatalog) GetVariant(_ context.Context, id uuid.UUID) (*catalogdomain.Variant, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	variant, ok := m.Variants[id]
	if !ok {
		return nil, catalogrepo.ErrVariantNotFound
	}
	return variant, nil
}

// newTestOrderService wires an OrderService with mocks and a real in-memory
// stock ledger, so reservation semantics are exercised end to end.
func newTestOrderService(
	repo *MockOrderRepository,
	carts *MockCartStore,
	catalog *MockCatalog,
	ledger store.StockLedger,
	taxRate string,
) *OrderService {
	return NewOrderService(
		repo,
		carts,
		NewCatalogHandler(catalog, 5*time.Second),
		NewStockHandler(ledger, 5*time.Second),
		mustDecimal(taxRate),
		mustDecimal("0"),
		zap.NewNop(),
	)
}
