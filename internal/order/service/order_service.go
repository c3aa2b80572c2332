package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cartdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	cartrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/repository"
	inventorydomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartStore is the slice of the cart subsystem the conversion engine needs:
// reading the cart (with its version) and dropping the cached copy after the
// cart was cleared inside the conversion transaction.
type CartStore interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cartdomain.Cart, error)
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type RequestLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

type CreateOrderRequest struct {
	FromCart bool
	Lines    []RequestLine // used when FromCart is false

	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Notes           string
	ShippingCost    *decimal.Decimal // nil means the configured default
}

type OrderService struct {
	repo            repository.OrderRepository
	carts           CartStore
	catalog         *CatalogHandler
	stock           *StockHandler
	taxRate         decimal.Decimal
	defaultShipping decimal.Decimal
	logger          *zap.Logger
}

func NewOrderService(
	repo repository.OrderRepository,
	carts CartStore,
	catalog *CatalogHandler,
	stock *StockHandler,
	taxRate decimal.Decimal,
	defaultShipping decimal.Decimal,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		repo:            repo,
		carts:           carts,
		catalog:         catalog,
		stock:           stock,
		taxRate:         taxRate,
		defaultShipping: defaultShipping,
		logger:          logger,
	}
}

// resolvedLine is a validated order line with its catalog snapshot.
type resolvedLine struct {
	ref      inventorydomain.ItemRef
	quantity int
	price    decimal.Decimal
	name     string
	desc     string
	sku      string
}

// CreateOrder converts the user's cart (or an explicit line list) into an
// immutable, priced order. All persistence happens in one transaction; a
// failure at any step leaves the cart untouched and no order visible.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.ShippingAddress) == "" || strings.TrimSpace(req.BillingAddress) == "" {
		return nil, ErrMissingAddress
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, ErrMissingPaymentMethod
	}

	var (
		lines []resolvedLine
		src   *repository.CartSource
		err   error
	)
	if req.FromCart {
		lines, src, err = s.resolveCartLines(ctx, userID)
	} else {
		lines, err = s.resolveAdHocLines(ctx, req.Lines)
	}
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	items := make([]domain.OrderItem, len(lines))
	reservationItems := make([]inventorydomain.ReservationItem, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		itemSubtotal := line.price.Mul(decimal.NewFromInt(int64(line.quantity)))
		items[i] = domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   line.ref.ProductID,
			VariantID:   line.ref.VariantID,
			Name:        line.name,
			Description: line.desc,
			SKU:         line.sku,
			Price:       line.price,
			Quantity:    line.quantity,
			Subtotal:    itemSubtotal,
		}
		reservationItems[i] = inventorydomain.ReservationItem{
			Ref:      line.ref,
			Quantity: line.quantity,
		}
		subtotal = subtotal.Add(itemSubtotal)
	}

	shipping := s.defaultShipping
	if req.ShippingCost != nil {
		shipping = *req.ShippingCost
	}
	tax := subtotal.Mul(s.taxRate).Round(2)

	order := &domain.Order{
		ID:              orderID,
		Number:          generateOrderNumber(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingCost:    shipping,
		Total:           subtotal.Add(tax).Add(shipping),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Items:           items,
	}

	// Reserve stock before persisting. The ledger debits all lines
	// atomically or none; any failure here aborts the whole conversion.
	reservation, err := s.stock.Reserve(ctx, orderID.String(), reservationItems)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateOrder(ctx, order, src); err != nil {
		s.releaseReservation(reservation.ID)
		return nil, err
	}

	// The order is committed; finalize the debit. A failure here cannot be
	// rolled into the transaction anymore, so it is logged and left to the
	// reservation TTL to reconcile.
	if err := s.stock.Confirm(ctx, reservation.ID); err != nil {
		s.logger.Error("failed to confirm stock reservation",
			zap.String("order_id", orderID.String()),
			zap.String("reservation_id", reservation.ID),
			zap.Error(err))
	}

	if src != nil {
		if err := s.carts.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate cart cache",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}

	return order, nil
}

// resolveCartLines reads the user's cart and snapshots the catalog data for
// each line. The captured cart price is kept for money; the catalog is
// consulted for existence and descriptive fields only (the stock ledger is
// the authority on availability).
func (s *OrderService) resolveCartLines(ctx context.Context, userID uuid.UUID) ([]resolvedLine, *repository.CartSource, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, cartrepo.ErrCartNotFound) {
			return nil, nil, ErrEmptyCart
		}
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, nil, ErrEmptyCart
	}

	lines := make([]resolvedLine, len(cart.Items))
	for i, item := range cart.Items {
		line, err := s.snapshotLine(ctx, item.ProductID, item.VariantID, item.Quantity)
		if err != nil {
			return nil, nil, err
		}
		line.price = item.UnitPrice // captured at add-time, not the current catalog price
		lines[i] = line
	}

	return lines, &repository.CartSource{UserID: userID, Version: cart.Version}, nil
}

func (s *OrderService) resolveAdHocLines(ctx context.Context, reqLines []RequestLine) ([]resolvedLine, error) {
	if len(reqLines) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]resolvedLine, len(reqLines))
	for i, reqLine := range reqLines {
		if reqLine.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		line, err := s.snapshotLine(ctx, reqLine.ProductID, reqLine.VariantID, reqLine.Quantity)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}

// snapshotLine freezes the catalog's current name/description/sku/price for
// one line.
func (s *OrderService) snapshotLine(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int) (resolvedLine, error) {
	if variantID != nil {
		variant, err := s.catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return resolvedLine{}, err
		}
		product, err := s.catalog.GetProduct(ctx, variant.ProductID)
		if err != nil {
			return resolvedLine{}, err
		}
		return resolvedLine{
			ref:      inventorydomain.ItemRef{ProductID: variant.ProductID, VariantID: variantID},
			quantity: quantity,
			price:    variant.Price,
			name:     product.Name + " - " + variant.Name,
			desc:     product.Description,
			sku:      variant.SKU,
		}, nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return resolvedLine{}, err
	}
	return resolvedLine{
		ref:      inventorydomain.ItemRef{ProductID: product.ID},
		quantity: quantity,
		price:    product.Price,
		name:     product.Name,
		desc:     product.Description,
		sku:      product.SKU,
	}, nil
}

// releaseReservation compensates a failed conversion. Uses a fresh context:
// the request context may already be cancelled, and the held stock must be
// returned regardless.
func (s *OrderService) releaseReservation(reservationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.stock.Release(ctx, reservationID); err != nil {
		s.logger.Error("failed to release stock reservation",
			zap.String("reservation_id", reservationID),
			zap.Error(err))
	}
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
