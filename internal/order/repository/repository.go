package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCartModified  = errors.New("cart was modified since it was read")
	ErrStaleStatus   = errors.New("order status changed concurrently")
)

// CartSource ties an order creation to the cart it consumes. The version is
// the one observed when the conversion read the cart; a mismatch at commit
// time aborts with ErrCartModified.
type CartSource struct {
	UserID  uuid.UUID
	Version int64
}

// StatusPatch carries the per-transition fields written together with a
// status change.
type StatusPatch struct {
	TrackingNumber     *string
	Carrier            *string
	CancellationReason *string
}

// OutboxEvent is a lifecycle event written in the same transaction as the
// state it describes, published asynchronously by the outbox poller.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type OrderRepository interface {
	// CreateOrder persists the order with its frozen items. When src is
	// non-nil the source cart is cleared in the same transaction, guarded
	// by the optimistic version check.
	CreateOrder(ctx context.Context, order *domain.Order, src *CartSource) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error)
	HasActiveOrder(ctx context.Context, userID uuid.UUID) (bool, error)

	// UpdateStatus performs a compare-and-set on the current status: the
	// write only lands if the row still carries `from`. ErrStaleStatus
	// signals a concurrent transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, patch StatusPatch) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus) error

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
