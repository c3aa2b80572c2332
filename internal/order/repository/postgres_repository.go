package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder writes the order, its frozen items and an order.created outbox
// event in one transaction. When the order consumes a cart, the cart is
// cleared inside the same transaction: either everything lands or the cart
// stays intact.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order, src *CartSource) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if src != nil {
		if err := clearSourceCart(ctx, tx, src); err != nil {
			return err
		}
	}

	insertOrder := `INSERT INTO orders (id, order_number, user_id, status, payment_status,
	                    subtotal, tax, shipping_cost, total,
	                    shipping_address, billing_address, payment_method, notes,
	                    created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	                RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, insertOrder,
		order.ID,
		order.Number,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.Subtotal,
		order.Tax,
		order.ShippingCost,
		order.Total,
		order.ShippingAddress,
		order.BillingAddress,
		order.PaymentMethod,
		order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	insertItem := `INSERT INTO order_items (id, order_id, product_id, variant_id, name, description, sku, price, quantity, subtotal)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if _, err := tx.ExecContext(ctx, insertItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Name,
			item.Description,
			item.SKU,
			item.Price,
			item.Quantity,
			item.Subtotal,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	payload := map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.Number,
		"user_id":      order.UserID,
		"total":        order.Total,
		"item_count":   len(order.Items),
	}
	if err := insertOutboxEvent(ctx, tx, order.ID, "order.created", payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

// clearSourceCart empties the cart that produced the order, failing with
// ErrCartModified when the cart's version no longer matches the one observed
// at read time (a concurrent add/update slipped in).
func clearSourceCart(ctx context.Context, tx *sql.Tx, src *CartSource) error {
	var cartID uuid.UUID
	var version int64
	err := tx.QueryRowContext(ctx,
		`SELECT id, version FROM carts WHERE user_id = $1 FOR UPDATE`, src.UserID).
		Scan(&cartID, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartModified
	}
	if err != nil {
		return fmt.Errorf("lock cart row: %w", err)
	}

	if version != src.Version {
		return ErrCartModified
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET version = version + 1, updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("bump cart version: %w", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateID uuid.UUID, eventType string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		aggregateID, eventType, payloadJSON); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, user_id, status, payment_status,
	subtotal, tax, shipping_cost, total,
	shipping_address, billing_address, payment_method, notes,
	tracking_number, carrier, cancellation_reason,
	created_at, updated_at, processed_at, shipped_at, delivered_at, cancelled_at`

func scanOrder(row interface{ Scan(...interface{}) error }, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.Subtotal,
		&order.Tax,
		&order.ShippingCost,
		&order.Total,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.PaymentMethod,
		&order.Notes,
		&order.TrackingNumber,
		&order.Carrier,
		&order.CancellationReason,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ProcessedAt,
		&order.ShippedAt,
		&order.DeliveredAt,
		&order.CancelledAt,
	)
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx, query, id), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, variant_id, name, description, sku, price, quantity, subtotal
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.Name,
			&item.Description,
			&item.SKU,
			&item.Price,
			&item.Quantity,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *Repository) HasActiveOrder(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
	              SELECT 1 FROM orders
	              WHERE user_id = $1 AND status NOT IN ($2, $3, $4))`

	var active bool
	err := r.db.QueryRowContext(ctx, query, userID,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled, domain.OrderStatusRefunded).
		Scan(&active)
	if err != nil {
		return false, fmt.Errorf("query active order: %w", err)
	}
	return active, nil
}

// UpdateStatus compare-and-sets the order status. The WHERE clause carries
// the expected current status, so a concurrent transition makes this a
// zero-row update instead of silently resurrecting an illegal state.
// Timestamps are set through COALESCE and therefore at most once.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, patch StatusPatch) error {
	set := []string{"status = $1", "updated_at = NOW()"}
	args := []interface{}{to}

	switch to {
	case domain.OrderStatusProcessing:
		set = append(set, "processed_at = COALESCE(processed_at, NOW())")
	case domain.OrderStatusShipped:
		set = append(set, "shipped_at = COALESCE(shipped_at, NOW())")
		if patch.TrackingNumber != nil {
			args = append(args, *patch.TrackingNumber)
			set = append(set, fmt.Sprintf("tracking_number = $%d", len(args)))
		}
		if patch.Carrier != nil {
			args = append(args, *patch.Carrier)
			set = append(set, fmt.Sprintf("carrier = $%d", len(args)))
		}
	case domain.OrderStatusDelivered:
		set = append(set, "delivered_at = COALESCE(delivered_at, NOW())")
	case domain.OrderStatusCancelled:
		set = append(set, "cancelled_at = COALESCE(cancelled_at, NOW())")
		if patch.CancellationReason != nil {
			args = append(args, *patch.CancellationReason)
			set = append(set, fmt.Sprintf("cancellation_reason = $%d", len(args)))
		}
	}

	args = append(args, id, from)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d AND status = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status rows: %w", err)
	}
	if affected == 0 {
		return r.staleOrMissing(ctx, id)
	}

	payload := map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
	}
	if err := insertOutboxEvent(ctx, tx, id, "order.status_changed", payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status tx: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2 AND payment_status = $3`,
		to, id, from)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status rows: %w", err)
	}
	if affected == 0 {
		return r.staleOrMissing(ctx, id)
	}

	payload := map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
	}
	if err := insertOutboxEvent(ctx, tx, id, "order.payment_status_changed", payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment status tx: %w", err)
	}
	return nil
}

// staleOrMissing disambiguates a zero-row CAS update.
func (r *Repository) staleOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check order existence: %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrStaleStatus
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM order_events WHERE processed_at IS NULL ORDER BY created_at LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.EventType,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
