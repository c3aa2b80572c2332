package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `SELECT id, user_id, version, created_at, updated_at FROM carts WHERE user_id = $1`

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart by user id: %w", err)
	}

	items, err := r.loadItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *Repository) loadItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `SELECT id, product_id, variant_id, quantity, unit_price, added_at
	          FROM cart_items WHERE cart_id = $1 ORDER BY added_at`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.VariantID,
			&item.Quantity,
			&item.UnitPrice,
			&item.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// CreateCart creates an empty cart for the user if one does not exist yet.
// Safe to call concurrently for the same user.
func (r *Repository) CreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `INSERT INTO carts (id, user_id, version, created_at, updated_at)
	          VALUES ($1, $2, 0, NOW(), NOW())
	          ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return r.GetCart(ctx, userID)
}

// AddItem inserts the line or, when the same (product, variant) pair is
// already in the cart, merges the quantities. The unit price captured on
// first add is kept: a re-add must not silently change an in-progress
// cart's totals.
func (r *Repository) AddItem(ctx context.Context, userID uuid.UUID, item domain.CartItem) error {
	return r.withCartLock(ctx, userID, func(tx *sql.Tx, cartID uuid.UUID) error {
		query := `INSERT INTO cart_items (id, cart_id, product_id, variant_id, quantity, unit_price, added_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7)
		          ON CONFLICT (cart_id, product_id, variant_id)
		          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

		_, err := tx.ExecContext(ctx, query,
			item.ID,
			cartID,
			item.ProductID,
			item.VariantID,
			item.Quantity,
			item.UnitPrice,
			time.Now())
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}
		return nil
	})
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, quantity int) error {
	return r.withCartLock(ctx, userID, func(tx *sql.Tx, cartID uuid.UUID) error {
		query := `UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`

		res, err := tx.ExecContext(ctx, query, itemID, cartID, quantity)
		if err != nil {
			return fmt.Errorf("update cart item quantity: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update cart item rows: %w", err)
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}

// RemoveItem is idempotent: removing an absent item is a no-op success,
// since the end state is the same either way.
func (r *Repository) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	err := r.withCartLock(ctx, userID, func(tx *sql.Tx, cartID uuid.UUID) error {
		query := `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`
		if _, err := tx.ExecContext(ctx, query, itemID, cartID); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	return err
}

// ClearCart removes all items. The cart row itself stays; carts are cleared
// in place, never hard-deleted.
func (r *Repository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	err := r.withCartLock(ctx, userID, func(tx *sql.Tx, cartID uuid.UUID) error {
		query := `DELETE FROM cart_items WHERE cart_id = $1`
		if _, err := tx.ExecContext(ctx, query, cartID); err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	return err
}

// withCartLock runs fn inside a transaction holding the user's cart row
// lock and bumps the cart version on success. The row lock serializes cart
// mutation against a concurrent order conversion for the same user; the
// version bump lets the conversion detect a cart that changed under it.
func (r *Repository) withCartLock(ctx context.Context, userID uuid.UUID, fn func(tx *sql.Tx, cartID uuid.UUID) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cartID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartNotFound
	}
	if err != nil {
		return fmt.Errorf("lock cart row: %w", err)
	}

	if err := fn(tx, cartID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET version = version + 1, updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("bump cart version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cart tx: %w", err)
	}
	return nil
}
