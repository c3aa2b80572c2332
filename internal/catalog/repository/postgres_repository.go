package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT id, name, description, sku, price, stock, created_at, updated_at
	          FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.SKU,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	query := `SELECT id, product_id, name, sku, price, stock, created_at, updated_at
	          FROM product_variants WHERE id = $1`

	var v domain.Variant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.SKU,
		&v.Price,
		&v.Stock,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query variant by id: %w", err)
	}
	return &v, nil
}

func (r *Repository) UpdateVariantPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*domain.Variant, error) {
	query := `UPDATE product_variants SET price = $2, updated_at = NOW()
	          WHERE id = $1
	          RETURNING id, product_id, name, sku, price, stock, created_at, updated_at`

	var v domain.Variant
	err := r.db.QueryRowContext(ctx, query, id, price).Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.SKU,
		&v.Price,
		&v.Stock,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update variant price: %w", err)
	}
	return &v, nil
}

// RecomputeMinPrice sets the product's listed price to the minimum of its
// variants' prices. Products without variants keep their own price.
func (r *Repository) RecomputeMinPrice(ctx context.Context, productID uuid.UUID) error {
	query := `UPDATE products p
	          SET price = sub.min_price, updated_at = NOW()
	          FROM (SELECT MIN(price) AS min_price FROM product_variants WHERE product_id = $1) sub
	          WHERE p.id = $1 AND sub.min_price IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("recompute min price: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("recompute min price rows: %w", err)
	}
	return nil
}
