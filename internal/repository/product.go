package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/catalog"
)

const (
	productColumns = `id, name, price, discount_price, colors, storage_options, storage_modifiers,
		stock, is_best_seller, is_featured, is_new_arrival, description, images`

	getProductByIDSQL  = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductsByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`
	listProductsSQL    = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	insertProductSQL = `INSERT INTO products (name, price, discount_price, colors, storage_options,
		storage_modifiers, stock, is_best_seller, is_featured, is_new_arrival, description, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	setDiscountPriceSQL    = `UPDATE products SET discount_price = $2 WHERE id = $1`
	clearDiscountPricesSQL = `UPDATE products SET discount_price = NULL WHERE id = ANY($1)`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns all products ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Insert persists a new product and assigns its id.
func (r *ProductRepository) Insert(ctx context.Context, p *catalog.Product) error {
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.Price, p.DiscountPrice, p.Colors, p.StorageOptions, p.StorageModifiers,
		p.Stock, p.IsBestSeller, p.IsFeatured, p.IsNewArrival, p.Description, p.Images,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting product %q: %w", p.Name, err)
	}
	return nil
}

// SetDiscountPrice overwrites the discount price of a single product.
func (r *ProductRepository) SetDiscountPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, setDiscountPriceSQL, id, price)
	if err != nil {
		return fmt.Errorf("setting discount price for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ClearDiscountPrices resets the discount price to NULL for every given id.
func (r *ProductRepository) ClearDiscountPrices(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, clearDiscountPricesSQL, ids); err != nil {
		return fmt.Errorf("clearing discount prices: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.DiscountPrice, &p.Colors, &p.StorageOptions,
		&p.StorageModifiers, &p.Stock, &p.IsBestSeller, &p.IsFeatured, &p.IsNewArrival,
		&p.Description, &p.Images,
	)
	return p, err
}
