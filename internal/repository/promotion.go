package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techzone/storefront/internal/domain/promotion"
)

const (
	promotionColumns = `id, name, discount_percentage, valid_until, is_active, product_ids`

	getPromotionByIDSQL = `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`
	listPromotionsSQL   = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY id OFFSET $1 LIMIT $2`
	listAllPromosSQL    = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY id`

	insertPromotionSQL = `INSERT INTO promotions (name, discount_percentage, valid_until, is_active, product_ids)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	setPromotionActiveSQL = `UPDATE promotions SET is_active = $2 WHERE id = $1`
	deletePromotionSQL    = `DELETE FROM promotions WHERE id = $1`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// GetByID returns a promotion by id, or promotion.ErrNotFound.
func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting promotion %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("getting promotion %d: %w", id, err)
	}
	return &p, nil
}

// List returns one page of promotions ordered by id.
func (r *PromotionRepository) List(ctx context.Context, skip, take int) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsSQL, skip, take)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// ListAll returns every promotion.
func (r *PromotionRepository) ListAll(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listAllPromosSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// Insert persists a new promotion and assigns its id.
func (r *PromotionRepository) Insert(ctx context.Context, p *promotion.Promotion) error {
	err := r.pool.QueryRow(ctx, insertPromotionSQL,
		p.Name, p.DiscountPercentage, p.ValidUntil, p.IsActive, p.ProductIDs,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting promotion %q: %w", p.Name, err)
	}
	return nil
}

// SetActive toggles the active flag.
func (r *PromotionRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, setPromotionActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("setting promotion %d active=%t: %w", id, active, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

// Delete removes the promotion record.
func (r *PromotionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deletePromotionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting promotion %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := row.Scan(&p.ID, &p.Name, &p.DiscountPercentage, &p.ValidUntil, &p.IsActive, &p.ProductIDs)
	return p, err
}
