package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techzone/storefront/internal/domain/voucher"
)

const (
	voucherColumns = `id, code, name, description, discount_percentage, expires_at,
		is_active, is_used, COALESCE(user_id, ''), created_at`

	findVoucherByCodeSQL = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1`
	voucherCodeExistsSQL = `SELECT EXISTS (SELECT 1 FROM vouchers WHERE code = $1)`
	listVoucherCodesSQL  = `SELECT code FROM vouchers ORDER BY id OFFSET $1 LIMIT $2`

	insertVoucherSQL = `INSERT INTO vouchers (code, name, description, discount_percentage,
		expires_at, is_active, is_used) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	setVoucherActiveSQL = `UPDATE vouchers SET is_active = $2 WHERE code = $1`
	deleteVoucherSQL    = `DELETE FROM vouchers WHERE code = $1`
)

var _ voucher.Repository = (*VoucherRepository)(nil)

// VoucherRepository implements voucher.Repository backed by PostgreSQL.
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// NewVoucherRepository returns a VoucherRepository that uses the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// FindByCode returns the voucher for the given code, or voucher.ErrNotFound.
func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	rows, err := r.pool.Query(ctx, findVoucherByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding voucher %q: %w", code, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}
		return nil, fmt.Errorf("finding voucher %q: %w", code, err)
	}
	return &v, nil
}

// CodeExists reports whether the code is already stored.
func (r *VoucherRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, voucherCodeExistsSQL, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking voucher code %q: %w", code, err)
	}
	return exists, nil
}

// Insert persists a new voucher and assigns its id.
func (r *VoucherRepository) Insert(ctx context.Context, v *voucher.Voucher) error {
	err := r.pool.QueryRow(ctx, insertVoucherSQL,
		v.Code, v.Name, v.Description, v.DiscountPercentage, v.ExpiresAt, v.IsActive, v.IsUsed,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("inserting voucher %q: %w", v.Code, err)
	}
	return nil
}

// SetActive toggles the active flag, returning voucher.ErrNotFound for
// unknown codes.
func (r *VoucherRepository) SetActive(ctx context.Context, code string, active bool) error {
	tag, err := r.pool.Exec(ctx, setVoucherActiveSQL, code, active)
	if err != nil {
		return fmt.Errorf("setting voucher %q active=%t: %w", code, active, err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

// Delete removes the voucher record.
func (r *VoucherRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deleteVoucherSQL, code)
	if err != nil {
		return fmt.Errorf("deleting voucher %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

// ListCodes returns one page of stored codes ordered by insertion.
func (r *VoucherRepository) ListCodes(ctx context.Context, skip, take int) ([]string, error) {
	rows, err := r.pool.Query(ctx, listVoucherCodesSQL, skip, take)
	if err != nil {
		return nil, fmt.Errorf("listing voucher codes: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var code string
		err := row.Scan(&code)
		return code, err
	})
}

func scanVoucher(row pgx.CollectableRow) (voucher.Voucher, error) {
	var v voucher.Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.Name, &v.Description, &v.DiscountPercentage,
		&v.ExpiresAt, &v.IsActive, &v.IsUsed, &v.UserID, &v.CreatedAt,
	)
	return v, err
}
