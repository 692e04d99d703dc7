package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/order"
	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/shipping"
	"github.com/techzone/storefront/internal/domain/voucher"
)

const (
	orderColumns = `id, COALESCE(user_id, ''), customer_name, status, payment_method,
		province, district, address, phone_number, shipping_method, shipping_fee,
		tracking_id, tax, COALESCE(voucher_code, ''), voucher_discount,
		card_number, card_holder, card_expire_date, card_cvv, order_date`

	insertOrderSQL = `INSERT INTO orders (id, user_id, customer_name, status, payment_method,
		province, district, address, phone_number, shipping_method, shipping_fee,
		tracking_id, tax, voucher_code, voucher_discount,
		card_number, card_holder, card_expire_date, card_cvv, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	insertLineSQL = `INSERT INTO order_lines (order_id, product_id, quantity, price, color, storage, storage_modifier)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	redeemVoucherSQL = `UPDATE vouchers SET is_used = TRUE, user_id = NULLIF($2, '')
		WHERE code = $1 AND is_used = FALSE`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getLinesSQL = `SELECT id, order_id, product_id, quantity, price, color, storage, storage_modifier
		FROM order_lines WHERE order_id = ANY($1) ORDER BY id`

	updateOrderSQL = `UPDATE orders SET user_id = NULLIF($2, ''), customer_name = $3, status = $4,
		payment_method = $5, province = $6, district = $7, address = $8, phone_number = $9
		WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
	deleteOrderSQL       = `DELETE FROM orders WHERE id = $1`
	deleteLinesSQL       = `DELETE FROM order_lines WHERE order_id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1::TEXT IS NULL OR status = $1)
		AND ($2::TEXT IS NULL OR payment_method = $2)
		AND ($3::TEXT IS NULL OR user_id = $3)
		ORDER BY order_date, seq OFFSET $4 LIMIT $5`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date, seq`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and its lines in one transaction. When the order
// carries a voucher code, the voucher is marked used in the same transaction
// with a conditional update guarded on is_used = FALSE; losing that race
// rolls everything back and returns voucher.ErrAlreadyUsed.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if o.VoucherCode != "" {
		tag, err := tx.Exec(ctx, redeemVoucherSQL, o.VoucherCode, o.UserID)
		if err != nil {
			return fmt.Errorf("redeeming voucher %q: %w", o.VoucherCode, err)
		}
		if tag.RowsAffected() == 0 {
			return voucher.ErrAlreadyUsed
		}
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, nullable(o.UserID), o.CustomerName, string(o.Status), string(o.PaymentMethod),
		o.Province, o.District, o.Address, o.PhoneNumber, string(o.ShippingMethod), o.ShippingFee,
		o.TrackingID, o.Tax, nullable(o.VoucherCode), o.VoucherDiscount,
		o.Instrument.CardNumber, o.Instrument.CardHolder, o.Instrument.CardExpireDate, o.Instrument.CardCvv,
		o.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		err := tx.QueryRow(ctx, insertLineSQL,
			o.ID, l.ProductID, l.Quantity, l.Price, l.Color, l.Storage, l.StorageModifier,
		).Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("inserting line for product %d: %w", l.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order with its lines, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	orders := []order.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// Update replaces the mutable order fields and, when o.Lines is non-nil,
// replaces the stored lines with the supplied frozen values.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateOrderSQL,
		o.ID, o.UserID, o.CustomerName, string(o.Status), string(o.PaymentMethod),
		o.Province, o.District, o.Address, o.PhoneNumber,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if o.Lines != nil {
		if _, err := tx.Exec(ctx, deleteLinesSQL, o.ID); err != nil {
			return fmt.Errorf("replacing lines of order %q: %w", o.ID, err)
		}
		for i := range o.Lines {
			l := &o.Lines[i]
			err := tx.QueryRow(ctx, insertLineSQL,
				o.ID, l.ProductID, l.Quantity, l.Price, l.Color, l.Storage, l.StorageModifier,
			).Scan(&l.ID)
			if err != nil {
				return fmt.Errorf("inserting line for product %d: %w", l.ProductID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order update %q: %w", o.ID, err)
	}
	return nil
}

// UpdateStatus writes the status field, returning order.ErrNotFound for
// unknown ids.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes the order; its lines cascade.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListFilter returns one page of orders matching the optional filters, in
// insertion order, with lines attached.
func (r *OrderRepository) ListFilter(ctx context.Context, f order.Filter, skip, take int) ([]order.Order, error) {
	var status, method, userID *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	if f.PaymentMethod != nil {
		m := string(*f.PaymentMethod)
		method = &m
	}
	if f.UserID != nil {
		userID = f.UserID
	}

	rows, err := r.pool.Query(ctx, listOrdersSQL, status, method, userID, skip, take)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser returns every order of the user with lines attached.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the lines of all given orders in one query and assigns
// them to their parents.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.pool.Query(ctx, getLinesSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       order.Line
			orderID string
		)
		if err := rows.Scan(&l.ID, &orderID, &l.ProductID, &l.Quantity, &l.Price,
			&l.Color, &l.Storage, &l.StorageModifier); err != nil {
			return fmt.Errorf("scanning order line: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o               order.Order
		status          string
		paymentMethod   string
		shippingMethod  string
		voucherDiscount *decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.CustomerName, &status, &paymentMethod,
		&o.Province, &o.District, &o.Address, &o.PhoneNumber, &shippingMethod, &o.ShippingFee,
		&o.TrackingID, &o.Tax, &o.VoucherCode, &voucherDiscount,
		&o.Instrument.CardNumber, &o.Instrument.CardHolder, &o.Instrument.CardExpireDate, &o.Instrument.CardCvv,
		&o.OrderDate,
	)
	o.Status = order.Status(status)
	o.PaymentMethod = payment.Method(paymentMethod)
	o.ShippingMethod = shipping.Method(shippingMethod)
	o.VoucherDiscount = voucherDiscount
	return o, err
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
