// Package order implements the order aggregate and the pricing and
// fulfillment orchestration that turns a cart submission into a persisted,
// fully priced order.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/shipping"
)

var (
	// ErrNotFound is returned when an order id does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when a non-admin actor operates on an order
	// they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrEmptyLines is returned when an order is submitted without lines.
	ErrEmptyLines = errors.New("order lines required")
	// ErrInvalidPaymentMethod is returned for payment methods outside the
	// supported set.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Status is the order lifecycle state. PENDING moves to DELIVERING and then
// DELIVERED; CANCELLED is reachable from any non-terminal state. DELIVERED
// and CANCELLED are terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusDelivering Status = "DELIVERING"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDelivering, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Line is one product-variant-quantity entry within an order. Price and
// StorageModifier are frozen at order time and never recomputed, even if the
// product later changes or is deleted.
type Line struct {
	ID              int64
	ProductID       int64
	Quantity        int
	Price           decimal.Decimal
	Color           string
	Storage         string
	StorageModifier decimal.Decimal
}

// Contribution returns the line's share of the subtotal:
// price x quantity x storage modifier.
func (l *Line) Contribution() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Mul(l.StorageModifier)
}

// Order is the aggregate root. Subtotal and Total are derived from the lines
// on read and never stored, so they cannot drift from the rows backing them.
type Order struct {
	ID           string
	UserID       string
	CustomerName string
	Status       Status
	OrderDate    time.Time

	PaymentMethod payment.Method
	Instrument    payment.Instrument

	Province    string
	District    string
	Address     string
	PhoneNumber string

	ShippingMethod shipping.Method
	ShippingFee    decimal.Decimal
	TrackingID     string

	Tax decimal.Decimal

	// VoucherCode and VoucherDiscount are set only when a usable voucher was
	// redeemed at creation time. The discount is an absolute amount frozen on
	// the order, surviving later deletion of the voucher itself.
	VoucherCode     string
	VoucherDiscount *decimal.Decimal

	Lines []Line
}

// Subtotal returns the sum of line contributions before shipping, tax and
// voucher discount.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Lines {
		sum = sum.Add(o.Lines[i].Contribution())
	}
	return sum
}

// Total returns Subtotal + ShippingFee + Tax - VoucherDiscount.
func (o *Order) Total() decimal.Decimal {
	total := o.Subtotal().Add(o.ShippingFee).Add(o.Tax)
	if o.VoucherDiscount != nil {
		total = total.Sub(*o.VoucherDiscount)
	}
	return total
}

// Actor identifies the caller as supplied by the authentication collaborator.
// The orchestrator never authenticates; it only checks ownership.
type Actor struct {
	UserID string
	Admin  bool
}

// Filter holds optional equality filters for order listing, combined with
// AND semantics. Nil fields are ignored.
type Filter struct {
	Status        *Status
	PaymentMethod *payment.Method
	UserID        *string
}

// Repository defines persistence for orders.
type Repository interface {
	// Create persists the order and its lines in a single transaction. When
	// the order carries a voucher code, the same transaction marks the
	// voucher used and binds it to the ordering user, guarded on the voucher
	// being unused; voucher.ErrAlreadyUsed is returned when the guard fails
	// and nothing is committed.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// Update replaces the order row and, when o.Lines is non-nil, its lines.
	Update(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	ListFilter(ctx context.Context, f Filter, skip, take int) ([]Order, error)
	// ListByUser returns every order of the user, without pagination.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
