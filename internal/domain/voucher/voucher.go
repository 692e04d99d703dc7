// Package voucher manages single-use, code-based order discounts.
package voucher

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a voucher code does not exist.
	ErrNotFound = errors.New("voucher not found")
	// ErrAlreadyUsed is returned when a redemption loses the race on a code
	// that another order consumed first.
	ErrAlreadyUsed = errors.New("voucher already used")
)

// CodeLength is the length of generated voucher codes.
const CodeLength = 6

// Voucher is a single-use discount code. It is applicable to any product and
// binds to the first user that successfully redeems it.
type Voucher struct {
	ID                 int64
	Code               string
	Name               string
	Description        string
	DiscountPercentage decimal.Decimal
	ExpiresAt          time.Time
	IsActive           bool
	IsUsed             bool
	// UserID is empty until the first successful redemption.
	UserID    string
	CreatedAt time.Time
}

// Usable reports whether the voucher can still be redeemed: active, unused,
// and not yet expired.
func (v *Voucher) Usable(now time.Time) bool {
	return v.IsActive && !v.IsUsed && now.Before(v.ExpiresAt)
}

// Repository defines persistence for vouchers.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	// CodeExists reports whether the code is already stored, regardless of
	// the voucher's state.
	CodeExists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, v *Voucher) error
	SetActive(ctx context.Context, code string, active bool) error
	Delete(ctx context.Context, code string) error
	ListCodes(ctx context.Context, skip, take int) ([]string, error)
}
