// Package promotion manages time-bounded percentage discounts that write a
// discount price onto catalog entries for a fixed set of products.
package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a promotion id does not exist.
	ErrNotFound = errors.New("promotion not found")
	// ErrExpired is returned when applying a promotion past its validity end.
	ErrExpired = errors.New("promotion expired")
)

// Promotion is an admin-created discount campaign. Creation alone never
// touches product prices; Apply is the explicit action that does.
type Promotion struct {
	ID                 int64
	Name               string
	DiscountPercentage decimal.Decimal
	ValidUntil         time.Time
	IsActive           bool
	ProductIDs         []int64
}

// Expired reports whether the promotion's validity window has passed.
func (p *Promotion) Expired(now time.Time) bool {
	return p.ValidUntil.Before(now)
}

// Repository defines persistence for promotions.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Promotion, error)
	List(ctx context.Context, skip, take int) ([]Promotion, error)
	// ListAll returns every promotion, used by the expiry sweep.
	ListAll(ctx context.Context) ([]Promotion, error)
	Insert(ctx context.Context, p *Promotion) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}
