package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry. DiscountPrice is nil when no promotion or admin
// discount is in effect; when set and positive it overrides Price.
type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal

	// Variant axes. Colors and StorageOptions are ordered; StorageModifiers is
	// parallel to StorageOptions (one multiplicative modifier per option,
	// 1.0 meaning no surcharge). An empty axis means "unconstrained".
	Colors           []string
	StorageOptions   []string
	StorageModifiers []decimal.Decimal

	Stock        int
	IsBestSeller bool
	IsFeatured   bool
	IsNewArrival bool

	Description string
	Images      []string
}

// EffectivePrice returns the discount price when set and positive, otherwise
// the base price. Order lines freeze this value at order time.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}

// ModifierFor returns the storage modifier for the given storage option.
// It reports false when the option is not declared on the product.
func (p *Product) ModifierFor(storage string) (decimal.Decimal, bool) {
	for i, opt := range p.StorageOptions {
		if opt == storage {
			if i < len(p.StorageModifiers) {
				return p.StorageModifiers[i], true
			}
			return decimal.NewFromInt(1), true
		}
	}
	return decimal.Decimal{}, false
}

// Repository defines catalog persistence. Reads are used by the order
// orchestrator; the discount-price writes belong to the promotion engine.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	List(ctx context.Context) ([]Product, error)

	// SetDiscountPrice overwrites the discount price of a single product.
	SetDiscountPrice(ctx context.Context, id int64, price decimal.Decimal) error
	// ClearDiscountPrices resets the discount price to unset for every given id.
	// Missing ids are skipped, not reported.
	ClearDiscountPrices(ctx context.Context, ids []int64) error
}
