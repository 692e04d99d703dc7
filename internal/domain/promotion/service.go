package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/domain/pagination"
)

var hundred = decimal.NewFromInt(100)

// CreateRequest holds the input for creating a promotion.
type CreateRequest struct {
	Name               string
	DiscountPercentage decimal.Decimal
	ValidUntil         time.Time
	ProductIDs         []int64
}

// Service implements the promotion engine. It is the single writer of the
// discount price field that the order orchestrator reads; overwrites follow
// last-writer-wins with no stacking accounting.
type Service struct {
	promos   Repository
	products catalog.Repository
	lg       *zap.Logger
	now      func() time.Time
}

// NewService creates a promotion Service.
func NewService(promos Repository, products catalog.Repository, lg *zap.Logger) *Service {
	return &Service{
		promos:   promos,
		products: products,
		lg:       lg,
		now:      time.Now,
	}
}

// Create persists the promotion in inactive state. Product prices are not
// touched until Apply is called.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Promotion, error) {
	p := &Promotion{
		Name:               req.Name,
		DiscountPercentage: req.DiscountPercentage,
		ValidUntil:         req.ValidUntil,
		IsActive:           false,
		ProductIDs:         req.ProductIDs,
	}
	if err := s.promos.Insert(ctx, p); err != nil {
		return nil, errors.Wrap(err, "insert promotion")
	}
	return p, nil
}

// Get returns a promotion by id.
func (s *Service) Get(ctx context.Context, id int64) (*Promotion, error) {
	return s.promos.GetByID(ctx, id)
}

// List returns promotions with offset/limit pagination (1-indexed pages).
func (s *Service) List(ctx context.Context, page, limit int) ([]Promotion, error) {
	skip, err := pagination.Offset(page, limit)
	if err != nil {
		return nil, err
	}
	return s.promos.List(ctx, skip, limit)
}

// Apply writes the promotion's discount onto every applicable product and
// marks the promotion active. Fails with ErrNotFound when the promotion is
// missing and ErrExpired when its validity window has passed. An existing
// discount on a product is overwritten with a warning, not an error.
func (s *Service) Apply(ctx context.Context, id int64) error {
	promo, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if promo.Expired(s.now()) {
		return ErrExpired
	}

	for _, productID := range promo.ProductIDs {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return errors.Wrapf(err, "get product %d", productID)
		}
		if product.DiscountPrice != nil {
			s.lg.Warn("product already discounted, overwriting",
				zap.Int64("product_id", productID),
				zap.String("old_discount_price", product.DiscountPrice.String()),
			)
		}
		discounted := product.Price.Sub(product.Price.Mul(promo.DiscountPercentage).Div(hundred))
		if err := s.products.SetDiscountPrice(ctx, productID, discounted); err != nil {
			return errors.Wrapf(err, "set discount price for product %d", productID)
		}
	}

	if err := s.promos.SetActive(ctx, id, true); err != nil {
		return errors.Wrap(err, "activate promotion")
	}
	return nil
}

// Deactivate marks the promotion inactive and resets the discount price to
// unset on every applicable product.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	promo, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.promos.SetActive(ctx, id, false); err != nil {
		return errors.Wrap(err, "deactivate promotion")
	}
	if err := s.products.ClearDiscountPrices(ctx, promo.ProductIDs); err != nil {
		return errors.Wrap(err, "clear discount prices")
	}
	return nil
}

// Delete removes the promotion record and resets the discount price on every
// applicable product, same as Deactivate plus removal.
func (s *Service) Delete(ctx context.Context, id int64) error {
	promo, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.promos.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete promotion")
	}
	if err := s.products.ClearDiscountPrices(ctx, promo.ProductIDs); err != nil {
		return errors.Wrap(err, "clear discount prices")
	}
	return nil
}

// ClearExpired marks every promotion past its validity end as inactive, then
// clears the discount price for the union of ALL known promotions' products,
// not just the expired ones. The breadth matches the historical behaviour and
// is intentional: an expiry sweep resets the whole discounted surface.
func (s *Service) ClearExpired(ctx context.Context) error {
	promos, err := s.promos.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list promotions")
	}

	now := s.now()
	var union []int64
	seen := make(map[int64]struct{})
	for i := range promos {
		p := &promos[i]
		if p.Expired(now) && p.IsActive {
			if err := s.promos.SetActive(ctx, p.ID, false); err != nil {
				return errors.Wrapf(err, "deactivate promotion %d", p.ID)
			}
		}
		for _, id := range p.ProductIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}

	if len(union) == 0 {
		return nil
	}
	if err := s.products.ClearDiscountPrices(ctx, union); err != nil {
		return errors.Wrap(err, "clear discount prices")
	}
	return nil
}
