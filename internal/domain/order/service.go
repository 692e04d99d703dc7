package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/domain/pagination"
	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/shipping"
	"github.com/techzone/storefront/internal/domain/voucher"
)

var hundred = decimal.NewFromInt(100)

// ShippingEstimator resolves shipping fees and tracking ids.
// *shipping.Estimator satisfies it.
type ShippingEstimator interface {
	EstimateCost(province, district, address string, method shipping.Method) (decimal.Decimal, error)
	IssueTrackingID() string
}

// TaxCalculator computes tax from a subtotal. *tax.Calculator satisfies it.
type TaxCalculator interface {
	Compute(subtotal decimal.Decimal) decimal.Decimal
}

// VoucherSource looks up vouchers by code. voucher.Repository satisfies it.
type VoucherSource interface {
	FindByCode(ctx context.Context, code string) (*voucher.Voucher, error)
}

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID int64
	Quantity  int
	Color     string
	Storage   string
	// StorageModifier is the per-variant surcharge the client was quoted; it
	// must match the product's current modifier for the selected option.
	StorageModifier decimal.Decimal
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	// UserID is empty for anonymous checkout.
	UserID       string
	CustomerName string

	Province    string
	District    string
	Address     string
	PhoneNumber string

	PaymentMethod  payment.Method
	ShippingMethod shipping.Method
	Instrument     payment.Instrument

	// VoucherCode is optional; an unusable code is silently ignored.
	VoucherCode string

	Lines []LineRequest
}

// UpdateRequest is a partial-field merge: only non-nil fields overwrite the
// existing order. Lines, when non-nil, fully replace the stored lines with
// the frozen values supplied; pricing is never re-run and payment is never
// re-charged.
type UpdateRequest struct {
	Province      *string
	District      *string
	Address       *string
	PaymentMethod *payment.Method
	Status        *Status
	Lines         []Line
}

// Service is the order orchestrator. It coordinates catalog validation,
// shipping, tax, voucher redemption, payment capture and persistence.
type Service struct {
	products catalog.Repository
	shipping ShippingEstimator
	tax      TaxCalculator
	vouchers VoucherSource
	gateway  payment.Gateway
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products catalog.Repository,
	shipping ShippingEstimator,
	tax TaxCalculator,
	vouchers VoucherSource,
	gateway payment.Gateway,
	orders Repository,
) *Service {
	return &Service{
		products: products,
		shipping: shipping,
		tax:      tax,
		vouchers: vouchers,
		gateway:  gateway,
		orders:   orders,
		now:      time.Now,
	}
}

// Create runs the full order pipeline: shipping fee and tracking id, per-line
// variant validation and price freezing, optional voucher redemption, tax,
// payment capture, then a single transactional persist in PENDING state.
// A payment failure aborts the whole operation with nothing committed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	fee, err := s.shipping.EstimateCost(req.Province, req.District, req.Address, req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		CustomerName:   req.CustomerName,
		Status:         StatusPending,
		OrderDate:      s.now(),
		PaymentMethod:  req.PaymentMethod,
		Instrument:     req.Instrument,
		Province:       req.Province,
		District:       req.District,
		Address:        req.Address,
		PhoneNumber:    req.PhoneNumber,
		ShippingMethod: req.ShippingMethod,
		ShippingFee:    fee,
		TrackingID:     s.shipping.IssueTrackingID(),
	}

	subtotal := decimal.Zero
	for _, lr := range req.Lines {
		line, err := s.buildLine(ctx, lr)
		if err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
		subtotal = subtotal.Add(line.Contribution())
	}

	// Voucher redemption is a soft-fail: an unusable code leaves the order
	// unpriced by it rather than aborting.
	if req.VoucherCode != "" {
		discount, code, err := s.voucherDiscount(ctx, req.VoucherCode, subtotal)
		if err != nil {
			return nil, err
		}
		if code != "" {
			o.VoucherCode = code
			o.VoucherDiscount = &discount
			subtotal = subtotal.Sub(discount)
		}
	}

	o.Tax = s.tax.Compute(subtotal)

	total := subtotal.Add(fee).Add(o.Tax)
	if err := s.gateway.Charge(ctx, req.Instrument, total); err != nil {
		return nil, errors.Wrap(err, "charge payment")
	}

	// The repository marks the voucher used in the same transaction, so a
	// failed insert leaves the voucher untouched.
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// buildLine validates one requested line against the catalog and freezes its
// unit price and storage modifier.
func (s *Service) buildLine(ctx context.Context, lr LineRequest) (Line, error) {
	if lr.Quantity < 1 {
		return Line{}, &InvalidQuantityError{ProductID: lr.ProductID}
	}

	p, err := s.products.GetByID(ctx, lr.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Line{}, &ProductNotFoundError{ProductID: lr.ProductID}
		}
		return Line{}, errors.Wrapf(err, "get product %d", lr.ProductID)
	}

	// An empty declared axis means unconstrained: any value is accepted.
	if len(p.Colors) > 0 && !contains(p.Colors, lr.Color) {
		return Line{}, &InvalidColorError{ProductID: lr.ProductID, Color: lr.Color}
	}

	modifier := lr.StorageModifier
	if len(p.StorageOptions) > 0 {
		want, ok := p.ModifierFor(lr.Storage)
		if !ok {
			return Line{}, &InvalidStorageError{ProductID: lr.ProductID, Storage: lr.Storage}
		}
		// Guards against a stale client quoting an outdated surcharge.
		if !want.Equal(lr.StorageModifier) {
			return Line{}, &StorageModifierMismatchError{
				ProductID: lr.ProductID,
				Storage:   lr.Storage,
				Supplied:  lr.StorageModifier.String(),
				Expected:  want.String(),
			}
		}
		modifier = want
	}

	return Line{
		ProductID:       lr.ProductID,
		Quantity:        lr.Quantity,
		Price:           p.EffectivePrice(),
		Color:           lr.Color,
		Storage:         lr.Storage,
		StorageModifier: modifier,
	}, nil
}

// voucherDiscount re-checks usability at creation time and computes the
// absolute discount. An unknown or unusable code returns an empty code and no
// error; infrastructure failures propagate.
func (s *Service) voucherDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, string, error) {
	v, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, voucher.ErrNotFound) {
			return decimal.Decimal{}, "", nil
		}
		return decimal.Decimal{}, "", errors.Wrap(err, "find voucher")
	}
	if !v.Usable(s.now()) {
		return decimal.Decimal{}, "", nil
	}
	discount := subtotal.Mul(v.DiscountPercentage).Div(hundred)
	return discount, v.Code, nil
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Update merges non-nil fields of req into the stored order. Variant
// validation, pricing and payment are not re-run.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Province != nil {
		o.Province = *req.Province
	}
	if req.District != nil {
		o.District = *req.District
	}
	if req.Address != nil {
		o.Address = *req.Address
	}
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.Valid() {
			return nil, ErrInvalidPaymentMethod
		}
		o.PaymentMethod = *req.PaymentMethod
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errors.Errorf("invalid status %q", *req.Status)
		}
		o.Status = *req.Status
	}
	if req.Lines != nil {
		o.Lines = req.Lines
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// Delete removes an order. Admins may delete any order; the owning user may
// delete their own order before fulfillment starts.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Admin {
		if o.UserID == "" || o.UserID != actor.UserID {
			return ErrForbidden
		}
		if o.Status != StatusPending {
			return ErrForbidden
		}
	}
	return s.orders.Delete(ctx, id)
}

// Process marks the order as DELIVERING. Admin operation; the only check is
// that the order exists.
func (s *Service) Process(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusDelivering)
}

// Deliver marks the order as DELIVERED.
func (s *Service) Deliver(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusDelivered)
}

// Cancel marks the order as CANCELLED, from any source status. A non-admin
// actor may only cancel their own order.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Admin && o.UserID != actor.UserID {
		return ErrForbidden
	}
	return s.orders.UpdateStatus(ctx, id, StatusCancelled)
}

func (s *Service) setStatus(ctx context.Context, id string, status Status) error {
	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return err
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

// ListFilter returns orders matching the optional equality filters, paginated
// with 1-indexed pages (skip = (page-1)*limit).
func (s *Service) ListFilter(ctx context.Context, f Filter, page, limit int) ([]Order, error) {
	skip, err := pagination.Offset(page, limit)
	if err != nil {
		return nil, err
	}
	return s.orders.ListFilter(ctx, f, skip, limit)
}

// ListByCustomer returns one page of a customer's orders.
func (s *Service) ListByCustomer(ctx context.Context, userID string, page, limit int) ([]Order, error) {
	return s.ListFilter(ctx, Filter{UserID: &userID}, page, limit)
}

// TotalValueFromCustomer sums Total across all of a customer's orders. No
// status filter is applied: cancelled orders count, matching the historical
// behaviour.
func (s *Service) TotalValueFromCustomer(ctx context.Context, userID string) (decimal.Decimal, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "list orders")
	}
	sum := decimal.Zero
	for i := range orders {
		sum = sum.Add(orders[i].Total())
	}
	return sum, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
