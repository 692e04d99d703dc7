package voucher

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/pagination"
)

// CreateRequest holds the input for creating a voucher.
type CreateRequest struct {
	Name               string
	DiscountPercentage decimal.Decimal
	Description        string
	// ExpiresAt defaults to one month from creation when zero.
	ExpiresAt time.Time
}

// Service implements the voucher engine.
type Service struct {
	repo    Repository
	codegen *CodeGenerator
	now     func() time.Time
}

// NewService creates a voucher Service.
func NewService(repo Repository, codegen *CodeGenerator) *Service {
	return &Service{
		repo:    repo,
		codegen: codegen,
		now:     time.Now,
	}
}

// Create generates a collision-free code and persists a new active, unused
// voucher. It returns the generated code.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	code, err := s.codegen.Generate(ctx)
	if err != nil {
		return "", errors.Wrap(err, "generate code")
	}

	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().AddDate(0, 1, 0)
	}

	v := &Voucher{
		Code:               code,
		Name:               req.Name,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		ExpiresAt:          expiresAt,
		IsActive:           true,
		IsUsed:             false,
	}
	if err := s.repo.Insert(ctx, v); err != nil {
		return "", errors.Wrap(err, "insert voucher")
	}
	return code, nil
}

// Find returns the voucher for the given code.
func (s *Service) Find(ctx context.Context, code string) (*Voucher, error) {
	return s.repo.FindByCode(ctx, code)
}

// IsUsable reports whether the code exists, is active, is unused and has not
// expired. Read-only; redemption happens inside order creation.
func (s *Service) IsUsable(ctx context.Context, code string) (bool, error) {
	v, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return v.Usable(s.now()), nil
}

// Activate re-enables the voucher. Returns ErrNotFound for unknown codes.
func (s *Service) Activate(ctx context.Context, code string) error {
	return s.repo.SetActive(ctx, code, true)
}

// Deactivate disables the voucher. Returns ErrNotFound for unknown codes.
func (s *Service) Deactivate(ctx context.Context, code string) error {
	return s.repo.SetActive(ctx, code, false)
}

// Delete removes the voucher record. Returns ErrNotFound for unknown codes.
func (s *Service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}

// ListCodes returns stored voucher codes with offset/limit pagination
// (1-indexed pages).
func (s *Service) ListCodes(ctx context.Context, page, limit int) ([]string, error) {
	skip, err := pagination.Offset(page, limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCodes(ctx, skip, limit)
}
