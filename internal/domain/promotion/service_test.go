package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/domain/pagination"
)

// --- Mock implementations ---

type mockPromoRepo struct {
	byID   map[int64]*Promotion
	nextID int64

	lastSkip int
	lastTake int
}

func newPromoRepo(promos ...*Promotion) *mockPromoRepo {
	byID := make(map[int64]*Promotion, len(promos))
	var maxID int64
	for _, p := range promos {
		byID[p.ID] = p
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return &mockPromoRepo{byID: byID, nextID: maxID}
}

func (m *mockPromoRepo) GetByID(_ context.Context, id int64) (*Promotion, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPromoRepo) List(_ context.Context, skip, take int) ([]Promotion, error) {
	m.lastSkip = skip
	m.lastTake = take
	return nil, nil
}

func (m *mockPromoRepo) ListAll(_ context.Context) ([]Promotion, error) {
	var out []Promotion
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPromoRepo) Insert(_ context.Context, p *Promotion) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPromoRepo) SetActive(_ context.Context, id int64, active bool) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (m *mockPromoRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockCatalogRepo struct {
	byID map[int64]*catalog.Product
}

func newCatalogRepo(products ...*catalog.Product) *mockCatalogRepo {
	byID := make(map[int64]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockCatalogRepo{byID: byID}
}

func (m *mockCatalogRepo) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalogRepo) SetDiscountPrice(_ context.Context, id int64, price decimal.Decimal) error {
	p, ok := m.byID[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.DiscountPrice = &price
	return nil
}

func (m *mockCatalogRepo) ClearDiscountPrices(_ context.Context, ids []int64) error {
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			p.DiscountPrice = nil
		}
	}
	return nil
}

// --- Helpers ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(promos Repository, products catalog.Repository) *Service {
	return NewService(promos, products, zap.NewNop())
}

// --- Tests ---

func TestCreate_StartsInactive(t *testing.T) {
	promos := newPromoRepo()
	products := newCatalogRepo(&catalog.Product{ID: 1, Price: dec("100")})
	svc := newTestService(promos, products)

	p, err := svc.Create(context.Background(), CreateRequest{
		Name:               "Summer sale",
		DiscountPercentage: dec("50"),
		ValidUntil:         time.Now().Add(24 * time.Hour),
		ProductIDs:         []int64{1},
	})
	require.NoError(t, err)

	assert.False(t, p.IsActive)
	assert.NotZero(t, p.ID)
	// Product prices untouched until Apply.
	assert.Nil(t, products.byID[1].DiscountPrice)
}

func TestApply_SetsDiscountPrices(t *testing.T) {
	promos := newPromoRepo(&Promotion{
		ID:                 1,
		DiscountPercentage: dec("50"),
		ValidUntil:         time.Now().Add(time.Hour),
		ProductIDs:         []int64{1, 2},
	})
	products := newCatalogRepo(
		&catalog.Product{ID: 1, Price: dec("100")},
		&catalog.Product{ID: 2, Price: dec("250")},
	)
	svc := newTestService(promos, products)

	require.NoError(t, svc.Apply(context.Background(), 1))

	require.NotNil(t, products.byID[1].DiscountPrice)
	assert.True(t, dec("50").Equal(*products.byID[1].DiscountPrice))
	require.NotNil(t, products.byID[2].DiscountPrice)
	assert.True(t, dec("125").Equal(*products.byID[2].DiscountPrice))
	assert.True(t, promos.byID[1].IsActive)
}

func TestApply_OverwritesExistingDiscount(t *testing.T) {
	old := dec("90")
	promos := newPromoRepo(&Promotion{
		ID:                 1,
		DiscountPercentage: dec("20"),
		ValidUntil:         time.Now().Add(time.Hour),
		ProductIDs:         []int64{1},
	})
	products := newCatalogRepo(&catalog.Product{ID: 1, Price: dec("100"), DiscountPrice: &old})
	svc := newTestService(promos, products)

	require.NoError(t, svc.Apply(context.Background(), 1))

	// Last writer wins; the 20% promotion replaces the old discount.
	require.NotNil(t, products.byID[1].DiscountPrice)
	assert.True(t, dec("80").Equal(*products.byID[1].DiscountPrice))
}

func TestApply_Expired(t *testing.T) {
	promos := newPromoRepo(&Promotion{
		ID:                 1,
		DiscountPercentage: dec("50"),
		ValidUntil:         time.Now().Add(-time.Hour),
		ProductIDs:         []int64{1},
	})
	products := newCatalogRepo(&catalog.Product{ID: 1, Price: dec("100")})
	svc := newTestService(promos, products)

	require.ErrorIs(t, svc.Apply(context.Background(), 1), ErrExpired)
	assert.Nil(t, products.byID[1].DiscountPrice)
	assert.False(t, promos.byID[1].IsActive)
}

func TestApply_NotFound(t *testing.T) {
	svc := newTestService(newPromoRepo(), newCatalogRepo())
	require.ErrorIs(t, svc.Apply(context.Background(), 42), ErrNotFound)
}

func TestDeactivate_ClearsDiscounts(t *testing.T) {
	promos := newPromoRepo(&Promotion{
		ID:                 1,
		IsActive:           true,
		DiscountPercentage: dec("50"),
		ValidUntil:         time.Now().Add(time.Hour),
		ProductIDs:         []int64{1},
	})
	discounted := dec("50")
	products := newCatalogRepo(&catalog.Product{ID: 1, Price: dec("100"), DiscountPrice: &discounted})
	svc := newTestService(promos, products)

	require.NoError(t, svc.Deactivate(context.Background(), 1))

	assert.False(t, promos.byID[1].IsActive)
	assert.Nil(t, products.byID[1].DiscountPrice)
}

func TestDelete_RemovesAndClears(t *testing.T) {
	promos := newPromoRepo(&Promotion{
		ID:                 1,
		IsActive:           true,
		DiscountPercentage: dec("50"),
		ValidUntil:         time.Now().Add(time.Hour),
		ProductIDs:         []int64{1},
	})
	discounted := dec("50")
	products := newCatalogRepo(&catalog.Product{ID: 1, Price: dec("100"), DiscountPrice: &discounted})
	svc := newTestService(promos, products)

	require.NoError(t, svc.Delete(context.Background(), 1))

	_, ok := promos.byID[1]
	assert.False(t, ok)
	assert.Nil(t, products.byID[1].DiscountPrice)
}

func TestClearExpired_SweepsWholeDiscountSurface(t *testing.T) {
	promos := newPromoRepo(
		&Promotion{
			ID: 1, IsActive: true,
			DiscountPercentage: dec("50"),
			ValidUntil:         time.Now().Add(-time.Hour),
			ProductIDs:         []int64{1},
		},
		&Promotion{
			ID: 2, IsActive: true,
			DiscountPercentage: dec("20"),
			ValidUntil:         time.Now().Add(time.Hour),
			ProductIDs:         []int64{2},
		},
	)
	d1, d2 := dec("50"), dec("80")
	products := newCatalogRepo(
		&catalog.Product{ID: 1, Price: dec("100"), DiscountPrice: &d1},
		&catalog.Product{ID: 2, Price: dec("100"), DiscountPrice: &d2},
	)
	svc := newTestService(promos, products)

	require.NoError(t, svc.ClearExpired(context.Background()))

	// Only the expired promotion is deactivated, but the sweep resets the
	// discount price on every promoted product, active promotions included.
	assert.False(t, promos.byID[1].IsActive)
	assert.True(t, promos.byID[2].IsActive)
	assert.Nil(t, products.byID[1].DiscountPrice)
	assert.Nil(t, products.byID[2].DiscountPrice)
}

func TestList_Pagination(t *testing.T) {
	promos := newPromoRepo()
	svc := newTestService(promos, newCatalogRepo())

	_, err := svc.List(context.Background(), 2, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, promos.lastSkip)
	assert.Equal(t, 15, promos.lastTake)

	var invalid *pagination.InvalidError
	_, err = svc.List(context.Background(), 0, 10)
	require.ErrorAs(t, err, &invalid)
	_, err = svc.List(context.Background(), 1, -1)
	require.ErrorAs(t, err, &invalid)
}
