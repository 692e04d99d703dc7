package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: dec("1000")}
	assert.True(t, dec("1000").Equal(p.EffectivePrice()))

	discount := dec("800")
	p.DiscountPrice = &discount
	assert.True(t, dec("800").Equal(p.EffectivePrice()))

	// A zero or negative discount price is treated as unset.
	zero := decimal.Zero
	p.DiscountPrice = &zero
	assert.True(t, dec("1000").Equal(p.EffectivePrice()))
}

func TestModifierFor(t *testing.T) {
	p := Product{
		StorageOptions:   []string{"128GB", "256GB", "512GB"},
		StorageModifiers: []decimal.Decimal{dec("1"), dec("1.2")},
	}

	m, ok := p.ModifierFor("256GB")
	require.True(t, ok)
	assert.True(t, dec("1.2").Equal(m))

	// Declared option without a parallel modifier defaults to 1.
	m, ok = p.ModifierFor("512GB")
	require.True(t, ok)
	assert.True(t, dec("1").Equal(m))

	_, ok = p.ModifierFor("1TB")
	assert.False(t, ok)
}
