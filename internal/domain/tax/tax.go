// Package tax computes order tax from a fixed rate.
package tax

import "github.com/shopspring/decimal"

// DefaultRate is the flat tax rate applied to the post-voucher subtotal.
var DefaultRate = decimal.RequireFromString("0.1")

// Calculator applies a fixed tax rate to a subtotal.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator returns a Calculator with the given rate, e.g. 0.1 for 10%.
func NewCalculator(rate decimal.Decimal) *Calculator {
	return &Calculator{rate: rate}
}

// Rate returns the configured tax rate.
func (c *Calculator) Rate() decimal.Decimal {
	return c.rate
}

// Compute returns subtotal multiplied by the tax rate. Pure; no failure modes.
func (c *Calculator) Compute(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.rate)
}
