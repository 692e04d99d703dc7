package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineContribution(t *testing.T) {
	l := Line{Quantity: 2, Price: dec("1000"), StorageModifier: dec("1.2")}
	assert.True(t, dec("2400").Equal(l.Contribution()))
}

func TestOrderSubtotalAndTotal(t *testing.T) {
	o := Order{
		ShippingFee: dec("20000"),
		Tax:         dec("120"),
		Lines: []Line{
			{Quantity: 2, Price: dec("1000"), StorageModifier: dec("1.2")},
			{Quantity: 1, Price: dec("500"), StorageModifier: dec("1")},
		},
	}

	assert.True(t, dec("2900").Equal(o.Subtotal()))
	assert.True(t, dec("23020").Equal(o.Total()))

	discount := dec("1450")
	o.VoucherDiscount = &discount
	assert.True(t, dec("21570").Equal(o.Total()))
}

func TestOrderTotal_NoLines(t *testing.T) {
	o := Order{ShippingFee: dec("20000")}
	assert.True(t, decimal.Zero.Equal(o.Subtotal()))
	assert.True(t, dec("20000").Equal(o.Total()))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusDelivering, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}
