// Package payment defines the payment capture boundary.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the gateway refuses to charge the instrument.
var ErrDeclined = errors.New("payment declined")

// Method is one of the fixed payment options offered at checkout.
type Method string

const (
	MethodCash       Method = "Cash"
	MethodCreditCard Method = "CreditCard"
	MethodVisa       Method = "Visa"
)

// Valid reports whether m is one of the supported payment methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodVisa:
		return true
	default:
		return false
	}
}

// Instrument carries the raw card fields as received from the client. They are
// stored on the order as-is; no vaulting or tokenization is performed.
type Instrument struct {
	CardNumber     string
	CardHolder     string
	CardExpireDate string
	CardCvv        string
}

// Gateway charges an instrument for a final amount. The orchestrator calls it
// exactly once per order, after the total is known and before persistence.
// A failure must abort order creation with nothing committed.
type Gateway interface {
	Charge(ctx context.Context, instrument Instrument, amount decimal.Decimal) error
}

// Sandbox is a placeholder gateway that approves every charge. It stands in
// for a real payment provider integration.
type Sandbox struct{}

var _ Gateway = (*Sandbox)(nil)

// Charge always succeeds.
func (Sandbox) Charge(_ context.Context, _ Instrument, _ decimal.Decimal) error {
	return nil
}
