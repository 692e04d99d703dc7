// Package shipping estimates delivery fees and issues tracking identifiers.
package shipping

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Method is one of the fixed shipping options offered at checkout.
type Method string

const (
	MethodStandard  Method = "Standard"
	MethodFast      Method = "Fast"
	MethodSuperFast Method = "SuperFast"
)

// Valid reports whether m is one of the supported shipping methods.
func (m Method) Valid() bool {
	switch m {
	case MethodStandard, MethodFast, MethodSuperFast:
		return true
	default:
		return false
	}
}

// InvalidMethodError indicates a shipping method outside the supported set.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("invalid shipping method %q", e.Method)
}

// trackingIDLength is the length of issued tracking identifiers.
const trackingIDLength = 7

const trackingChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Flat fees in VND. Carrier integration would replace this table.
var fees = map[Method]decimal.Decimal{
	MethodStandard:  decimal.NewFromInt(20000),
	MethodFast:      decimal.NewFromInt(40000),
	MethodSuperFast: decimal.NewFromInt(60000),
}

// Estimator resolves shipping fees from the static fee table and issues
// tracking identifiers.
type Estimator struct{}

// NewEstimator returns a flat-fee Estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// EstimateCost returns the flat fee for the given method. Province, district
// and address are accepted for future geo-based pricing but do not affect the
// fee today. Unknown methods fail with InvalidMethodError.
func (e *Estimator) EstimateCost(province, district, address string, method Method) (decimal.Decimal, error) {
	fee, ok := fees[method]
	if !ok {
		return decimal.Decimal{}, &InvalidMethodError{Method: string(method)}
	}
	return fee, nil
}

// IssueTrackingID returns a fresh random 7-character uppercase alphanumeric
// identifier. Uniqueness against previously issued ids is best-effort only;
// there is no collision check.
func (e *Estimator) IssueTrackingID() string {
	buf := make([]byte, trackingIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(trackingChars))))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; fall back to a fixed character rather than panic.
			buf[i] = trackingChars[0]
			continue
		}
		buf[i] = trackingChars[n.Int64()]
	}
	return string(buf)
}
