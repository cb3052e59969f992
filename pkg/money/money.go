// Package money handles fixed-point monetary amounts.
//
// Every amount and balance in the ledger is a signed int64 in minor units,
// with a fixed exponent of two decimal places for all currencies. Exchange
// rates are arbitrary-precision decimals; conversions round half away from
// zero (half-up) to the nearest minor unit.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// exponent is the fixed number of fractional digits for every currency.
const exponent = 2

// Parse converts a decimal string such as "315.00" or "-0.5" into minor
// units. Amounts with more than two fractional digits are rejected.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal amount into minor units, rejecting values
// that are not representable at the ledger's fixed exponent.
func FromDecimal(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(exponent)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d, exponent)
	}
	return shifted.IntPart(), nil
}

// ToDecimal converts minor units back into a decimal major-unit amount.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -exponent)
}

// Format renders minor units as a fixed two-decimal string, e.g. 31500 ->
// "315.00".
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(exponent)
}

// Convert applies an exchange rate to a minor-unit amount and rounds the
// result half away from zero to the nearest minor unit.
func Convert(minor int64, rate decimal.Decimal) int64 {
	converted := ToDecimal(minor).Mul(rate)
	return converted.Round(exponent).Shift(exponent).IntPart()
}

// Abs returns the absolute value of a minor-unit amount.
func Abs(minor int64) int64 {
	if minor < 0 {
		return -minor
	}
	return minor
}
