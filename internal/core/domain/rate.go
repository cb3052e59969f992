package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateTable maps currency codes to exchange rates for one base currency:
// table[X] is the amount of X bought by one unit of the base.
type RateTable map[string]decimal.Decimal

// OverrideKey builds the manual-override lookup key for a currency pair.
func OverrideKey(from, to string) string {
	return fmt.Sprintf("%s_%s", from, to)
}

// Classification is one classifier result: candidate labels ranked best
// first. Consumers use only the top label.
type Classification struct {
	Labels []string `json:"labels"`
}

// Top returns the best-ranked label, or "" when the result is malformed.
func (c Classification) Top() string {
	if len(c.Labels) == 0 {
		return ""
	}
	return c.Labels[0]
}
