// Package money converts between decimal currency strings and integer
// minor units. Balances and amounts are stored as int64 cents.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(1 << 62)
)

// ParseAmount parses a decimal string such as "10.50" or "10,50" into minor
// units. More than two fractional digits is an error rather than a silent
// rounding.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a currency amount into minor units.
func FromDecimal(d decimal.Decimal) (int64, error) {
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than two decimal places", d.String())
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %s is out of range", d.String())
	}
	return cents.IntPart(), nil
}

// ToDecimal converts minor units into a currency amount.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders minor units with exactly two decimal places, e.g. "-10.50".
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}
