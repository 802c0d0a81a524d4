// Package money holds the decimal arithmetic helpers shared by the pricing
// and inventory code. Amounts are shopspring decimals end to end; binary
// floats never enter the financial path.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Zero is the zero amount.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Round normalizes an amount to 2 fractional digits, rounding half up.
// Intermediate arithmetic keeps the full decimal precision; only display
// values pass through here.
func Round(d decimal.Decimal) decimal.Decimal {
	// shopspring rounds half away from zero, which is half-up for the
	// non-negative amounts produced by the calculator.
	return d.Round(2)
}

// Percent returns d × pct / 100 at full precision.
func Percent(d, pct decimal.Decimal) decimal.Decimal {
	return d.Mul(pct).Div(hundred)
}

// IsPercentage reports whether pct lies within [0, 100].
func IsPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// Format renders an amount with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
