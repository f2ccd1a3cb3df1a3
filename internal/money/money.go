// Package money holds the fixed-point helpers every price computation goes through.
// Amounts and percentages are plain decimal.Decimal values; percentages are expressed
// in percentage points (21 means 21%).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimals a rounded amount keeps.
const Scale = 2

var (
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// Round rounds to two decimals, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns amount × pct / 100 without rounding.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// WithTax adds rate percent to amount when enabled; otherwise amount is returned as is.
func WithTax(amount, rate decimal.Decimal, enabled bool) decimal.Decimal {
	if !enabled {
		return amount
	}
	return amount.Add(Percent(amount, rate))
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Times multiplies a unit amount by an integer quantity.
func Times(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Split divides total into n equal rounded parts. It returns zero when n is not positive.
func Split(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return Round(total.Div(decimal.NewFromInt(int64(n))))
}

// Parse reads a decimal amount from user input.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// FormatPercent renders a percentage without trailing zeros, e.g. "21%" or "-5%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}
