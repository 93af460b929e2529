// Package money formats and converts decimal currency amounts.
package money

import "github.com/shopspring/decimal"

// Format renders an amount with exactly two decimals, e.g. "24.98".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MinorUnits converts to cents, rounding half away from zero.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
