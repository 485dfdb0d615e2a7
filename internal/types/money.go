// README: Money helpers used across modules. Amounts are decimal dollars rounded to cents.
package types

import "github.com/shopspring/decimal"

// Money is a dollar amount.
type Money = decimal.Decimal

// Cents rounds m half away from zero to two decimal places.
func Cents(m Money) Money {
	return m.Round(2)
}

// FormatUSD renders m as "$350", "$13.5" or "-$50", trailing zeros trimmed.
func FormatUSD(m Money) string {
	m = Cents(m)
	if m.IsNegative() {
		return "-$" + m.Neg().String()
	}
	return "$" + m.String()
}

// Percent renders a fraction as a percentage with one decimal, e.g. 0.05 -> "5.0%".
func Percent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
