package core

import "github.com/shopspring/decimal"

// Fixed-point scales used by the financial core. Stored money is 2 decimal
// places, stored per-unit costs are 4, and apportionment intermediates carry
// 10 so that proportional splits do not drift before the final rounding.
const (
	MoneyScale    int32 = 2
	UnitCostScale int32 = 4
	RatioScale    int32 = 10
)

// MulAt multiplies a and b and rounds the product to the given scale.
func MulAt(a, b decimal.Decimal, scale int32) decimal.Decimal {
	return a.Mul(b).Round(scale)
}

// DivAt divides a by b at the given scale. Division by zero returns zero;
// callers guard the degenerate cases before dividing, this is a backstop.
func DivAt(a, b decimal.Decimal, scale int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, scale)
}

// SumAmounts adds a series of decimals without intermediate rounding.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
