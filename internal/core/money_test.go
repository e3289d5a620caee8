package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ozavala/Clix-sub000/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMulAt_RoundsToScale(t *testing.T) {
	got := core.MulAt(dec("3"), dec("0.3333333333"), core.UnitCostScale)
	if got.String() != "1" {
		t.Errorf("MulAt: want 1, got %s", got)
	}

	got = core.MulAt(dec("10.555"), dec("2"), core.MoneyScale)
	if got.StringFixed(2) != "21.11" {
		t.Errorf("MulAt money: want 21.11, got %s", got.StringFixed(2))
	}
}

func TestDivAt_ZeroDenominatorIsZero(t *testing.T) {
	if got := core.DivAt(dec("100"), decimal.Zero, core.RatioScale); !got.IsZero() {
		t.Errorf("DivAt by zero: want 0, got %s", got)
	}
	if got := core.DivAt(dec("1"), dec("3"), core.RatioScale); got.String() != "0.3333333333" {
		t.Errorf("DivAt ratio: want 0.3333333333, got %s", got)
	}
}

func TestSumAmounts_NoIntermediateRounding(t *testing.T) {
	got := core.SumAmounts(dec("0.005"), dec("0.005"), dec("0.99"))
	if got.StringFixed(2) != "1.00" {
		t.Errorf("SumAmounts: want 1.00, got %s", got.StringFixed(2))
	}
	if !core.SumAmounts().IsZero() {
		t.Error("empty sum should be zero")
	}
}
