package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozavala/Clix-sub000/internal/core"
)

func collectionRow(rateID int64, taxable, tax string) core.TaxRow {
	return core.TaxRow{
		RecordType:    core.RecordCollection,
		TaxRateID:     rateID,
		RateName:      "IVA",
		RatePercent:   decimal.RequireFromString("15"),
		TaxableAmount: decimal.RequireFromString(taxable),
		TaxAmount:     decimal.RequireFromString(tax),
	}
}

func paymentRow(rateID int64, taxable, tax string) core.TaxRow {
	row := collectionRow(rateID, taxable, tax)
	row.RecordType = core.RecordPayment
	return row
}

func TestSummarizeTaxRows_PayableBalance(t *testing.T) {
	// One collection of 200 and one payment of 80 gives net 120, payable.
	rows := []core.TaxRow{
		collectionRow(1, "1333.33", "200"),
		paymentRow(1, "533.33", "80"),
	}

	summary := core.SummarizeTaxRows(rows)
	if summary.TaxCollectedTotal.StringFixed(2) != "200.00" {
		t.Errorf("collected: want 200.00, got %s", summary.TaxCollectedTotal)
	}
	if summary.TaxPaidTotal.StringFixed(2) != "80.00" {
		t.Errorf("paid: want 80.00, got %s", summary.TaxPaidTotal)
	}
	if summary.NetTaxBalance.StringFixed(2) != "120.00" {
		t.Errorf("net: want 120.00, got %s", summary.NetTaxBalance)
	}
	if summary.BalanceStatus != core.BalancePayable {
		t.Errorf("status: want payable, got %s", summary.BalanceStatus)
	}
}

func TestSummarizeTaxRows_RefundableBalance(t *testing.T) {
	rows := []core.TaxRow{
		collectionRow(1, "100.00", "15.00"),
		paymentRow(1, "400.00", "60.00"),
	}

	summary := core.SummarizeTaxRows(rows)
	if summary.NetTaxBalance.StringFixed(2) != "-45.00" {
		t.Errorf("net: want -45.00, got %s", summary.NetTaxBalance)
	}
	if summary.BalanceStatus != core.BalanceRefundable {
		t.Errorf("status: want refundable, got %s", summary.BalanceStatus)
	}
}

func TestSummarizeTaxRows_Empty(t *testing.T) {
	summary := core.SummarizeTaxRows(nil)
	if !summary.TaxCollectedTotal.IsZero() || !summary.TaxPaidTotal.IsZero() || !summary.NetTaxBalance.IsZero() {
		t.Errorf("empty stream should summarize to zero: %+v", summary)
	}
	// Zero net counts as payable by the sign convention (net >= 0).
	if summary.BalanceStatus != core.BalancePayable {
		t.Errorf("status: want payable for zero net, got %s", summary.BalanceStatus)
	}
}

func TestSumSummaries_AnnualEqualsSumOfMonthlies(t *testing.T) {
	// Simulate 12 monthly summaries with awkward amounts; the annual summary
	// must equal their arithmetic sum exactly, not approximately.
	var monthlies []core.TaxSummary
	expectedCollected := decimal.Zero
	expectedPaid := decimal.Zero
	for month := 1; month <= 12; month++ {
		collected := decimal.NewFromInt(int64(month)).Mul(decimal.RequireFromString("33.33"))
		paid := decimal.NewFromInt(int64(13 - month)).Mul(decimal.RequireFromString("17.77"))
		rows := []core.TaxRow{
			collectionRow(1, "0", collected.String()),
			paymentRow(1, "0", paid.String()),
		}
		monthlies = append(monthlies, core.SummarizeTaxRows(rows))
		expectedCollected = expectedCollected.Add(collected)
		expectedPaid = expectedPaid.Add(paid)
	}

	annual := core.SumSummaries(monthlies...)
	if !annual.TaxCollectedTotal.Equal(expectedCollected) {
		t.Errorf("annual collected: want %s, got %s", expectedCollected, annual.TaxCollectedTotal)
	}
	if !annual.TaxPaidTotal.Equal(expectedPaid) {
		t.Errorf("annual paid: want %s, got %s", expectedPaid, annual.TaxPaidTotal)
	}
	if !annual.NetTaxBalance.Equal(expectedCollected.Sub(expectedPaid)) {
		t.Errorf("annual net mismatch: %s", annual.NetTaxBalance)
	}
}

func TestBreakdownTaxRows_GroupsByRate(t *testing.T) {
	rows := []core.TaxRow{
		collectionRow(1, "1000.00", "150.00"),
		paymentRow(1, "200.00", "30.00"),
		collectionRow(2, "500.00", "25.00"),
	}
	rows[2].RateName = "IVA reducido"
	rows[2].RatePercent = decimal.RequireFromString("5")

	breakdown := core.BreakdownTaxRows(rows)
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 rate groups, got %d", len(breakdown))
	}

	first := breakdown[0]
	if first.TaxRateID != 1 {
		t.Fatalf("breakdown must be ordered by rate id, got %d first", first.TaxRateID)
	}
	if first.TaxableBase.StringFixed(2) != "1200.00" {
		t.Errorf("rate 1 taxable base: want 1200.00, got %s", first.TaxableBase)
	}
	if first.TaxCollected.StringFixed(2) != "150.00" || first.TaxPaid.StringFixed(2) != "30.00" {
		t.Errorf("rate 1 collected/paid wrong: %+v", first)
	}
	if first.NetTaxBalance.StringFixed(2) != "120.00" {
		t.Errorf("rate 1 net: want 120.00, got %s", first.NetTaxBalance)
	}

	second := breakdown[1]
	if second.TaxRateID != 2 || second.TaxCollected.StringFixed(2) != "25.00" || !second.TaxPaid.IsZero() {
		t.Errorf("rate 2 wrong: %+v", second)
	}
}

func TestMergeBreakdowns_ConsistentWithSummedSummaries(t *testing.T) {
	jan := core.BreakdownTaxRows([]core.TaxRow{
		collectionRow(1, "100.00", "15.00"),
		paymentRow(2, "80.00", "4.00"),
	})
	feb := core.BreakdownTaxRows([]core.TaxRow{
		collectionRow(1, "200.00", "30.00"),
		collectionRow(2, "60.00", "3.00"),
	})

	merged := core.MergeBreakdowns(jan, feb)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged rate groups, got %d", len(merged))
	}
	if merged[0].TaxCollected.StringFixed(2) != "45.00" {
		t.Errorf("rate 1 merged collected: want 45.00, got %s", merged[0].TaxCollected)
	}
	if merged[1].TaxCollected.StringFixed(2) != "3.00" || merged[1].TaxPaid.StringFixed(2) != "4.00" {
		t.Errorf("rate 2 merged wrong: %+v", merged[1])
	}
	if merged[1].NetTaxBalance.StringFixed(2) != "-1.00" {
		t.Errorf("rate 2 merged net: want -1.00, got %s", merged[1].NetTaxBalance)
	}
}

func TestValidateRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if err := core.ValidateRange(start, end); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := core.ValidateRange(end, start); err == nil {
		t.Error("inverted range accepted")
	}
	if err := core.ValidateRange(time.Time{}, end); err == nil {
		t.Error("zero start accepted")
	}

	var verr *core.ValidationError
	if err := core.ValidateRange(end, start); !errors.As(err, &verr) {
		t.Errorf("expected *ValidationError, got %T", err)
	}
}

func TestValidateMonth(t *testing.T) {
	if err := core.ValidateMonth(2026, 6); err != nil {
		t.Errorf("valid month rejected: %v", err)
	}
	for _, month := range []int{0, 13, -1} {
		if err := core.ValidateMonth(2026, month); err == nil {
			t.Errorf("month %d accepted", month)
		}
	}
	if err := core.ValidateMonth(1500, 6); err == nil {
		t.Error("implausible year accepted")
	}
}

func TestMonthPeriod_CalendarBounds(t *testing.T) {
	p := core.MonthPeriod(2026, 2)
	if p.Start.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("february start: got %s", p.Start)
	}
	if p.End.Format("2006-01-02") != "2026-02-28" {
		t.Errorf("february end: got %s", p.End)
	}

	p = core.MonthPeriod(2024, 2)
	if p.End.Format("2006-01-02") != "2024-02-29" {
		t.Errorf("leap february end: got %s", p.End)
	}

	p = core.MonthPeriod(2026, 12)
	if p.End.Format("2006-01-02") != "2026-12-31" {
		t.Errorf("december end: got %s", p.End)
	}
}
