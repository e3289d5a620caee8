package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozavala/Clix-sub000/internal/core"
)

// postTaxActivity posts documents for both tenants across several months of
// 2026 so report queries have something to aggregate.
func postTaxActivity(t *testing.T, ledger *core.Ledger) {
	t.Helper()
	ctx := context.Background()

	// Tenant 1, March 2026: collect 200, pay 80, net 120 payable.
	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := testInvoice(1000, 1, march, "1333.33", "200.00")
	if _, err := ledger.Post(ctx, doc, saleAccounts); err != nil {
		t.Fatalf("post sale: %v", err)
	}

	rateID := int64(1)
	supplierID := int64(1)
	creatorID := int64(1)
	bill := core.SourceDocument{
		Kind:            core.DocumentPurchase,
		Reference:       core.DocumentRef{Kind: core.RefBill, ID: 1001},
		TenantID:        1,
		ReferenceNumber: "BILL-1001",
		Date:            march.AddDate(0, 0, 5),
		Subtotal:        decimal.RequireFromString("533.33"),
		TaxAmount:       decimal.RequireFromString("80.00"),
		TotalAmount:     decimal.RequireFromString("613.33"),
		TaxRateID:       &rateID,
		CounterpartyID:  &supplierID,
		CreatorID:       &creatorID,
	}
	if _, err := ledger.Post(ctx, bill, purchaseAccounts); err != nil {
		t.Fatalf("post bill: %v", err)
	}

	// Tenant 1, June 2026: another collection of 45.
	june := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	if _, err := ledger.Post(ctx, testInvoice(1002, 1, june, "300.00", "45.00"), saleAccounts); err != nil {
		t.Fatalf("post june sale: %v", err)
	}

	// Tenant 2, March 2026: a collection that must never leak into tenant 1.
	other := testInvoice(2000, 2, march, "100.00", "15.00")
	customerID := int64(3)
	creator2 := int64(2)
	other.CounterpartyID = &customerID
	other.CreatorID = &creator2
	if _, err := ledger.Post(ctx, other, saleAccounts); err != nil {
		t.Fatalf("post tenant 2 sale: %v", err)
	}
}

func TestTaxReport_MonthlyBalance(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	reports := core.NewTaxReportService(pool)
	ctx := context.Background()

	report, err := reports.ReportMonth(ctx, core.ScopeTenant(1), 2026, 3)
	if err != nil {
		t.Fatalf("ReportMonth: %v", err)
	}

	if got := report.Summary.TaxCollectedTotal.StringFixed(2); got != "200.00" {
		t.Errorf("collected: want 200.00, got %s", got)
	}
	if got := report.Summary.TaxPaidTotal.StringFixed(2); got != "80.00" {
		t.Errorf("paid: want 80.00, got %s", got)
	}
	if got := report.Summary.NetTaxBalance.StringFixed(2); got != "120.00" {
		t.Errorf("net: want 120.00, got %s", got)
	}
	if report.Summary.BalanceStatus != core.BalancePayable {
		t.Errorf("status: want payable, got %s", report.Summary.BalanceStatus)
	}

	if len(report.TopCustomers) != 1 || report.TopCustomers[0].TaxAmount.StringFixed(2) != "200.00" {
		t.Errorf("top customers wrong: %+v", report.TopCustomers)
	}
	if len(report.TopSuppliers) != 1 || report.TopSuppliers[0].TaxAmount.StringFixed(2) != "80.00" {
		t.Errorf("top suppliers wrong: %+v", report.TopSuppliers)
	}
}

func TestTaxReport_TenantIsolation(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	reports := core.NewTaxReportService(pool)
	ctx := context.Background()

	t2, err := reports.ReportMonth(ctx, core.ScopeTenant(2), 2026, 3)
	if err != nil {
		t.Fatalf("ReportMonth tenant 2: %v", err)
	}
	if got := t2.Summary.TaxCollectedTotal.StringFixed(2); got != "15.00" {
		t.Errorf("tenant 2 collected: want 15.00, got %s", got)
	}
	if !t2.Summary.TaxPaidTotal.IsZero() {
		t.Errorf("tenant 2 paid should be zero, got %s", t2.Summary.TaxPaidTotal)
	}

	// Unscoped aggregate sees both tenants.
	all, err := reports.ReportMonth(ctx, core.ScopeUnscoped(), 2026, 3)
	if err != nil {
		t.Fatalf("ReportMonth unscoped: %v", err)
	}
	if got := all.Summary.TaxCollectedTotal.StringFixed(2); got != "215.00" {
		t.Errorf("unscoped collected: want 215.00, got %s", got)
	}

	// Empty scope yields the zero report, not an error and not global data.
	empty, err := reports.ReportMonth(ctx, core.Scope{}, 2026, 3)
	if err != nil {
		t.Fatalf("ReportMonth empty scope: %v", err)
	}
	if !empty.Summary.TaxCollectedTotal.IsZero() || !empty.Summary.TaxPaidTotal.IsZero() {
		t.Errorf("empty scope leaked data: %+v", empty.Summary)
	}
	if len(empty.TopCustomers) != 0 || len(empty.TopSuppliers) != 0 {
		t.Errorf("empty scope leaked rankings")
	}
}

func TestTaxReport_AnnualEqualsMonthlySum(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	reports := core.NewTaxReportService(pool)
	ctx := context.Background()
	scope := core.ScopeTenant(1)

	annual, err := reports.ReportYear(ctx, scope, 2026)
	if err != nil {
		t.Fatalf("ReportYear: %v", err)
	}

	var monthlies []core.TaxSummary
	for month := 1; month <= 12; month++ {
		monthly, err := reports.ReportMonth(ctx, scope, 2026, month)
		if err != nil {
			t.Fatalf("ReportMonth %d: %v", month, err)
		}
		monthlies = append(monthlies, monthly.Summary)
	}
	summed := core.SumSummaries(monthlies...)

	if !annual.Summary.TaxCollectedTotal.Equal(summed.TaxCollectedTotal) {
		t.Errorf("annual collected %s != sum of monthlies %s",
			annual.Summary.TaxCollectedTotal, summed.TaxCollectedTotal)
	}
	if !annual.Summary.TaxPaidTotal.Equal(summed.TaxPaidTotal) {
		t.Errorf("annual paid %s != sum of monthlies %s",
			annual.Summary.TaxPaidTotal, summed.TaxPaidTotal)
	}
	if !annual.Summary.NetTaxBalance.Equal(summed.NetTaxBalance) {
		t.Errorf("annual net %s != sum of monthlies %s",
			annual.Summary.NetTaxBalance, summed.NetTaxBalance)
	}

	// 200 + 45 collected over the year.
	if got := annual.Summary.TaxCollectedTotal.StringFixed(2); got != "245.00" {
		t.Errorf("annual collected: want 245.00, got %s", got)
	}
}

func TestTaxReport_Dashboard(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	reports := core.NewTaxReportService(pool)
	ctx := context.Background()

	// "Now" is April 2026: previous month is the busy March.
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	dash, err := reports.Dashboard(ctx, core.ScopeTenant(1), now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if !dash.CurrentMonth.Summary.TaxCollectedTotal.IsZero() {
		t.Errorf("april collected should be zero, got %s", dash.CurrentMonth.Summary.TaxCollectedTotal)
	}
	if got := dash.PreviousMonth.Summary.NetTaxBalance.StringFixed(2); got != "120.00" {
		t.Errorf("march net: want 120.00, got %s", got)
	}
	if got := dash.YearToDate.Summary.TaxCollectedTotal.StringFixed(2); got != "200.00" {
		t.Errorf("ytd collected through april: want 200.00, got %s", got)
	}
}

func TestTaxService_StatusTransitions(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	taxes := core.NewTaxService(pool)
	ctx := context.Background()
	scope := core.ScopeTenant(1)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	collections, err := taxes.Collections(ctx, scope, from, to)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("expected 2 collections for tenant 1, got %d", len(collections))
	}
	var ids []int64
	for _, c := range collections {
		if c.Status != core.TaxStatusCollected {
			t.Errorf("fresh collection not in collected state: %s", c.Status)
		}
		ids = append(ids, c.ID)
	}

	when := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	moved, err := taxes.MarkRemitted(ctx, scope, ids, when)
	if err != nil {
		t.Fatalf("MarkRemitted: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 transitions, got %d", moved)
	}

	// Remitted is terminal: re-marking moves nothing.
	moved, err = taxes.MarkRemitted(ctx, scope, ids, when)
	if err != nil {
		t.Fatalf("second MarkRemitted: %v", err)
	}
	if moved != 0 {
		t.Errorf("remitted records transitioned again: %d", moved)
	}

	collections, _ = taxes.Collections(ctx, scope, from, to)
	for _, c := range collections {
		if c.Status != core.TaxStatusRemitted || c.RemittedDate == nil {
			t.Errorf("collection %d not remitted: %s %v", c.ID, c.Status, c.RemittedDate)
		}
	}

	payments, err := taxes.Payments(ctx, scope, from, to)
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment for tenant 1, got %d", len(payments))
	}
	moved, err = taxes.MarkRecovered(ctx, scope, []int64{payments[0].ID}, when)
	if err != nil {
		t.Fatalf("MarkRecovered: %v", err)
	}
	if moved != 1 {
		t.Errorf("expected 1 recovery, got %d", moved)
	}
}

func TestTaxService_ScopeSkipsForeignRecords(t *testing.T) {
	pool := setupTestDB(t)
	postTaxActivity(t, core.NewLedger(pool))
	taxes := core.NewTaxService(pool)
	ctx := context.Background()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	// Tenant 2 lists only its own record.
	t2, err := taxes.Collections(ctx, core.ScopeTenant(2), from, to)
	if err != nil {
		t.Fatalf("Collections tenant 2: %v", err)
	}
	if len(t2) != 1 {
		t.Fatalf("expected 1 collection for tenant 2, got %d", len(t2))
	}

	// Tenant 1 cannot transition tenant 2's record even by id.
	when := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	moved, err := taxes.MarkRemitted(ctx, core.ScopeTenant(1), []int64{t2[0].ID}, when)
	if err != nil {
		t.Fatalf("MarkRemitted across tenants: %v", err)
	}
	if moved != 0 {
		t.Errorf("tenant 1 transitioned tenant 2's record")
	}

	// Empty scope is a no-op, not an unscoped mass update.
	moved, err = taxes.MarkRemitted(ctx, core.Scope{}, []int64{t2[0].ID}, when)
	if err != nil || moved != 0 {
		t.Errorf("empty scope should transition nothing: %d, %v", moved, err)
	}
}
