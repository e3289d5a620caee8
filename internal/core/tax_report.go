package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceStatus is the sign convention for a net tax balance: payable means
// the tenant owes the tax authority, refundable means the tenant is in credit.
type BalanceStatus string

const (
	BalancePayable    BalanceStatus = "payable"
	BalanceRefundable BalanceStatus = "refundable"
)

// TaxRecordType discriminates the unioned row stream the reporting engine
// aggregates: tax collected on sales vs tax paid on purchases.
type TaxRecordType string

const (
	RecordCollection TaxRecordType = "collection"
	RecordPayment    TaxRecordType = "payment"
)

// TaxRow is one record in the unioned collection/payment stream.
type TaxRow struct {
	RecordType    TaxRecordType
	TaxRateID     int64
	RateName      string
	RatePercent   decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TaxSummary is the headline figures of a tax balance report.
type TaxSummary struct {
	TaxCollectedTotal decimal.Decimal `json:"tax_collected_total"`
	TaxPaidTotal      decimal.Decimal `json:"tax_paid_total"`
	NetTaxBalance     decimal.Decimal `json:"net_tax_balance"`
	BalanceStatus     BalanceStatus   `json:"balance_status"`
}

// RateBreakdown is the per-tax-rate slice of a report.
type RateBreakdown struct {
	TaxRateID     int64           `json:"tax_rate_id"`
	RateName      string          `json:"rate_name"`
	RatePercent   decimal.Decimal `json:"rate_percent"`
	TaxableBase   decimal.Decimal `json:"taxable_base"`
	TaxCollected  decimal.Decimal `json:"tax_collected"`
	TaxPaid       decimal.Decimal `json:"tax_paid"`
	NetTaxBalance decimal.Decimal `json:"net_tax_balance"`
}

// CounterpartyTotal is one row of a top-N ranking.
type CounterpartyTotal struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// TaxReport is the full payload for one reporting window.
type TaxReport struct {
	Period          Period              `json:"period"`
	Summary         TaxSummary          `json:"summary"`
	BreakdownByRate []RateBreakdown     `json:"breakdown_by_rate"`
	TopCustomers    []CounterpartyTotal `json:"top_customers"`
	TopSuppliers    []CounterpartyTotal `json:"top_suppliers"`
}

// TaxDashboard bundles the three snapshots the dashboard view renders.
type TaxDashboard struct {
	CurrentMonth  *TaxReport `json:"current_month"`
	PreviousMonth *TaxReport `json:"previous_month"`
	YearToDate    *TaxReport `json:"year_to_date"`
}

// topNLimit caps the counterparty rankings.
const topNLimit = 10

// ValidationError reports a malformed reporting request. It is raised before
// any query executes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateRange rejects inverted or zero date ranges.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "period", Message: "start and end dates are required"}
	}
	if end.Before(start) {
		return &ValidationError{Field: "period", Message: "end date is before start date"}
	}
	return nil
}

// ValidateMonth rejects out-of-range year/month requests.
func ValidateMonth(year, month int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Message: fmt.Sprintf("month %d out of range 1-12", month)}
	}
	return nil
}

// ValidateYear rejects implausible years before any query runs.
func ValidateYear(year int) error {
	if year < 1900 || year > 2999 {
		return &ValidationError{Field: "year", Message: fmt.Sprintf("year %d out of range", year)}
	}
	return nil
}

// MonthPeriod returns the calendar bounds of one month.
func MonthPeriod(year, month int) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// YearPeriod returns the calendar bounds of one year.
func YearPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// SummarizeTaxRows folds the unioned row stream into the headline summary.
func SummarizeTaxRows(rows []TaxRow) TaxSummary {
	collected := decimal.Zero
	paid := decimal.Zero
	for _, row := range rows {
		switch row.RecordType {
		case RecordCollection:
			collected = collected.Add(row.TaxAmount)
		case RecordPayment:
			paid = paid.Add(row.TaxAmount)
		}
	}
	return newSummary(collected, paid)
}

func newSummary(collected, paid decimal.Decimal) TaxSummary {
	net := collected.Sub(paid)
	status := BalancePayable
	if net.IsNegative() {
		status = BalanceRefundable
	}
	return TaxSummary{
		TaxCollectedTotal: collected,
		TaxPaidTotal:      paid,
		NetTaxBalance:     net,
		BalanceStatus:     status,
	}
}

// SumSummaries adds sub-period summaries arithmetically. The annual report is
// defined as the sum of its 12 monthly reports, never a separate yearly
// aggregate query, so both derive from the same rows partitioned the same way.
func SumSummaries(summaries ...TaxSummary) TaxSummary {
	collected := decimal.Zero
	paid := decimal.Zero
	for _, s := range summaries {
		collected = collected.Add(s.TaxCollectedTotal)
		paid = paid.Add(s.TaxPaidTotal)
	}
	return newSummary(collected, paid)
}

// BreakdownTaxRows groups the unioned row stream by tax rate, ordered by
// rate id for stable output.
func BreakdownTaxRows(rows []TaxRow) []RateBreakdown {
	byRate := make(map[int64]*RateBreakdown)
	for _, row := range rows {
		b, ok := byRate[row.TaxRateID]
		if !ok {
			b = &RateBreakdown{
				TaxRateID:     row.TaxRateID,
				RateName:      row.RateName,
				RatePercent:   row.RatePercent,
				TaxableBase:   decimal.Zero,
				TaxCollected:  decimal.Zero,
				TaxPaid:       decimal.Zero,
				NetTaxBalance: decimal.Zero,
			}
			byRate[row.TaxRateID] = b
		}
		b.TaxableBase = b.TaxableBase.Add(row.TaxableAmount)
		switch row.RecordType {
		case RecordCollection:
			b.TaxCollected = b.TaxCollected.Add(row.TaxAmount)
		case RecordPayment:
			b.TaxPaid = b.TaxPaid.Add(row.TaxAmount)
		}
	}

	breakdown := make([]RateBreakdown, 0, len(byRate))
	for _, b := range byRate {
		b.NetTaxBalance = b.TaxCollected.Sub(b.TaxPaid)
		breakdown = append(breakdown, *b)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].TaxRateID < breakdown[j].TaxRateID })
	return breakdown
}

// MergeBreakdowns combines per-rate breakdowns from sub-periods by summation,
// keeping the annual breakdown consistent with the summed summaries.
func MergeBreakdowns(parts ...[]RateBreakdown) []RateBreakdown {
	byRate := make(map[int64]*RateBreakdown)
	for _, part := range parts {
		for _, b := range part {
			m, ok := byRate[b.TaxRateID]
			if !ok {
				copied := b
				byRate[b.TaxRateID] = &copied
				continue
			}
			m.TaxableBase = m.TaxableBase.Add(b.TaxableBase)
			m.TaxCollected = m.TaxCollected.Add(b.TaxCollected)
			m.TaxPaid = m.TaxPaid.Add(b.TaxPaid)
		}
	}

	merged := make([]RateBreakdown, 0, len(byRate))
	for _, b := range byRate {
		b.NetTaxBalance = b.TaxCollected.Sub(b.TaxPaid)
		merged = append(merged, *b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].TaxRateID < merged[j].TaxRateID })
	return merged
}

// emptyReport is what scoping failures produce: a well-formed report with
// zero totals, never an error and never another tenant's data.
func emptyReport(period Period) *TaxReport {
	return &TaxReport{
		Period:          period,
		Summary:         newSummary(decimal.Zero, decimal.Zero),
		BreakdownByRate: []RateBreakdown{},
		TopCustomers:    []CounterpartyTotal{},
		TopSuppliers:    []CounterpartyTotal{},
	}
}
