package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxReportService produces tax recovery/balance reports. All methods are
// read-only point-in-time snapshots; scoping follows the resolver contract
// (an empty scope yields an empty report, an unscoped scope aggregates
// across tenants).
type TaxReportService interface {
	// ReportRange generates a report for an arbitrary date range.
	ReportRange(ctx context.Context, scope Scope, start, end time.Time) (*TaxReport, error)

	// ReportMonth generates a report for one calendar month.
	ReportMonth(ctx context.Context, scope Scope, year, month int) (*TaxReport, error)

	// ReportYear generates the annual report by generating all 12 monthly
	// reports and summing their summaries. The annual totals therefore equal
	// the sum of the monthly totals exactly.
	ReportYear(ctx context.Context, scope Scope, year int) (*TaxReport, error)

	// Dashboard returns current-month, previous-month, and year-to-date
	// snapshots in one call.
	Dashboard(ctx context.Context, scope Scope, now time.Time) (*TaxDashboard, error)
}

type taxReportService struct {
	pool *pgxpool.Pool
}

func NewTaxReportService(pool *pgxpool.Pool) TaxReportService {
	return &taxReportService{pool: pool}
}

func (s *taxReportService) ReportRange(ctx context.Context, scope Scope, start, end time.Time) (*TaxReport, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	return s.buildReport(ctx, scope, Period{Start: start, End: end})
}

func (s *taxReportService) ReportMonth(ctx context.Context, scope Scope, year, month int) (*TaxReport, error) {
	if err := ValidateMonth(year, month); err != nil {
		return nil, err
	}
	return s.buildReport(ctx, scope, MonthPeriod(year, month))
}

func (s *taxReportService) ReportYear(ctx context.Context, scope Scope, year int) (*TaxReport, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}

	period := YearPeriod(year)
	if scope.Empty() {
		return emptyReport(period), nil
	}

	summaries := make([]TaxSummary, 0, 12)
	breakdowns := make([][]RateBreakdown, 0, 12)
	for month := 1; month <= 12; month++ {
		monthly, err := s.buildReport(ctx, scope, MonthPeriod(year, month))
		if err != nil {
			return nil, fmt.Errorf("monthly report %d-%02d: %w", year, month, err)
		}
		summaries = append(summaries, monthly.Summary)
		breakdowns = append(breakdowns, monthly.BreakdownByRate)
	}

	// Rankings are computed independently over the full year window.
	topCustomers, topSuppliers, err := s.topCounterparties(ctx, scope, period)
	if err != nil {
		return nil, err
	}

	return &TaxReport{
		Period:          period,
		Summary:         SumSummaries(summaries...),
		BreakdownByRate: MergeBreakdowns(breakdowns...),
		TopCustomers:    topCustomers,
		TopSuppliers:    topSuppliers,
	}, nil
}

func (s *taxReportService) Dashboard(ctx context.Context, scope Scope, now time.Time) (*TaxDashboard, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	current, err := s.buildReport(ctx, scope, MonthPeriod(now.Year(), int(now.Month())))
	if err != nil {
		return nil, fmt.Errorf("current month: %w", err)
	}

	prev := now.AddDate(0, -1, -now.Day()+1)
	previous, err := s.buildReport(ctx, scope, MonthPeriod(prev.Year(), int(prev.Month())))
	if err != nil {
		return nil, fmt.Errorf("previous month: %w", err)
	}

	ytdPeriod := Period{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	yearToDate, err := s.buildReport(ctx, scope, ytdPeriod)
	if err != nil {
		return nil, fmt.Errorf("year to date: %w", err)
	}

	return &TaxDashboard{
		CurrentMonth:  current,
		PreviousMonth: previous,
		YearToDate:    yearToDate,
	}, nil
}

// buildReport runs the core aggregation for one window: a single UNION ALL
// stream of collection and payment rows feeds the summary and the per-rate
// breakdown, and two independent queries feed the counterparty rankings.
func (s *taxReportService) buildReport(ctx context.Context, scope Scope, period Period) (*TaxReport, error) {
	if scope.Empty() {
		return emptyReport(period), nil
	}

	rows, err := s.taxRows(ctx, scope, period)
	if err != nil {
		return nil, err
	}

	topCustomers, topSuppliers, err := s.topCounterparties(ctx, scope, period)
	if err != nil {
		return nil, err
	}

	return &TaxReport{
		Period:          period,
		Summary:         SummarizeTaxRows(rows),
		BreakdownByRate: BreakdownTaxRows(rows),
		TopCustomers:    topCustomers,
		TopSuppliers:    topSuppliers,
	}, nil
}

// taxRows fetches the unioned collection/payment stream for one window.
// The tenant filter is applied inside both arms of the union; an unscoped
// scope drops it entirely.
func (s *taxReportService) taxRows(ctx context.Context, scope Scope, period Period) ([]TaxRow, error) {
	tenantFilter := ""
	args := []any{period.Start, period.End}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		tenantFilter = fmt.Sprintf(" AND t.tenant_id = $%d", len(args))
	}

	q := fmt.Sprintf(`
		SELECT 'collection' AS record_type, t.tax_rate_id, tr.name, tr.rate_percent,
		       t.taxable_amount, t.tax_amount
		FROM tax_collections t
		JOIN tax_rates tr ON tr.id = t.tax_rate_id
		WHERE t.collected_date >= $1 AND t.collected_date <= $2%s
		UNION ALL
		SELECT 'payment' AS record_type, t.tax_rate_id, tr.name, tr.rate_percent,
		       t.taxable_amount, t.tax_amount
		FROM tax_payments t
		JOIN tax_rates tr ON tr.id = t.tax_rate_id
		WHERE t.payment_date >= $1 AND t.payment_date <= $2%s`,
		tenantFilter, tenantFilter)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tax rows: %w", err)
	}
	defer rows.Close()

	var result []TaxRow
	for rows.Next() {
		var row TaxRow
		var recordType string
		if err := rows.Scan(&recordType, &row.TaxRateID, &row.RateName, &row.RatePercent,
			&row.TaxableAmount, &row.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan tax row: %w", err)
		}
		row.RecordType = TaxRecordType(recordType)
		result = append(result, row)
	}
	return result, rows.Err()
}

// topCounterparties ranks customers by tax collected and suppliers by tax
// paid over the window, descending, capped at 10 each.
func (s *taxReportService) topCounterparties(ctx context.Context, scope Scope, period Period) ([]CounterpartyTotal, []CounterpartyTotal, error) {
	customers, err := s.rankCounterparties(ctx, scope, period, `
		SELECT c.id, c.name, SUM(t.tax_amount) AS total_tax
		FROM tax_collections t
		JOIN customers c ON c.id = t.customer_id
		WHERE t.collected_date >= $1 AND t.collected_date <= $2%s
		GROUP BY c.id, c.name
		ORDER BY total_tax DESC, c.id
		LIMIT %d`)
	if err != nil {
		return nil, nil, fmt.Errorf("top customers: %w", err)
	}

	suppliers, err := s.rankCounterparties(ctx, scope, period, `
		SELECT sp.id, sp.name, SUM(t.tax_amount) AS total_tax
		FROM tax_payments t
		JOIN suppliers sp ON sp.id = t.supplier_id
		WHERE t.payment_date >= $1 AND t.payment_date <= $2%s
		GROUP BY sp.id, sp.name
		ORDER BY total_tax DESC, sp.id
		LIMIT %d`)
	if err != nil {
		return nil, nil, fmt.Errorf("top suppliers: %w", err)
	}

	return customers, suppliers, nil
}

func (s *taxReportService) rankCounterparties(ctx context.Context, scope Scope, period Period, tmpl string) ([]CounterpartyTotal, error) {
	tenantFilter := ""
	args := []any{period.Start, period.End}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		tenantFilter = fmt.Sprintf(" AND t.tenant_id = $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(tmpl, tenantFilter, topNLimit), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := []CounterpartyTotal{}
	for rows.Next() {
		var ct CounterpartyTotal
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan counterparty total: %w", err)
		}
		ranking = append(ranking, ct)
	}
	return ranking, rows.Err()
}
