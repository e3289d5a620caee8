package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxService manages the lifecycle of tax records. Records are created by the
// ledger at posting time; the only mutations allowed afterwards are the batch
// transitions collected to remitted and paid to recovered. Both are terminal;
// correcting a remitted or recovered record means writing a new record.
type TaxService interface {
	// MarkRemitted transitions collection records to remitted, setting the
	// remittance date. The scope must name exactly one tenant. Records
	// outside that tenant, or not in the collected state, are skipped.
	// Returns the number of records transitioned.
	MarkRemitted(ctx context.Context, scope Scope, ids []int64, when time.Time) (int64, error)

	// MarkRecovered transitions payment records to recovered, setting the
	// recovery date. Same skip semantics as MarkRemitted.
	MarkRecovered(ctx context.Context, scope Scope, ids []int64, when time.Time) (int64, error)

	// Collections returns collection records in the date range, scoped.
	Collections(ctx context.Context, scope Scope, from, to time.Time) ([]TaxCollection, error)

	// Payments returns payment records in the date range, scoped.
	Payments(ctx context.Context, scope Scope, from, to time.Time) ([]TaxPayment, error)
}

type taxService struct {
	pool *pgxpool.Pool
}

func NewTaxService(pool *pgxpool.Pool) TaxService {
	return &taxService{pool: pool}
}

func (s *taxService) MarkRemitted(ctx context.Context, scope Scope, ids []int64, when time.Time) (int64, error) {
	if scope.Empty() || len(ids) == 0 {
		return 0, nil
	}
	// Transitions are writes. Even an elevated caller must name the one tenant
	// whose records are being remitted; an unscoped batch UPDATE would touch
	// every tenant holding one of the ids.
	if scope.TenantID == nil {
		return 0, &ValidationError{Field: "tenant", Message: "tax remittance requires one tenant"}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tax_collections
		SET status = $1, remitted_date = $2
		WHERE id = ANY($3) AND status = $4 AND tenant_id = $5`,
		string(TaxStatusRemitted), when, ids, string(TaxStatusCollected), *scope.TenantID)
	if err != nil {
		return 0, fmt.Errorf("mark tax collections remitted: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *taxService) MarkRecovered(ctx context.Context, scope Scope, ids []int64, when time.Time) (int64, error) {
	if scope.Empty() || len(ids) == 0 {
		return 0, nil
	}
	if scope.TenantID == nil {
		return 0, &ValidationError{Field: "tenant", Message: "tax recovery requires one tenant"}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tax_payments
		SET status = $1, recovered_date = $2
		WHERE id = ANY($3) AND status = $4 AND tenant_id = $5`,
		string(TaxStatusRecovered), when, ids, string(TaxStatusPaid), *scope.TenantID)
	if err != nil {
		return 0, fmt.Errorf("mark tax payments recovered: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *taxService) Collections(ctx context.Context, scope Scope, from, to time.Time) ([]TaxCollection, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, tax_rate_id, customer_id, taxable_amount, tax_amount,
		       status, collected_date, remitted_date
		FROM tax_collections
		WHERE collected_date >= $1 AND collected_date <= $2`
	args := []any{from, to}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	q += " ORDER BY collected_date, id"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax collections: %w", err)
	}
	defer rows.Close()

	var records []TaxCollection
	for rows.Next() {
		var rec TaxCollection
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.TaxRateID, &rec.CustomerID,
			&rec.TaxableAmount, &rec.TaxAmount, &rec.Status, &rec.CollectedDate, &rec.RemittedDate); err != nil {
			return nil, fmt.Errorf("scan tax collection: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *taxService) Payments(ctx context.Context, scope Scope, from, to time.Time) ([]TaxPayment, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, tax_rate_id, supplier_id, taxable_amount, tax_amount,
		       status, payment_date, recovered_date
		FROM tax_payments
		WHERE payment_date >= $1 AND payment_date <= $2`
	args := []any{from, to}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	q += " ORDER BY payment_date, id"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax payments: %w", err)
	}
	defer rows.Close()

	var records []TaxPayment
	for rows.Next() {
		var rec TaxPayment
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.TaxRateID, &rec.SupplierID,
			&rec.TaxableAmount, &rec.TaxAmount, &rec.Status, &rec.PaymentDate, &rec.RecoveredDate); err != nil {
			return nil, fmt.Errorf("scan tax payment: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
