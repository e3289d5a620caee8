package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService turns business documents into balanced journal entries.
type LedgerService interface {
	// Post creates the journal entry for a document. One-shot: a document is
	// posted exactly once and treated as immutable afterwards.
	Post(ctx context.Context, doc SourceDocument, accounts PostingAccounts) (*JournalEntry, error)

	// EntryByReference returns the entry posted for a document, or a
	// not-found error if the document was never posted.
	EntryByReference(ctx context.Context, scope Scope, ref DocumentRef) (*JournalEntry, error)
}

type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// ErrAlreadyPosted is returned when a document's idempotency key has already
// produced a journal entry.
var ErrAlreadyPosted = errors.New("document already posted")

// Post builds the fixed posting template for the document and persists the
// entry, its lines, and the matching tax record in one transaction. Either
// everything commits or nothing does; a reader can never observe an entry
// with unbalanced lines.
func (l *Ledger) Post(ctx context.Context, doc SourceDocument, accounts PostingAccounts) (*JournalEntry, error) {
	lines, err := BuildPostingLines(doc, accounts)
	if err != nil {
		return nil, fmt.Errorf("build posting: %w", err)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Account codes must exist within the document's tenant. Same-code
	// accounts in other tenants must not satisfy this check.
	for _, line := range lines {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM accounts WHERE tenant_id = $1 AND code = $2)",
			doc.TenantID, line.AccountCode,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check account %s: %w", line.AccountCode, err)
		}
		if !exists {
			return nil, &ValidationError{Field: "account", Message: fmt.Sprintf("code %s does not exist for tenant %d", line.AccountCode, doc.TenantID)}
		}
	}

	creatorID, err := l.resolveCreator(ctx, tx, doc)
	if err != nil {
		return nil, err
	}

	idempotencyKey := fmt.Sprintf("%s-%d", doc.Reference.Kind, doc.Reference.ID)

	entry := &JournalEntry{
		TenantID:        doc.TenantID,
		EntryDate:       doc.Date,
		TransactionType: transactionTypeFor(doc),
		Description:     fmt.Sprintf("Posting for %s %s", doc.Reference.Kind, doc.ReferenceNumber),
		Reference:       doc.Reference,
		IdempotencyKey:  idempotencyKey,
		CreatedBy:       creatorID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO journal_entries (tenant_id, entry_date, transaction_type, description,
		                             reference_kind, reference_id, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
		RETURNING id, created_at`,
		doc.TenantID, doc.Date, entry.TransactionType, entry.Description,
		string(doc.Reference.Kind), doc.Reference.ID, idempotencyKey, creatorID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %d", ErrAlreadyPosted, doc.Reference.Kind, doc.Reference.ID)
		}
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	for _, line := range lines {
		var lineID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO journal_entry_lines (entry_id, account_code, debit_amount, credit_amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			entry.ID, line.AccountCode, line.Debit, line.Credit,
		).Scan(&lineID); err != nil {
			return nil, fmt.Errorf("insert journal line for account %s: %w", line.AccountCode, err)
		}
		entry.Lines = append(entry.Lines, JournalEntryLine{
			ID:          lineID,
			EntryID:     entry.ID,
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
		})
	}

	if err := l.recordTax(ctx, tx, doc); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit posting: %w", err)
	}
	return entry, nil
}

// resolveCreator guarantees the entry's audit reference points at a real user
// of the document's tenant. Order: the document's own creator (verified to
// belong to the tenant), then any active user of the tenant, then a
// synthesized tenant-scoped system user. Tenant boundaries are never crossed
// to find one.
func (l *Ledger) resolveCreator(ctx context.Context, tx pgx.Tx, doc SourceDocument) (int64, error) {
	if doc.CreatorID != nil {
		var ok bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND tenant_id = $2)",
			*doc.CreatorID, doc.TenantID,
		).Scan(&ok); err != nil {
			return 0, fmt.Errorf("verify creator: %w", err)
		}
		if ok {
			return *doc.CreatorID, nil
		}
	}

	var borrowed int64
	err := tx.QueryRow(ctx,
		"SELECT id FROM users WHERE tenant_id = $1 AND is_active = true ORDER BY id LIMIT 1",
		doc.TenantID,
	).Scan(&borrowed)
	if err == nil {
		return borrowed, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("borrow tenant user: %w", err)
	}

	var synthesized int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO users (tenant_id, username, display_name, is_active)
		VALUES ($1, $2, 'System', true)
		ON CONFLICT (tenant_id, username) DO UPDATE SET is_active = users.is_active
		RETURNING id`,
		doc.TenantID, fmt.Sprintf("system-%d", doc.TenantID),
	).Scan(&synthesized); err != nil {
		return 0, fmt.Errorf("synthesize system user for tenant %d: %w", doc.TenantID, err)
	}
	return synthesized, nil
}

// recordTax writes the tax_collections / tax_payments row that reporting
// aggregates later. Skipped when the document carries no tax.
func (l *Ledger) recordTax(ctx context.Context, tx pgx.Tx, doc SourceDocument) error {
	if !doc.TaxAmount.IsPositive() {
		return nil
	}
	if doc.TaxRateID == nil {
		return &ValidationError{Field: "tax_rate_id", Message: "required when the document carries tax"}
	}

	switch doc.Kind {
	case DocumentSale:
		if _, err := tx.Exec(ctx, `
			INSERT INTO tax_collections (tenant_id, tax_rate_id, customer_id, taxable_amount, tax_amount, status, collected_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			doc.TenantID, *doc.TaxRateID, doc.CounterpartyID, doc.Subtotal, doc.TaxAmount,
			string(TaxStatusCollected), doc.Date,
		); err != nil {
			return fmt.Errorf("insert tax collection: %w", err)
		}
	case DocumentPurchase:
		if _, err := tx.Exec(ctx, `
			INSERT INTO tax_payments (tenant_id, tax_rate_id, supplier_id, taxable_amount, tax_amount, status, payment_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			doc.TenantID, *doc.TaxRateID, doc.CounterpartyID, doc.Subtotal, doc.TaxAmount,
			string(TaxStatusPaid), doc.Date,
		); err != nil {
			return fmt.Errorf("insert tax payment: %w", err)
		}
	}
	return nil
}

// EntryByReference fetches the posted entry for a document, scoped. An empty
// scope returns not-found rather than leaking another tenant's entry.
func (l *Ledger) EntryByReference(ctx context.Context, scope Scope, ref DocumentRef) (*JournalEntry, error) {
	if scope.Empty() {
		return nil, fmt.Errorf("entry for %s %d: %w", ref.Kind, ref.ID, ErrNotFound)
	}

	q := `
		SELECT id, tenant_id, entry_date, transaction_type, description,
		       COALESCE(idempotency_key, ''), created_by, created_at
		FROM journal_entries
		WHERE reference_kind = $1 AND reference_id = $2`
	args := []any{string(ref.Kind), ref.ID}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}

	entry := &JournalEntry{Reference: ref}
	if err := l.pool.QueryRow(ctx, q, args...).Scan(
		&entry.ID, &entry.TenantID, &entry.EntryDate, &entry.TransactionType,
		&entry.Description, &entry.IdempotencyKey, &entry.CreatedBy, &entry.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entry for %s %d: %w", ref.Kind, ref.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch entry for %s %d: %w", ref.Kind, ref.ID, err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, entry_id, account_code, debit_amount, credit_amount
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY id`,
		entry.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch lines for entry %d: %w", entry.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line JournalEntryLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountCode, &line.Debit, &line.Credit); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal lines: %w", err)
	}
	return entry, nil
}
