package core_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ozavala/Clix-sub000/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	// Clean and seed test DB: two tenants with mirrored charts of accounts.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE journal_entry_lines, journal_entries, tax_collections, tax_payments,
		               landed_costs, purchase_order_items, purchase_orders,
		               customers, suppliers, accounts, users, tax_rates, tenants
		RESTART IDENTITY CASCADE;

		INSERT INTO tenants (id, code, name, is_active, subscription_state) VALUES
		(1, 'acme', 'Acme SA', true, 'active'),
		(2, 'globex', 'Globex Ltda', true, 'active');

		INSERT INTO users (id, tenant_id, username, display_name, is_active) VALUES
		(1, 1, 'ana', 'Ana', true),
		(2, 2, 'gustavo', 'Gustavo', true);

		INSERT INTO accounts (tenant_id, code, name, type) VALUES
		(1, '1200', 'Accounts Receivable', 'asset'),
		(1, '1300', 'Tax Recoverable', 'tax'),
		(1, '2000', 'Accounts Payable', 'liability'),
		(1, '2100', 'Tax Payable', 'tax'),
		(1, '4000', 'Sales Revenue', 'income'),
		(1, '5000', 'Purchases', 'expense'),
		(2, '1200', 'Accounts Receivable', 'asset'),
		(2, '1300', 'Tax Recoverable', 'tax'),
		(2, '2000', 'Accounts Payable', 'liability'),
		(2, '2100', 'Tax Payable', 'tax'),
		(2, '4000', 'Sales Revenue', 'income'),
		(2, '5000', 'Purchases', 'expense');

		INSERT INTO tax_rates (id, name, rate_percent) VALUES
		(1, 'IVA 15%', 15),
		(2, 'IVA 5%', 5);

		INSERT INTO customers (id, tenant_id, code, name) VALUES
		(1, 1, 'CUST-A', 'Cliente Alfa'),
		(2, 1, 'CUST-B', 'Cliente Beta'),
		(3, 2, 'CUST-X', 'Cliente Xi');

		INSERT INTO suppliers (id, tenant_id, code, name) VALUES
		(1, 1, 'SUP-A', 'Proveedor Alfa'),
		(2, 1, 'SUP-B', 'Proveedor Beta'),
		(3, 2, 'SUP-X', 'Proveedor Xi');

		SELECT setval('tenants_id_seq', 10);
		SELECT setval('users_id_seq', 10);
		SELECT setval('customers_id_seq', 10);
		SELECT setval('suppliers_id_seq', 10);
		SELECT setval('tax_rates_id_seq', 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

var saleAccounts = core.PostingAccounts{Control: "1200", Net: "4000", Tax: "2100"}
var purchaseAccounts = core.PostingAccounts{Control: "2000", Net: "5000", Tax: "1300"}

func testInvoice(refID int64, tenantID int64, date time.Time, subtotal, tax string) core.SourceDocument {
	rateID := int64(1)
	customerID := int64(1)
	creatorID := int64(1)
	sub := decimal.RequireFromString(subtotal)
	tx := decimal.RequireFromString(tax)
	return core.SourceDocument{
		Kind:            core.DocumentSale,
		Reference:       core.DocumentRef{Kind: core.RefInvoice, ID: refID},
		TenantID:        tenantID,
		ReferenceNumber: "INV-TEST",
		Date:            date,
		Subtotal:        sub,
		TaxAmount:       tx,
		TotalAmount:     sub.Add(tx),
		TaxRateID:       &rateID,
		CounterpartyID:  &customerID,
		CreatorID:       &creatorID,
	}
}

func TestLedger_PostSalesInvoice(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	doc := testInvoice(100, 1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), "1000.00", "150.00")
	entry, err := ledger.Post(ctx, doc, saleAccounts)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	if len(entry.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(entry.Lines))
	}

	// Verify persisted lines balance and match the template.
	var debits, credits decimal.Decimal
	err = pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM journal_entry_lines WHERE entry_id = $1`,
		entry.ID,
	).Scan(&debits, &credits)
	if err != nil {
		t.Fatalf("sum lines: %v", err)
	}
	if !debits.Equal(credits) {
		t.Errorf("persisted entry imbalanced: debits %s credits %s", debits, credits)
	}
	if debits.StringFixed(2) != "1150.00" {
		t.Errorf("debit total: want 1150.00, got %s", debits)
	}

	// Posting a sale also records the tax collection.
	var taxCount int
	var taxAmount decimal.Decimal
	err = pool.QueryRow(ctx,
		"SELECT COUNT(*), COALESCE(SUM(tax_amount), 0) FROM tax_collections WHERE tenant_id = 1",
	).Scan(&taxCount, &taxAmount)
	if err != nil {
		t.Fatalf("check tax collections: %v", err)
	}
	if taxCount != 1 || taxAmount.StringFixed(2) != "150.00" {
		t.Errorf("expected one tax collection of 150.00, got %d rows totalling %s", taxCount, taxAmount)
	}
}

func TestLedger_PostIsOneShot(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	doc := testInvoice(200, 1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "500.00", "75.00")
	if _, err := ledger.Post(ctx, doc, saleAccounts); err != nil {
		t.Fatalf("first post failed: %v", err)
	}

	_, err := ledger.Post(ctx, doc, saleAccounts)
	if !errors.Is(err, core.ErrAlreadyPosted) {
		t.Fatalf("expected ErrAlreadyPosted on second post, got %v", err)
	}

	var entries int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM journal_entries WHERE reference_kind = 'invoice' AND reference_id = 200",
	).Scan(&entries); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 1 {
		t.Errorf("expected exactly 1 entry, got %d", entries)
	}
}

func TestLedger_IdempotencyIsPerTenant(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Both tenants post invoice 250. The keys match but belong to different
	// tenants, so neither post may block the other.
	date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	if _, err := ledger.Post(ctx, testInvoice(250, 1, date, "100.00", "15.00"), saleAccounts); err != nil {
		t.Fatalf("tenant 1 post failed: %v", err)
	}

	doc := testInvoice(250, 2, date, "300.00", "45.00")
	creatorID := int64(2)
	customerID := int64(3)
	doc.CreatorID = &creatorID
	doc.CounterpartyID = &customerID
	if _, err := ledger.Post(ctx, doc, saleAccounts); err != nil {
		t.Fatalf("tenant 2 post failed: %v", err)
	}

	var entries int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM journal_entries WHERE idempotency_key = 'invoice-250'",
	).Scan(&entries); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 2 {
		t.Errorf("expected one entry per tenant, got %d", entries)
	}

	// Within a tenant the key still blocks a second post.
	if _, err := ledger.Post(ctx, doc, saleAccounts); !errors.Is(err, core.ErrAlreadyPosted) {
		t.Fatalf("expected ErrAlreadyPosted on tenant 2 repost, got %v", err)
	}
}

func TestLedger_AccountsScopedToTenant(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Remove tenant 2's revenue account, then post for tenant 2. Tenant 1's
	// same-coded account must not satisfy the check.
	if _, err := pool.Exec(ctx, "DELETE FROM accounts WHERE tenant_id = 2 AND code = '4000'"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	doc := testInvoice(300, 2, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), "100.00", "15.00")
	creatorID := int64(2)
	customerID := int64(3)
	doc.CreatorID = &creatorID
	doc.CounterpartyID = &customerID

	if _, err := ledger.Post(ctx, doc, saleAccounts); err == nil {
		t.Fatal("expected error for account missing in tenant 2, got nil")
	}
}

func TestLedger_SynthesizesCreatorWithinTenant(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Tenant 2 has no active users: the engine must synthesize a tenant 2
	// system user, never borrow one from tenant 1.
	if _, err := pool.Exec(ctx, "UPDATE users SET is_active = false WHERE tenant_id = 2"); err != nil {
		t.Fatalf("deactivate users: %v", err)
	}

	doc := testInvoice(400, 2, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), "100.00", "15.00")
	doc.CreatorID = nil
	customerID := int64(3)
	doc.CounterpartyID = &customerID

	entry, err := ledger.Post(ctx, doc, saleAccounts)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	var creatorTenant int64
	if err := pool.QueryRow(ctx,
		"SELECT tenant_id FROM users WHERE id = $1", entry.CreatedBy,
	).Scan(&creatorTenant); err != nil {
		t.Fatalf("fetch creator: %v", err)
	}
	if creatorTenant != 2 {
		t.Errorf("creator crossed tenant boundary: belongs to tenant %d", creatorTenant)
	}
}

func TestLedger_EntryByReferenceScoping(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	doc := testInvoice(500, 1, time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC), "250.00", "37.50")
	if _, err := ledger.Post(ctx, doc, saleAccounts); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	ref := core.DocumentRef{Kind: core.RefInvoice, ID: 500}

	if _, err := ledger.EntryByReference(ctx, core.ScopeTenant(1), ref); err != nil {
		t.Errorf("owner tenant cannot read its entry: %v", err)
	}

	// Another tenant's scope must see not-found, not the entry.
	if _, err := ledger.EntryByReference(ctx, core.ScopeTenant(2), ref); err == nil {
		t.Error("foreign tenant read another tenant's entry")
	}

	// Empty scope (resolution failure) must also see nothing.
	if _, err := ledger.EntryByReference(ctx, core.Scope{}, ref); err == nil {
		t.Error("empty scope read an entry")
	}

	// Elevated unscoped access sees everything.
	if _, err := ledger.EntryByReference(ctx, core.ScopeUnscoped(), ref); err != nil {
		t.Errorf("unscoped read failed: %v", err)
	}
}

func TestLedger_PostPurchaseBill(t *testing.T) {
	pool := setupTestDB(t)
	ledger := core.NewLedger(pool)
	ctx := context.Background()

	rateID := int64(1)
	supplierID := int64(1)
	creatorID := int64(1)
	doc := core.SourceDocument{
		Kind:            core.DocumentPurchase,
		Reference:       core.DocumentRef{Kind: core.RefBill, ID: 600},
		TenantID:        1,
		ReferenceNumber: "BILL-600",
		Date:            time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Subtotal:        decimal.RequireFromString("800.00"),
		TaxAmount:       decimal.RequireFromString("120.00"),
		TotalAmount:     decimal.RequireFromString("920.00"),
		TaxRateID:       &rateID,
		CounterpartyID:  &supplierID,
		CreatorID:       &creatorID,
	}

	if _, err := ledger.Post(ctx, doc, purchaseAccounts); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	// Posting a purchase records the tax payment for later recovery.
	var amount decimal.Decimal
	var status string
	if err := pool.QueryRow(ctx,
		"SELECT tax_amount, status FROM tax_payments WHERE tenant_id = 1",
	).Scan(&amount, &status); err != nil {
		t.Fatalf("check tax payments: %v", err)
	}
	if amount.StringFixed(2) != "120.00" || status != "paid" {
		t.Errorf("tax payment wrong: %s %s", amount, status)
	}
}
