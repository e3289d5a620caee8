// seed provisions a demo tenant with a chart of accounts, tax rates, an
// admin user, and sample counterparties. Re-runnable: existing rows are
// updated in place, journal data is never touched.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ozavala/Clix-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
		log.Println("SEED_ADMIN_PASSWORD not set, using default (change it before exposing the server)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding tenant...")
	var tenantID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO tenants (code, name, is_active, subscription_state)
		VALUES ('demo', 'Demo SA', true, 'active')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, is_active = true
		RETURNING id`,
	).Scan(&tenantID)
	if err != nil {
		log.Fatalf("Failed to seed tenant: %v", err)
	}

	log.Println("Seeding admin user...")
	if _, err := tx.Exec(ctx, `
		INSERT INTO users (tenant_id, username, display_name, password_hash, is_elevated, is_active)
		VALUES ($1, 'admin', 'Administrator', $2, true, true)
		ON CONFLICT (tenant_id, username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      is_elevated = true,
		      is_active = true`,
		tenantID, string(hash),
	); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	log.Println("Seeding chart of accounts...")
	if _, err := tx.Exec(ctx, `
		INSERT INTO accounts (tenant_id, code, name, type)
		SELECT $1, a.code, a.name, a.type
		FROM (VALUES
		    ('1000', 'Cash',                'asset'),
		    ('1100', 'Bank Account',        'asset'),
		    ('1200', 'Accounts Receivable', 'asset'),
		    ('1300', 'Tax Recoverable',     'tax'),
		    ('1400', 'Inventory',           'asset'),
		    ('2000', 'Accounts Payable',    'liability'),
		    ('2100', 'Tax Payable',         'tax'),
		    ('3000', 'Owner Capital',       'equity'),
		    ('3100', 'Retained Earnings',   'equity'),
		    ('4000', 'Sales Revenue',       'income'),
		    ('4100', 'Service Revenue',     'income'),
		    ('5000', 'Purchases',           'expense'),
		    ('5100', 'Rent Expense',        'expense'),
		    ('5200', 'Salary Expense',      'expense')
		) AS a(code, name, type)
		ON CONFLICT (tenant_id, code) DO UPDATE
		  SET name = EXCLUDED.name,
		      type = EXCLUDED.type`,
		tenantID,
	); err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Println("Seeding tax rates...")
	if _, err := tx.Exec(ctx, `
		INSERT INTO tax_rates (name, rate_percent)
		SELECT r.name, r.rate
		FROM (VALUES
		    ('IVA 15%', 15),
		    ('IVA 5%', 5),
		    ('IVA 0%', 0)
		) AS r(name, rate)
		WHERE NOT EXISTS (SELECT 1 FROM tax_rates t WHERE t.name = r.name)`,
	); err != nil {
		log.Fatalf("Failed to seed tax rates: %v", err)
	}

	log.Println("Seeding sample counterparties...")
	if _, err := tx.Exec(ctx, `
		INSERT INTO customers (tenant_id, code, name, email)
		VALUES ($1, 'CUST-001', 'Cliente Demo', 'cliente@example.com')
		ON CONFLICT (tenant_id, code) DO NOTHING`,
		tenantID,
	); err != nil {
		log.Fatalf("Failed to seed customer: %v", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO suppliers (tenant_id, code, name, email)
		VALUES ($1, 'SUP-001', 'Proveedor Demo', 'proveedor@example.com')
		ON CONFLICT (tenant_id, code) DO NOTHING`,
		tenantID,
	); err != nil {
		log.Fatalf("Failed to seed supplier: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Printf("Seed complete. Tenant 'demo' (id %d), user 'admin'.", tenantID)
}
