package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Income    AccountType = "income"
	Expense   AccountType = "expense"
	Tax       AccountType = "tax"
	Equity    AccountType = "equity"
)

// Account is one chart-of-accounts node. Codes are unique per tenant and
// journal lines reference accounts by code, not id, so reports can group
// without an extra join.
type Account struct {
	ID         int64       `json:"id"`
	TenantID   int64       `json:"tenant_id"`
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Type       AccountType `json:"type"`
	ParentCode *string     `json:"parent_code,omitempty"`
}

type SubscriptionState string

const (
	SubscriptionActive    SubscriptionState = "active"
	SubscriptionTrialing  SubscriptionState = "trialing"
	SubscriptionSuspended SubscriptionState = "suspended"
)

// Tenant is the isolation boundary. Every transactional row carries a
// tenant_id and no query may cross it without an unscoped (elevated) caller.
type Tenant struct {
	ID                int64             `json:"id"`
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	IsActive          bool              `json:"is_active"`
	SubscriptionState SubscriptionState `json:"subscription_state"`
	CreatedAt         time.Time         `json:"created_at"`
}

type User struct {
	ID           int64  `json:"id"`
	TenantID     int64  `json:"tenant_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"`
	IsElevated   bool   `json:"is_elevated"`
	IsActive     bool   `json:"is_active"`
}

// ReferenceKind identifies the kind of business document a journal entry or
// landed-cost charge points at. It replaces a free-form polymorphic type
// string with a closed set of owner kinds.
type ReferenceKind string

const (
	RefInvoice       ReferenceKind = "invoice"
	RefBill          ReferenceKind = "bill"
	RefPurchaseOrder ReferenceKind = "purchase_order"
)

// ValidReferenceKinds is the dispatch table for reference resolution. A kind
// missing from this map is rejected before anything touches the database.
var ValidReferenceKinds = map[ReferenceKind]string{
	RefInvoice:       "invoices",
	RefBill:          "bills",
	RefPurchaseOrder: "purchase_orders",
}

// DocumentRef is a typed reference to an originating business document.
type DocumentRef struct {
	Kind ReferenceKind `json:"kind"`
	ID   int64         `json:"id"`
}

// JournalEntry is the header of one balanced posting. Entries are created
// exactly once per originating document and never mutated afterwards.
type JournalEntry struct {
	ID              int64              `json:"id"`
	TenantID        int64              `json:"tenant_id"`
	EntryDate       time.Time          `json:"entry_date"`
	TransactionType string             `json:"transaction_type"`
	Description     string             `json:"description"`
	Reference       DocumentRef        `json:"reference"`
	IdempotencyKey  string             `json:"idempotency_key,omitempty"`
	CreatedBy       int64              `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	Lines           []JournalEntryLine `json:"lines"`
}

// JournalEntryLine is one leg of a posting. Exactly one of Debit/Credit is
// non-zero per line by convention; the balance invariant is enforced on the
// entry as a whole before commit.
type JournalEntryLine struct {
	ID          int64           `json:"id"`
	EntryID     int64           `json:"entry_id"`
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type TaxRate struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// TaxRecordStatus is the small status machine for tax records: collected
// moves to remitted, paid moves to recovered, both terminal. There is no
// reversal transition; reversing means writing a new record.
type TaxRecordStatus string

const (
	TaxStatusCollected TaxRecordStatus = "collected"
	TaxStatusRemitted  TaxRecordStatus = "remitted"
	TaxStatusPaid      TaxRecordStatus = "paid"
	TaxStatusRecovered TaxRecordStatus = "recovered"
)

// TaxCollection is IVA/VAT collected on a sale, owed to the tax authority
// until remitted.
type TaxCollection struct {
	ID            int64           `json:"id"`
	TenantID      int64           `json:"tenant_id"`
	TaxRateID     int64           `json:"tax_rate_id"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Status        TaxRecordStatus `json:"status"`
	CollectedDate time.Time       `json:"collected_date"`
	RemittedDate  *time.Time      `json:"remitted_date,omitempty"`
}

// TaxPayment is IVA/VAT paid on a purchase, claimable as a credit until
// recovered.
type TaxPayment struct {
	ID            int64           `json:"id"`
	TenantID      int64           `json:"tenant_id"`
	TaxRateID     int64           `json:"tax_rate_id"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Status        TaxRecordStatus `json:"status"`
	PaymentDate   time.Time       `json:"payment_date"`
	RecoveredDate *time.Time      `json:"recovered_date,omitempty"`
}

type Customer struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type Supplier struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
