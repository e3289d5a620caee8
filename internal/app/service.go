package app

import (
	"context"

	"github.com/ozavala/Clix-sub000/internal/assistant"
	"github.com/ozavala/Clix-sub000/internal/core"
)

// Caller identifies the authenticated actor behind a request. Adapters build
// it from their own auth mechanism (JWT claims, CLI flags) and pass it into
// every operation; the app layer resolves it into a tenant scope.
type Caller struct {
	UserID   int64
	TenantID *int64
	Elevated bool
}

func (c Caller) core() core.Caller {
	return core.Caller{TenantID: c.TenantID, IsElevated: c.Elevated}
}

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic: implementations contain no
// display logic of any kind.
//
// Methods that take an explicitTenant pointer let elevated callers address a
// specific tenant; non-elevated callers asking for a foreign tenant resolve to
// the empty scope and see empty results.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, tenantCode, username, password string) (*UserSession, error)

	// GetUser returns a user profile by id.
	GetUser(ctx context.Context, userID int64) (*UserResult, error)

	// PostDocument posts a business document to the ledger. One-shot per
	// document reference.
	PostDocument(ctx context.Context, caller Caller, req PostDocumentRequest) (*PostingResult, error)

	// GetPosting returns the journal entry posted for a document reference.
	GetPosting(ctx context.Context, caller Caller, explicitTenant *int64, kind string, refID int64) (*PostingResult, error)

	// CreatePurchaseOrder creates a draft purchase order with items.
	CreatePurchaseOrder(ctx context.Context, caller Caller, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// GetPurchaseOrder returns one purchase order with items.
	GetPurchaseOrder(ctx context.Context, caller Caller, explicitTenant *int64, poID int64) (*PurchaseOrderResult, error)

	// ListPurchaseOrders returns purchase orders visible to the caller.
	ListPurchaseOrders(ctx context.Context, caller Caller, explicitTenant *int64) (*PurchaseOrderListResult, error)

	// AddLandedCost attaches a landed-cost charge to a purchase order and
	// re-runs apportionment.
	AddLandedCost(ctx context.Context, caller Caller, req AddLandedCostRequest) (*PurchaseOrderResult, error)

	// ApportionLandedCosts recomputes per-unit landed cost for a purchase
	// order's items from its current charges.
	ApportionLandedCosts(ctx context.Context, caller Caller, explicitTenant *int64, poID int64) (*PurchaseOrderResult, error)

	// TaxReportMonth returns the tax report for one calendar month.
	TaxReportMonth(ctx context.Context, caller Caller, explicitTenant *int64, year, month int) (*core.TaxReport, error)

	// TaxReportYear returns the annual tax report (sum of the 12 monthlies).
	TaxReportYear(ctx context.Context, caller Caller, explicitTenant *int64, year int) (*core.TaxReport, error)

	// TaxReportRange returns the tax report for an arbitrary date range.
	// Dates are YYYY-MM-DD strings.
	TaxReportRange(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*core.TaxReport, error)

	// TaxDashboard returns current-month, previous-month, and year-to-date
	// snapshots.
	TaxDashboard(ctx context.Context, caller Caller, explicitTenant *int64) (*core.TaxDashboard, error)

	// ListTaxCollections returns collection records in a date range.
	ListTaxCollections(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*TaxCollectionListResult, error)

	// ListTaxPayments returns payment records in a date range.
	ListTaxPayments(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*TaxPaymentListResult, error)

	// MarkTaxRemitted transitions collection records to remitted. Returns the
	// number of records transitioned; out-of-scope or already-remitted records
	// are skipped, not errors.
	MarkTaxRemitted(ctx context.Context, caller Caller, req MarkTaxRequest) (int64, error)

	// MarkTaxRecovered transitions payment records to recovered.
	MarkTaxRecovered(ctx context.Context, caller Caller, req MarkTaxRequest) (int64, error)

	// ListAccounts returns the chart of accounts visible to the caller.
	ListAccounts(ctx context.Context, caller Caller, explicitTenant *int64) (*AccountListResult, error)

	// ListCustomers returns active customers visible to the caller.
	ListCustomers(ctx context.Context, caller Caller, explicitTenant *int64) (*CustomerListResult, error)

	// ListSuppliers returns active suppliers visible to the caller.
	ListSuppliers(ctx context.Context, caller Caller, explicitTenant *int64) (*SupplierListResult, error)

	// ListTenants returns all active tenants. Elevated callers only; everyone
	// else gets an empty list.
	ListTenants(ctx context.Context, caller Caller) (*TenantListResult, error)

	// DraftDocument asks the assistant to turn free text into a reviewable
	// document draft. Nothing is posted.
	DraftDocument(ctx context.Context, caller Caller, text string) (*assistant.DocumentDraft, error)
}
