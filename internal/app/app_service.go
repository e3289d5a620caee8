package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ozavala/Clix-sub000/internal/assistant"
	"github.com/ozavala/Clix-sub000/internal/core"
)

// PostingConfig maps document kinds to the account codes the ledger posts
// against. Codes are per-tenant chart codes; the ledger verifies they exist
// within the posting tenant.
type PostingConfig struct {
	Sale     core.PostingAccounts
	Purchase core.PostingAccounts
}

// LoadPostingConfig reads account codes from the environment with the
// conventional chart defaults.
func LoadPostingConfig() PostingConfig {
	return PostingConfig{
		Sale: core.PostingAccounts{
			Control: envOr("SALE_CONTROL_ACCOUNT", "1200"),
			Net:     envOr("SALE_INCOME_ACCOUNT", "4000"),
			Tax:     envOr("SALE_TAX_ACCOUNT", "2100"),
		},
		Purchase: core.PostingAccounts{
			Control: envOr("PURCHASE_CONTROL_ACCOUNT", "2000"),
			Net:     envOr("PURCHASE_EXPENSE_ACCOUNT", "5000"),
			Tax:     envOr("PURCHASE_TAX_ACCOUNT", "1300"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type appService struct {
	pool      *pgxpool.Pool
	ledger    core.LedgerService
	purchases core.PurchaseOrderService
	taxes     core.TaxService
	reports   core.TaxReportService
	accounts  core.AccountService
	customers core.CustomerService
	suppliers core.SupplierService
	tenants   core.TenantService
	users     core.UserService
	appor     *core.Apportioner
	asst      assistant.AssistantService
	posting   PostingConfig
}

// NewAppService constructs the ApplicationService over a shared pool. asst may
// be nil when no assistant is configured; DraftDocument then returns an error.
func NewAppService(pool *pgxpool.Pool, asst assistant.AssistantService, posting PostingConfig, logger *log.Logger) ApplicationService {
	return &appService{
		pool:      pool,
		ledger:    core.NewLedger(pool),
		purchases: core.NewPurchaseOrderService(pool),
		taxes:     core.NewTaxService(pool),
		reports:   core.NewTaxReportService(pool),
		accounts:  core.NewAccountService(pool),
		customers: core.NewCustomerService(pool),
		suppliers: core.NewSupplierService(pool),
		tenants:   core.NewTenantService(pool),
		users:     core.NewUserService(pool),
		appor:     core.NewApportioner(pool, logger),
		asst:      asst,
		posting:   posting,
	}
}

// scopeFor resolves the effective tenant scope for one operation.
func (s *appService) scopeFor(caller Caller, explicit *int64) core.Scope {
	return core.ResolveScope(explicit, nil, caller.core(), nil)
}

func (s *appService) AuthenticateUser(ctx context.Context, tenantCode, username, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, tenantCode, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{
		UserID:      user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Elevated:    user.IsElevated,
	}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int64) (*UserResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: user}, nil
}

func (s *appService) PostDocument(ctx context.Context, caller Caller, req PostDocumentRequest) (*PostingResult, error) {
	scope := s.scopeFor(caller, req.TenantID)
	if scope.TenantID == nil {
		// Posting writes rows; it needs one concrete tenant, so an elevated
		// caller must name the tenant explicitly.
		return nil, &core.ValidationError{Field: "tenant", Message: "posting requires one tenant"}
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		return nil, err
	}
	subtotal, taxAmount, totalAmount, err := parseAmounts(req.Subtotal, req.TaxAmount, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	refKind := core.ReferenceKind(strings.ToLower(strings.TrimSpace(req.ReferenceKind)))
	doc := core.SourceDocument{
		Kind:            core.DocumentKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Reference:       core.DocumentRef{Kind: refKind, ID: req.ReferenceID},
		TenantID:        *scope.TenantID,
		ReferenceNumber: req.ReferenceNumber,
		Date:            date,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		TotalAmount:     totalAmount,
		TaxRateID:       req.TaxRateID,
		CounterpartyID:  req.CounterpartyID,
	}
	if caller.UserID > 0 {
		creator := caller.UserID
		doc.CreatorID = &creator
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	accounts := s.posting.Sale
	if doc.Kind == core.DocumentPurchase {
		accounts = s.posting.Purchase
	}

	entry, err := s.ledger.Post(ctx, doc, accounts)
	if err != nil {
		return nil, err
	}
	return &PostingResult{Entry: entry}, nil
}

func (s *appService) GetPosting(ctx context.Context, caller Caller, explicitTenant *int64, kind string, refID int64) (*PostingResult, error) {
	refKind := core.ReferenceKind(strings.ToLower(strings.TrimSpace(kind)))
	if _, ok := core.ValidReferenceKinds[refKind]; !ok {
		return nil, &core.ValidationError{Field: "reference_kind", Message: fmt.Sprintf("unknown reference kind %q", kind)}
	}

	entry, err := s.ledger.EntryByReference(ctx, s.scopeFor(caller, explicitTenant), core.DocumentRef{Kind: refKind, ID: refID})
	if err != nil {
		return nil, err
	}
	return &PostingResult{Entry: entry}, nil
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, caller Caller, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	scope := s.scopeFor(caller, req.TenantID)

	orderDate, err := parseDateOrToday(req.OrderDate)
	if err != nil {
		return nil, err
	}

	items := make([]core.PurchaseOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return nil, &core.ValidationError{Field: "items", Message: fmt.Sprintf("item %d: quantity %q is not a decimal", i+1, item.Quantity)}
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, &core.ValidationError{Field: "items", Message: fmt.Sprintf("item %d: unit price %q is not a decimal", i+1, item.UnitPrice)}
		}
		items[i] = core.PurchaseOrderItemInput{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   price,
		}
	}

	po, err := s.purchases.Create(ctx, scope, req.SupplierID, orderDate, items)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, caller Caller, explicitTenant *int64, poID int64) (*PurchaseOrderResult, error) {
	po, err := s.purchases.Get(ctx, s.scopeFor(caller, explicitTenant), poID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) ListPurchaseOrders(ctx context.Context, caller Caller, explicitTenant *int64) (*PurchaseOrderListResult, error) {
	orders, err := s.purchases.List(ctx, s.scopeFor(caller, explicitTenant))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders}, nil
}

func (s *appService) AddLandedCost(ctx context.Context, caller Caller, req AddLandedCostRequest) (*PurchaseOrderResult, error) {
	scope := s.scopeFor(caller, req.TenantID)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, &core.ValidationError{Field: "amount", Message: fmt.Sprintf("%q is not a decimal", req.Amount)}
	}

	if _, err := s.purchases.AddLandedCost(ctx, scope, req.PurchaseOrderID, req.Description, amount); err != nil {
		return nil, err
	}

	// A new charge immediately re-apportions so per-unit costs never lag the
	// charge list.
	return s.ApportionLandedCosts(ctx, caller, req.TenantID, req.PurchaseOrderID)
}

func (s *appService) ApportionLandedCosts(ctx context.Context, caller Caller, explicitTenant *int64, poID int64) (*PurchaseOrderResult, error) {
	scope := s.scopeFor(caller, explicitTenant)
	if err := s.appor.Apportion(ctx, scope, poID); err != nil {
		return nil, err
	}
	po, err := s.purchases.Get(ctx, scope, poID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) TaxReportMonth(ctx context.Context, caller Caller, explicitTenant *int64, year, month int) (*core.TaxReport, error) {
	return s.reports.ReportMonth(ctx, s.scopeFor(caller, explicitTenant), year, month)
}

func (s *appService) TaxReportYear(ctx context.Context, caller Caller, explicitTenant *int64, year int) (*core.TaxReport, error) {
	return s.reports.ReportYear(ctx, s.scopeFor(caller, explicitTenant), year)
}

func (s *appService) TaxReportRange(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*core.TaxReport, error) {
	from, to, err := parseRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return s.reports.ReportRange(ctx, s.scopeFor(caller, explicitTenant), from, to)
}

func (s *appService) TaxDashboard(ctx context.Context, caller Caller, explicitTenant *int64) (*core.TaxDashboard, error) {
	return s.reports.Dashboard(ctx, s.scopeFor(caller, explicitTenant), time.Now().UTC())
}

func (s *appService) ListTaxCollections(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*TaxCollectionListResult, error) {
	from, to, err := parseRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	records, err := s.taxes.Collections(ctx, s.scopeFor(caller, explicitTenant), from, to)
	if err != nil {
		return nil, err
	}
	return &TaxCollectionListResult{Collections: records}, nil
}

func (s *appService) ListTaxPayments(ctx context.Context, caller Caller, explicitTenant *int64, fromDate, toDate string) (*TaxPaymentListResult, error) {
	from, to, err := parseRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	records, err := s.taxes.Payments(ctx, s.scopeFor(caller, explicitTenant), from, to)
	if err != nil {
		return nil, err
	}
	return &TaxPaymentListResult{Payments: records}, nil
}

func (s *appService) MarkTaxRemitted(ctx context.Context, caller Caller, req MarkTaxRequest) (int64, error) {
	when, err := parseDateOrToday(req.Date)
	if err != nil {
		return 0, err
	}
	return s.taxes.MarkRemitted(ctx, s.scopeFor(caller, req.TenantID), req.IDs, when)
}

func (s *appService) MarkTaxRecovered(ctx context.Context, caller Caller, req MarkTaxRequest) (int64, error) {
	when, err := parseDateOrToday(req.Date)
	if err != nil {
		return 0, err
	}
	return s.taxes.MarkRecovered(ctx, s.scopeFor(caller, req.TenantID), req.IDs, when)
}

func (s *appService) ListAccounts(ctx context.Context, caller Caller, explicitTenant *int64) (*AccountListResult, error) {
	accounts, err := s.accounts.List(ctx, s.scopeFor(caller, explicitTenant))
	if err != nil {
		return nil, err
	}
	return &AccountListResult{Accounts: accounts}, nil
}

func (s *appService) ListCustomers(ctx context.Context, caller Caller, explicitTenant *int64) (*CustomerListResult, error) {
	customers, err := s.customers.List(ctx, s.scopeFor(caller, explicitTenant))
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) ListSuppliers(ctx context.Context, caller Caller, explicitTenant *int64) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.List(ctx, s.scopeFor(caller, explicitTenant))
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) ListTenants(ctx context.Context, caller Caller) (*TenantListResult, error) {
	tenants, err := s.tenants.ListActive(ctx, s.scopeFor(caller, nil))
	if err != nil {
		return nil, err
	}
	return &TenantListResult{Tenants: tenants}, nil
}

func (s *appService) DraftDocument(ctx context.Context, caller Caller, text string) (*assistant.DocumentDraft, error) {
	if s.asst == nil {
		return nil, errors.New("assistant is not configured")
	}

	rates, err := s.fetchTaxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tax rates: %w", err)
	}
	return s.asst.DraftDocument(ctx, text, rates)
}

// fetchTaxRates formats the tax rate table for the assistant prompt.
func (s *appService) fetchTaxRates(ctx context.Context) (string, error) {
	rows, err := s.pool.Query(ctx, "SELECT name, rate_percent FROM tax_rates ORDER BY id")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var name string
		var rate decimal.Decimal
		if err := rows.Scan(&name, &rate); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("- %s (%s%%)", name, rate))
	}
	return strings.Join(lines, "\n"), rows.Err()
}

func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return t, nil
}

func parseRange(fromDate, toDate string) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return time.Time{}, time.Time{}, &core.ValidationError{Field: "from", Message: fmt.Sprintf("%q is not YYYY-MM-DD", fromDate)}
	}
	to, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return time.Time{}, time.Time{}, &core.ValidationError{Field: "to", Message: fmt.Sprintf("%q is not YYYY-MM-DD", toDate)}
	}
	return from, to, nil
}

func parseAmounts(subtotal, taxAmount, totalAmount string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	sub, err := decimal.NewFromString(subtotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, &core.ValidationError{Field: "subtotal", Message: fmt.Sprintf("%q is not a decimal", subtotal)}
	}
	tax, err := decimal.NewFromString(taxAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, &core.ValidationError{Field: "tax_amount", Message: fmt.Sprintf("%q is not a decimal", taxAmount)}
	}
	total, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, &core.ValidationError{Field: "total_amount", Message: fmt.Sprintf("%q is not a decimal", totalAmount)}
	}
	return sub, tax, total, nil
}
