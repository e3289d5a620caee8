package app

import "github.com/ozavala/Clix-sub000/internal/core"

// UserSession is returned on successful authentication. Adapters turn it into
// whatever credential they hand back to the client.
type UserSession struct {
	UserID      int64  `json:"user_id"`
	TenantID    int64  `json:"tenant_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Elevated    bool   `json:"elevated"`
}

type UserResult struct {
	User *core.User `json:"user"`
}

type PostingResult struct {
	Entry *core.JournalEntry `json:"entry"`
}

type PurchaseOrderResult struct {
	Order *core.PurchaseOrder `json:"order"`
}

type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder `json:"orders"`
}

type TaxCollectionListResult struct {
	Collections []core.TaxCollection `json:"collections"`
}

type TaxPaymentListResult struct {
	Payments []core.TaxPayment `json:"payments"`
}

type AccountListResult struct {
	Accounts []core.Account `json:"accounts"`
}

type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

type SupplierListResult struct {
	Suppliers []core.Supplier `json:"suppliers"`
}

type TenantListResult struct {
	Tenants []core.Tenant `json:"tenants"`
}
