package app

// PostDocumentRequest carries one business document to post. Amounts are
// decimal strings so JSON clients cannot introduce float artifacts.
type PostDocumentRequest struct {
	TenantID        *int64 `json:"tenant_id,omitempty"`
	Kind            string `json:"kind"`           // "sale" or "purchase"
	ReferenceKind   string `json:"reference_kind"` // "invoice", "bill", "purchase_order"
	ReferenceID     int64  `json:"reference_id"`
	ReferenceNumber string `json:"reference_number"`
	Date            string `json:"date"` // YYYY-MM-DD; empty means today
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	TotalAmount     string `json:"total_amount"`
	TaxRateID       *int64 `json:"tax_rate_id,omitempty"`
	CounterpartyID  *int64 `json:"counterparty_id,omitempty"`
}

// PurchaseOrderItemRequest is one item on a new purchase order.
type PurchaseOrderItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type CreatePurchaseOrderRequest struct {
	TenantID   *int64                     `json:"tenant_id,omitempty"`
	SupplierID int64                      `json:"supplier_id"`
	OrderDate  string                     `json:"order_date"` // YYYY-MM-DD; empty means today
	Items      []PurchaseOrderItemRequest `json:"items"`
}

type AddLandedCostRequest struct {
	TenantID        *int64 `json:"tenant_id,omitempty"`
	PurchaseOrderID int64  `json:"purchase_order_id"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
}

// MarkTaxRequest is a batch status transition for tax records.
type MarkTaxRequest struct {
	TenantID *int64  `json:"tenant_id,omitempty"`
	IDs      []int64 `json:"ids"`
	Date     string  `json:"date"` // remittance/recovery date; empty means today
}
