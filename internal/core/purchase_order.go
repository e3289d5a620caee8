package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
)

type PurchaseOrder struct {
	ID          int64               `json:"id"`
	TenantID    int64               `json:"tenant_id"`
	SupplierID  int64               `json:"supplier_id"`
	OrderNumber string              `json:"order_number"`
	OrderDate   time.Time           `json:"order_date"`
	Status      PurchaseOrderStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []PurchaseOrderItem `json:"items"`
}

// PurchaseOrderItem is one ordered line. LandedCostPerUnit is derived and
// written only by the Apportioner.
type PurchaseOrderItem struct {
	ID                int64           `json:"id"`
	PurchaseOrderID   int64           `json:"purchase_order_id"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LandedCostPerUnit decimal.Decimal `json:"landed_cost_per_unit"`
}

// PurchaseOrderItemInput holds the fields to create one PO item.
type PurchaseOrderItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// PurchaseOrderService manages purchase orders, their items, and the
// landed-cost charges attached to them.
type PurchaseOrderService interface {
	Create(ctx context.Context, scope Scope, supplierID int64, orderDate time.Time, items []PurchaseOrderItemInput) (*PurchaseOrder, error)
	Get(ctx context.Context, scope Scope, poID int64) (*PurchaseOrder, error)
	List(ctx context.Context, scope Scope) ([]PurchaseOrder, error)
	AddLandedCost(ctx context.Context, scope Scope, poID int64, description string, amount decimal.Decimal) (*LandedCost, error)
	LandedCosts(ctx context.Context, scope Scope, poID int64) ([]LandedCost, error)
}

type purchaseOrderService struct {
	pool *pgxpool.Pool
}

func NewPurchaseOrderService(pool *pgxpool.Pool) PurchaseOrderService {
	return &purchaseOrderService{pool: pool}
}

// Create inserts a new draft purchase order with its items.
func (s *purchaseOrderService) Create(ctx context.Context, scope Scope, supplierID int64, orderDate time.Time, items []PurchaseOrderItemInput) (*PurchaseOrder, error) {
	if scope.TenantID == nil {
		return nil, &ValidationError{Field: "tenant", Message: "purchase order creation requires one tenant"}
	}
	tenantID := *scope.TenantID
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "purchase order must have at least one item"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1 AND tenant_id = $2 AND is_active = true)",
		supplierID, tenantID,
	).Scan(&supplierExists); err != nil {
		return nil, fmt.Errorf("validate supplier: %w", err)
	}
	if !supplierExists {
		return nil, fmt.Errorf("supplier %d for tenant %d: %w", supplierID, tenantID, ErrNotFound)
	}

	var poID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (tenant_id, supplier_id, order_number, order_date, status, created_at)
		VALUES ($1, $2, '', $3, $4, NOW())
		RETURNING id`,
		tenantID, supplierID, orderDate, string(PurchaseOrderDraft),
	).Scan(&poID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	orderNumber := fmt.Sprintf("PO-%d-%05d", orderDate.Year(), poID)
	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET order_number = $1 WHERE id = $2",
		orderNumber, poID,
	); err != nil {
		return nil, fmt.Errorf("assign order number: %w", err)
	}

	for i, input := range items {
		if input.Quantity.IsNegative() || input.UnitPrice.IsNegative() {
			return nil, &ValidationError{Field: "items", Message: fmt.Sprintf("item %d: quantity and unit price cannot be negative", i+1)}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_items (purchase_order_id, description, quantity, unit_price, landed_cost_per_unit)
			VALUES ($1, $2, $3, $4, 0)`,
			poID, input.Description, input.Quantity, input.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}
	return s.Get(ctx, scope, poID)
}

// Get fetches a purchase order with its items, scoped. Ownership failures
// collapse to not-found so IDs cannot be enumerated across tenants.
func (s *purchaseOrderService) Get(ctx context.Context, scope Scope, poID int64) (*PurchaseOrder, error) {
	if scope.Empty() {
		return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
	}

	q := `
		SELECT id, tenant_id, supplier_id, order_number, order_date, status, created_at
		FROM purchase_orders
		WHERE id = $1`
	args := []any{poID}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $2"
	}

	po := &PurchaseOrder{}
	if err := s.pool.QueryRow(ctx, q, args...).Scan(
		&po.ID, &po.TenantID, &po.SupplierID, &po.OrderNumber, &po.OrderDate, &po.Status, &po.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, purchase_order_id, description, quantity, unit_price, landed_cost_per_unit
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY id`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for purchase order %d: %w", poID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.LandedCostPerUnit); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		po.Items = append(po.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase order items: %w", err)
	}
	return po, nil
}

// List returns purchase orders visible to the scope, newest first.
func (s *purchaseOrderService) List(ctx context.Context, scope Scope) ([]PurchaseOrder, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, supplier_id, order_number, order_date, status, created_at
		FROM purchase_orders`
	var args []any
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " WHERE tenant_id = $1"
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.TenantID, &po.SupplierID, &po.OrderNumber,
			&po.OrderDate, &po.Status, &po.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// AddLandedCost attaches a charge to a purchase order. The charge itself is
// immutable input to apportionment.
func (s *purchaseOrderService) AddLandedCost(ctx context.Context, scope Scope, poID int64, description string, amount decimal.Decimal) (*LandedCost, error) {
	if amount.IsNegative() {
		return nil, &ValidationError{Field: "amount", Message: "landed cost amount cannot be negative"}
	}

	po, err := s.Get(ctx, scope, poID)
	if err != nil {
		return nil, err
	}

	// The charge belongs to whichever tenant owns the scope, falling back to
	// the purchase order's tenant for unscoped elevated callers.
	ownerTenant, ok := ResolveOwningTenant(FromScope(scope), FromID(&po.TenantID))
	if !ok {
		return nil, fmt.Errorf("cannot determine owning tenant for purchase order %d", poID)
	}

	lc := &LandedCost{
		TenantID:    ownerTenant,
		Owner:       DocumentRef{Kind: RefPurchaseOrder, ID: poID},
		Description: description,
		Amount:      amount,
	}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO landed_costs (tenant_id, owner_kind, owner_id, description, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ownerTenant, string(RefPurchaseOrder), poID, description, amount,
	).Scan(&lc.ID); err != nil {
		return nil, fmt.Errorf("insert landed cost: %w", err)
	}
	return lc, nil
}

// LandedCosts returns the charges attached to a purchase order.
func (s *purchaseOrderService) LandedCosts(ctx context.Context, scope Scope, poID int64) ([]LandedCost, error) {
	if _, err := s.Get(ctx, scope, poID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, owner_kind, owner_id, description, amount
		FROM landed_costs
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY id`,
		string(RefPurchaseOrder), poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch landed costs for purchase order %d: %w", poID, err)
	}
	defer rows.Close()

	var costs []LandedCost
	for rows.Next() {
		var lc LandedCost
		var ownerKind string
		if err := rows.Scan(&lc.ID, &lc.TenantID, &ownerKind, &lc.Owner.ID, &lc.Description, &lc.Amount); err != nil {
			return nil, fmt.Errorf("scan landed cost: %w", err)
		}
		lc.Owner.Kind = ReferenceKind(ownerKind)
		costs = append(costs, lc)
	}
	return costs, rows.Err()
}
