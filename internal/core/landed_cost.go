package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LandedCost is an ad-hoc charge (freight, duties, insurance) attached to a
// costable owner. Read-only input to apportionment.
type LandedCost struct {
	ID          int64           `json:"id"`
	TenantID    int64           `json:"tenant_id"`
	Owner       DocumentRef     `json:"owner"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ApportionItem is the slice of a purchase-order item the apportionment
// algorithm needs.
type ApportionItem struct {
	ID        int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ApportionLandedCost distributes totalLanded across items proportionally to
// item value (quantity × unit price). Returns one per-unit cost per item, in
// input order, and whether the inputs were degenerate (nonpositive landed
// total, or an item-value subtotal that rounds to 0.00: nothing to allocate
// by). Degenerate inputs yield all-zero per-unit costs, not an error.
//
// Item values are computed at 4 decimal places rather than read from a stored
// line total: a stored total can go stale against an edited quantity or
// price. Proportions and apportioned costs carry 10 decimal places; only the
// final per-unit figure is rounded to the stored 4.
func ApportionLandedCost(items []ApportionItem, totalLanded decimal.Decimal) ([]decimal.Decimal, bool) {
	perUnit := make([]decimal.Decimal, len(items))
	for i := range perUnit {
		perUnit[i] = decimal.Zero
	}
	if len(items) == 0 {
		return perUnit, false
	}
	if !totalLanded.IsPositive() {
		return perUnit, false
	}

	values := make([]decimal.Decimal, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		values[i] = MulAt(item.Quantity, item.UnitPrice, UnitCostScale)
		subtotal = subtotal.Add(values[i])
	}

	if subtotal.Round(MoneyScale).IsZero() {
		// Apportionment by value is undefined with a zero-value order.
		return perUnit, true
	}

	for i, item := range items {
		if !item.Quantity.IsPositive() {
			continue
		}
		proportion := DivAt(values[i], subtotal, RatioScale)
		apportioned := MulAt(totalLanded, proportion, RatioScale)
		perUnit[i] = DivAt(apportioned, item.Quantity, UnitCostScale)
	}
	return perUnit, false
}

// Apportioner recomputes landed_cost_per_unit for purchase-order items.
type Apportioner struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewApportioner(pool *pgxpool.Pool, logger *log.Logger) *Apportioner {
	if logger == nil {
		logger = log.Default()
	}
	return &Apportioner{pool: pool, logger: logger}
}

// Apportion loads a purchase order's items and landed-cost charges, runs the
// apportionment, and overwrites each item's landed_cost_per_unit in one
// transaction. Idempotent: re-running with unchanged inputs reproduces the
// same values; re-running after an input change fully replaces stale values.
// There is no lock on the purchase order; concurrent calls race and the last
// writer wins.
func (a *Apportioner) Apportion(ctx context.Context, scope Scope, purchaseOrderID int64) error {
	if scope.Empty() {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := "SELECT tenant_id FROM purchase_orders WHERE id = $1"
	args := []any{purchaseOrderID}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $2"
	}
	var tenantID int64
	if err := tx.QueryRow(ctx, q, args...).Scan(&tenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("purchase order %d: %w", purchaseOrderID, ErrNotFound)
		}
		return fmt.Errorf("fetch purchase order %d: %w", purchaseOrderID, err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, quantity, unit_price
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY id`,
		purchaseOrderID,
	)
	if err != nil {
		return fmt.Errorf("fetch items for purchase order %d: %w", purchaseOrderID, err)
	}
	var items []ApportionItem
	for rows.Next() {
		var item ApportionItem
		if err := rows.Scan(&item.ID, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate purchase order items: %w", err)
	}

	var totalLanded decimal.Decimal
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM landed_costs
		WHERE owner_kind = $1 AND owner_id = $2`,
		string(RefPurchaseOrder), purchaseOrderID,
	).Scan(&totalLanded); err != nil {
		return fmt.Errorf("sum landed costs for purchase order %d: %w", purchaseOrderID, err)
	}

	perUnit, degenerate := ApportionLandedCost(items, totalLanded)
	if degenerate {
		a.logger.Printf("landed cost apportionment undefined for purchase order %d: zero-value subtotal, writing zero per-unit costs", purchaseOrderID)
	}

	for i, item := range items {
		if _, err := tx.Exec(ctx,
			"UPDATE purchase_order_items SET landed_cost_per_unit = $1 WHERE id = $2",
			perUnit[i], item.ID,
		); err != nil {
			return fmt.Errorf("update landed cost for item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit apportionment: %w", err)
	}
	return nil
}
