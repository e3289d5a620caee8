package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierInput holds the fields required to create a supplier.
type SupplierInput struct {
	Code  string
	Name  string
	Email string
}

// SupplierService provides supplier master data operations, tenant-scoped.
type SupplierService interface {
	Create(ctx context.Context, scope Scope, input SupplierInput) (*Supplier, error)
	List(ctx context.Context, scope Scope) ([]Supplier, error)
	GetByCode(ctx context.Context, scope Scope, code string) (*Supplier, error)
}

type supplierService struct {
	pool *pgxpool.Pool
}

func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

func (s *supplierService) Create(ctx context.Context, scope Scope, input SupplierInput) (*Supplier, error) {
	if scope.TenantID == nil {
		return nil, errors.New("supplier creation requires a tenant scope")
	}
	if input.Code == "" || input.Name == "" {
		return nil, errors.New("supplier code and name are required")
	}

	sp := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (tenant_id, code, name, email, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, tenant_id, code, name, email, is_active`,
		*scope.TenantID, input.Code, input.Name, input.Email,
	).Scan(&sp.ID, &sp.TenantID, &sp.Code, &sp.Name, &sp.Email, &sp.IsActive)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Code, err)
	}
	return sp, nil
}

func (s *supplierService) List(ctx context.Context, scope Scope) ([]Supplier, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, code, name, email, is_active
		FROM suppliers
		WHERE is_active = true`
	var args []any
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $1"
	}
	q += " ORDER BY code"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sp Supplier
		if err := rows.Scan(&sp.ID, &sp.TenantID, &sp.Code, &sp.Name, &sp.Email, &sp.IsActive); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *supplierService) GetByCode(ctx context.Context, scope Scope, code string) (*Supplier, error) {
	if scope.Empty() {
		return nil, fmt.Errorf("supplier %q: %w", code, ErrNotFound)
	}

	q := `
		SELECT id, tenant_id, code, name, email, is_active
		FROM suppliers
		WHERE code = $1`
	args := []any{code}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $2"
	}

	sp := &Supplier{}
	if err := s.pool.QueryRow(ctx, q, args...).Scan(
		&sp.ID, &sp.TenantID, &sp.Code, &sp.Name, &sp.Email, &sp.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch supplier %q: %w", code, err)
	}
	return sp, nil
}
