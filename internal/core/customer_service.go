package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerInput holds the fields required to create a customer.
type CustomerInput struct {
	Code  string
	Name  string
	Email string
}

// CustomerService provides customer master data operations, tenant-scoped.
type CustomerService interface {
	Create(ctx context.Context, scope Scope, input CustomerInput) (*Customer, error)
	List(ctx context.Context, scope Scope) ([]Customer, error)
	GetByCode(ctx context.Context, scope Scope, code string) (*Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) Create(ctx context.Context, scope Scope, input CustomerInput) (*Customer, error) {
	if scope.TenantID == nil {
		return nil, errors.New("customer creation requires a tenant scope")
	}
	if input.Code == "" || input.Name == "" {
		return nil, errors.New("customer code and name are required")
	}

	c := &Customer{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (tenant_id, code, name, email, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, tenant_id, code, name, email, is_active`,
		*scope.TenantID, input.Code, input.Name, input.Email,
	).Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Email, &c.IsActive)
	if err != nil {
		return nil, fmt.Errorf("create customer %q: %w", input.Code, err)
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context, scope Scope) ([]Customer, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, code, name, email, is_active
		FROM customers
		WHERE is_active = true`
	var args []any
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $1"
	}
	q += " ORDER BY code"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Email, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *customerService) GetByCode(ctx context.Context, scope Scope, code string) (*Customer, error) {
	if scope.Empty() {
		return nil, fmt.Errorf("customer %q: %w", code, ErrNotFound)
	}

	q := `
		SELECT id, tenant_id, code, name, email, is_active
		FROM customers
		WHERE code = $1`
	args := []any{code}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " AND tenant_id = $2"
	}

	c := &Customer{}
	if err := s.pool.QueryRow(ctx, q, args...).Scan(
		&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Email, &c.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch customer %q: %w", code, err)
	}
	return c, nil
}
