package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantService provides tenant master data lookups.
type TenantService interface {
	// GetByCode returns an active tenant by its code.
	GetByCode(ctx context.Context, code string) (*Tenant, error)

	// GetByID returns a tenant by id.
	GetByID(ctx context.Context, id int64) (*Tenant, error)

	// ListActive returns all active tenants, ordered by code. Restricted to
	// elevated callers: a non-elevated scope sees nothing.
	ListActive(ctx context.Context, scope Scope) ([]Tenant, error)
}

type tenantService struct {
	pool *pgxpool.Pool
}

func NewTenantService(pool *pgxpool.Pool) TenantService {
	return &tenantService{pool: pool}
}

func (s *tenantService) GetByCode(ctx context.Context, code string) (*Tenant, error) {
	t := &Tenant{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, is_active, subscription_state, created_at
		FROM tenants
		WHERE code = $1 AND is_active = true`,
		code,
	).Scan(&t.ID, &t.Code, &t.Name, &t.IsActive, &t.SubscriptionState, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch tenant %q: %w", code, err)
	}
	return t, nil
}

func (s *tenantService) GetByID(ctx context.Context, id int64) (*Tenant, error) {
	t := &Tenant{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, is_active, subscription_state, created_at
		FROM tenants
		WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Code, &t.Name, &t.IsActive, &t.SubscriptionState, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch tenant %d: %w", id, err)
	}
	return t, nil
}

func (s *tenantService) ListActive(ctx context.Context, scope Scope) ([]Tenant, error) {
	if !scope.Unscoped {
		// Listing tenants is inherently cross-tenant.
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, is_active, subscription_state, created_at
		FROM tenants
		WHERE is_active = true
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.IsActive, &t.SubscriptionState, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
