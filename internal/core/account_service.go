package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountService reads the chart of accounts. Accounts are created by seed or
// admin action, not by the core; the core only resolves and lists them.
type AccountService interface {
	// List returns the chart of accounts for the scope, ordered by code.
	List(ctx context.Context, scope Scope) ([]Account, error)

	// GetByCode resolves one account by code within the scope.
	GetByCode(ctx context.Context, scope Scope, code string) (*Account, error)
}

type accountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) AccountService {
	return &accountService{pool: pool}
}

func (s *accountService) List(ctx context.Context, scope Scope) ([]Account, error) {
	if scope.Empty() {
		return nil, nil
	}

	q := `
		SELECT id, tenant_id, code, name, type, parent_code
		FROM accounts`
	var args []any
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		q += " WHERE tenant_id = $1"
	}
	q += " ORDER BY tenant_id, code"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.ParentCode); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *accountService) GetByCode(ctx context.Context, scope Scope, code string) (*Account, error) {
	if scope.TenantID == nil {
		return nil, errors.New("account lookup requires a tenant scope")
	}

	a := &Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, code, name, type, parent_code
		FROM accounts
		WHERE tenant_id = $1 AND code = $2`,
		*scope.TenantID, code,
	).Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.ParentCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch account %q: %w", code, err)
	}
	return a, nil
}
