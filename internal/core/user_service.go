package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any authentication failure. The cause
// (unknown tenant, unknown user, wrong password) is deliberately not exposed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService handles user lookups and credential checks. Usernames are
// unique per tenant, so authentication always starts from a tenant code.
type UserService interface {
	Authenticate(ctx context.Context, tenantCode, username, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) Authenticate(ctx context.Context, tenantCode, username, password string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.tenant_id, u.username, u.display_name, u.password_hash, u.is_elevated, u.is_active
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE t.code = $1 AND t.is_active = true AND u.username = $2 AND u.is_active = true`,
		tenantCode, username,
	).Scan(&u.ID, &u.TenantID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.IsElevated, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, username, display_name, password_hash, is_elevated, is_active
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.TenantID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.IsElevated, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch user %d: %w", id, err)
	}
	return u, nil
}
