package core_test

import (
	"testing"

	"github.com/ozavala/Clix-sub000/internal/core"
)

func int64Ptr(v int64) *int64 { return &v }

func TestResolveScope_PriorityChain(t *testing.T) {
	boundTenant := &core.Tenant{ID: 7, Code: "acme", IsActive: true}

	tests := []struct {
		name         string
		explicit     *int64
		bound        *core.Tenant
		caller       core.Caller
		fallback     *int64
		wantTenantID *int64
		wantUnscoped bool
		wantEmpty    bool
	}{
		{
			name:         "explicit id wins for its own tenant",
			explicit:     int64Ptr(3),
			bound:        boundTenant,
			caller:       core.Caller{TenantID: int64Ptr(3)},
			fallback:     int64Ptr(9),
			wantTenantID: int64Ptr(3),
		},
		{
			name:         "explicit id wins for elevated caller",
			explicit:     int64Ptr(5),
			caller:       core.Caller{IsElevated: true},
			wantTenantID: int64Ptr(5),
		},
		{
			name:      "explicit id for a foreign tenant yields empty, not the foreign tenant",
			explicit:  int64Ptr(5),
			caller:    core.Caller{TenantID: int64Ptr(3)},
			fallback:  int64Ptr(9),
			wantEmpty: true,
		},
		{
			name:         "bound tenant used when no explicit id",
			bound:        boundTenant,
			caller:       core.Caller{TenantID: int64Ptr(3)},
			wantTenantID: int64Ptr(7),
		},
		{
			name:         "caller's own tenant used when nothing bound",
			caller:       core.Caller{TenantID: int64Ptr(3)},
			wantTenantID: int64Ptr(3),
		},
		{
			name:         "fallback default used last",
			caller:       core.Caller{},
			fallback:     int64Ptr(9),
			wantTenantID: int64Ptr(9),
		},
		{
			name:         "elevated caller with no explicit id aggregates unscoped, not the default",
			bound:        boundTenant,
			caller:       core.Caller{TenantID: int64Ptr(3), IsElevated: true},
			fallback:     int64Ptr(9),
			wantUnscoped: true,
		},
		{
			name:      "nothing resolvable yields empty scope",
			caller:    core.Caller{},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := core.ResolveScope(tt.explicit, tt.bound, tt.caller, tt.fallback)

			if tt.wantEmpty {
				if !scope.Empty() {
					t.Fatalf("expected empty scope, got %+v", scope)
				}
				return
			}
			if scope.Empty() {
				t.Fatalf("unexpected empty scope")
			}
			if tt.wantUnscoped {
				if !scope.Unscoped {
					t.Errorf("expected unscoped scope, got %+v", scope)
				}
				return
			}
			if scope.TenantID == nil || *scope.TenantID != *tt.wantTenantID {
				t.Errorf("resolved tenant: want %d, got %v", *tt.wantTenantID, scope.TenantID)
			}
		})
	}
}

func TestResolveScope_NeverFailsOpen(t *testing.T) {
	// A resolution failure for a non-elevated caller must never produce an
	// unscoped scope: reads against the result return nothing.
	scope := core.ResolveScope(nil, nil, core.Caller{}, nil)
	if scope.Unscoped {
		t.Fatal("resolution failure produced an unscoped scope")
	}
	if !scope.Empty() {
		t.Fatalf("resolution failure produced a tenant scope: %+v", scope)
	}
}

func TestResolveOwningTenant_StopsAtFirstSuccess(t *testing.T) {
	calls := 0
	counting := func(id int64, ok bool) core.TenantStrategy {
		return func() (int64, bool) {
			calls++
			return id, ok
		}
	}

	id, ok := core.ResolveOwningTenant(
		counting(0, false),
		counting(42, true),
		counting(99, true),
	)
	if !ok || id != 42 {
		t.Fatalf("want (42, true), got (%d, %v)", id, ok)
	}
	if calls != 2 {
		t.Errorf("expected resolution to stop at first success, ran %d strategies", calls)
	}
}

func TestResolveOwningTenant_NoStrategySucceeds(t *testing.T) {
	if id, ok := core.ResolveOwningTenant(core.FromID(nil), core.FromScope(core.Scope{})); ok {
		t.Fatalf("expected no resolution, got %d", id)
	}
}

func TestResolveOwningTenant_FromScopeAndID(t *testing.T) {
	poTenant := int64(11)
	id, ok := core.ResolveOwningTenant(
		core.FromScope(core.Scope{}),
		core.FromID(&poTenant),
	)
	if !ok || id != 11 {
		t.Fatalf("want (11, true), got (%d, %v)", id, ok)
	}

	id, ok = core.ResolveOwningTenant(
		core.FromScope(core.ScopeTenant(4)),
		core.FromID(&poTenant),
	)
	if !ok || id != 4 {
		t.Fatalf("scope should win: want (4, true), got (%d, %v)", id, ok)
	}
}
