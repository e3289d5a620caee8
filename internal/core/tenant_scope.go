package core

// Caller is the already-authenticated actor every core operation runs as.
// IsElevated marks super-admin callers allowed to aggregate across tenants.
type Caller struct {
	TenantID   *int64
	IsElevated bool
}

// Scope is the resolved tenant filter for a query.
//
// Exactly one of three shapes:
//   - TenantID set:       filter to that tenant
//   - Unscoped true:      no tenant filter (elevated aggregate mode)
//   - both zero (Empty):  resolution failed for a non-elevated caller;
//     every read against an empty scope returns an empty result set.
//
// The empty shape exists so a resolution failure can never fall through to
// another tenant's data.
type Scope struct {
	TenantID *int64
	Unscoped bool
}

// Empty reports whether no tenant could be resolved. Reads treat an empty
// scope as "return nothing", never as "return everything".
func (s Scope) Empty() bool {
	return s.TenantID == nil && !s.Unscoped
}

// ScopeTenant returns a scope filtered to one tenant.
func ScopeTenant(tenantID int64) Scope {
	return Scope{TenantID: &tenantID}
}

// ScopeUnscoped returns the cross-tenant aggregate scope.
func ScopeUnscoped() Scope {
	return Scope{Unscoped: true}
}

// ResolveScope determines the effective tenant for an operation.
//
// Priority chain:
//  1. explicit tenant id argument
//  2. tenant currently bound to the request
//  3. the caller's own tenant
//  4. the process-wide fallback default
//
// An elevated caller that supplies no explicit tenant gets the unscoped
// aggregate mode instead of a default. A non-elevated caller for whom nothing
// resolves gets the empty scope: downstream reads return empty result sets
// rather than raising or falling back to another tenant.
func ResolveScope(explicit *int64, bound *Tenant, caller Caller, fallback *int64) Scope {
	if explicit != nil {
		if caller.IsElevated || (caller.TenantID != nil && *caller.TenantID == *explicit) {
			return Scope{TenantID: explicit}
		}
		// Caller asked for a tenant it is not authorized for.
		return Scope{}
	}

	if caller.IsElevated {
		return ScopeUnscoped()
	}

	if bound != nil {
		id := bound.ID
		return Scope{TenantID: &id}
	}
	if caller.TenantID != nil {
		return Scope{TenantID: caller.TenantID}
	}
	if fallback != nil {
		return Scope{TenantID: fallback}
	}
	return Scope{}
}

// TenantStrategy is one pure derivation step for finding the tenant that owns
// a record being created. It returns (0, false) when it cannot decide.
type TenantStrategy func() (int64, bool)

// ResolveOwningTenant walks an explicit, ordered list of derivation strategies
// and stops at the first success. Callers list their strategies from most to
// least specific (current scope, related purchase order, related document, ...).
func ResolveOwningTenant(strategies ...TenantStrategy) (int64, bool) {
	for _, strategy := range strategies {
		if id, ok := strategy(); ok {
			return id, true
		}
	}
	return 0, false
}

// FromScope adapts a resolved Scope into a derivation strategy.
func FromScope(scope Scope) TenantStrategy {
	return func() (int64, bool) {
		if scope.TenantID != nil {
			return *scope.TenantID, true
		}
		return 0, false
	}
}

// FromID adapts an optional tenant id (e.g. read off a related purchase order
// or document) into a derivation strategy.
func FromID(tenantID *int64) TenantStrategy {
	return func() (int64, bool) {
		if tenantID != nil {
			return *tenantID, true
		}
		return 0, false
	}
}
