package web

import (
	"net/http"
)

// listAccounts handles GET /api/accounts.
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListAccounts(r.Context(), callerFromContext(r.Context()), tenantParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listCustomers handles GET /api/customers.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context(), callerFromContext(r.Context()), tenantParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listSuppliers handles GET /api/suppliers.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context(), callerFromContext(r.Context()), tenantParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listTenants handles GET /api/tenants. Non-elevated callers get an empty
// list rather than an error.
func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListTenants(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
