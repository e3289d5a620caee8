package web

import (
	"net/http"

	"github.com/ozavala/Clix-sub000/internal/app"
)

// listPurchaseOrders handles GET /api/purchase-orders.
func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), callerFromContext(r.Context()), tenantParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createPurchaseOrder handles POST /api/purchase-orders.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), callerFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCreated(w, result)
}

// getPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	poID, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid purchase order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.GetPurchaseOrder(r.Context(), callerFromContext(r.Context()), tenantParam(r), poID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// addLandedCost handles POST /api/purchase-orders/{id}/landed-costs. The
// charge is attached and apportionment re-runs before the response.
func (h *Handler) addLandedCost(w http.ResponseWriter, r *http.Request) {
	poID, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid purchase order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var req app.AddLandedCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PurchaseOrderID = poID
	if req.TenantID == nil {
		req.TenantID = tenantParam(r)
	}

	result, err := h.svc.AddLandedCost(r.Context(), callerFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apportion handles POST /api/purchase-orders/{id}/apportion. Recomputes
// per-unit landed cost from the current charges.
func (h *Handler) apportion(w http.ResponseWriter, r *http.Request) {
	poID, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid purchase order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ApportionLandedCosts(r.Context(), callerFromContext(r.Context()), tenantParam(r), poID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
