package web

import (
	"net/http"

	"github.com/ozavala/Clix-sub000/internal/app"
)

// listTaxCollections handles GET /api/taxes/collections?from=&to=.
func (h *Handler) listTaxCollections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListTaxCollections(r.Context(), callerFromContext(r.Context()), tenantParam(r),
		q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listTaxPayments handles GET /api/taxes/payments?from=&to=.
func (h *Handler) listTaxPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListTaxPayments(r.Context(), callerFromContext(r.Context()), tenantParam(r),
		q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type taxTransitionResponse struct {
	Transitioned int64 `json:"transitioned"`
}

// markRemitted handles POST /api/taxes/remit, the batch collected-to-remitted transition.
func (h *Handler) markRemitted(w http.ResponseWriter, r *http.Request) {
	var req app.MarkTaxRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	moved, err := h.svc.MarkTaxRemitted(r.Context(), callerFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, taxTransitionResponse{Transitioned: moved})
}

// markRecovered handles POST /api/taxes/recover, the batch paid-to-recovered transition.
func (h *Handler) markRecovered(w http.ResponseWriter, r *http.Request) {
	var req app.MarkTaxRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	moved, err := h.svc.MarkTaxRecovered(r.Context(), callerFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, taxTransitionResponse{Transitioned: moved})
}
