package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozavala/Clix-sub000/internal/app"
	"github.com/ozavala/Clix-sub000/internal/core"
)

// postDocument handles POST /api/postings. Posts one business document to
// the ledger.
func (h *Handler) postDocument(w http.ResponseWriter, r *http.Request) {
	var req app.PostDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.PostDocument(r.Context(), callerFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, core.ErrAlreadyPosted) {
			writeError(w, r, err.Error(), "ALREADY_POSTED", http.StatusConflict)
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeCreated(w, result)
}

// getPosting handles GET /api/postings/{kind}/{id}.
func (h *Handler) getPosting(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	refID, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid document id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.GetPosting(r.Context(), callerFromContext(r.Context()), tenantParam(r), kind, refID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// writeDomainError maps service-layer errors onto HTTP statuses. The service
// returns typed errors (ValidationError, ErrNotFound) so the mapping never
// inspects message text: validation failures are 400, missing resources are
// 404, everything else is 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeError(w, r, verr.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		writeNotFound(w, r)
		return
	}
	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}
