package web

import (
	"net/http"
	"strings"
)

// assistantDraft handles POST /api/assistant/draft. Turns free text into a
// reviewable document draft. Nothing is posted from this endpoint.
func (h *Handler) assistantDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	draft, err := h.svc.DraftDocument(r.Context(), callerFromContext(r.Context()), req.Text)
	if err != nil {
		writeError(w, r, err.Error(), "ASSISTANT_ERROR", http.StatusBadGateway)
		return
	}
	writeJSON(w, draft)
}
