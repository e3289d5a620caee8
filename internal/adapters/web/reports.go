package web

import (
	"net/http"
)

// taxReportMonth handles GET /api/reports/tax/month?year=&month=.
func (h *Handler) taxReportMonth(w http.ResponseWriter, r *http.Request) {
	year, okY := intQuery(r, "year")
	month, okM := intQuery(r, "month")
	if !okY || !okM {
		writeError(w, r, "year and month query parameters are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	report, err := h.svc.TaxReportMonth(r.Context(), callerFromContext(r.Context()), tenantParam(r), year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// taxReportYear handles GET /api/reports/tax/year?year=.
func (h *Handler) taxReportYear(w http.ResponseWriter, r *http.Request) {
	year, ok := intQuery(r, "year")
	if !ok {
		writeError(w, r, "year query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	report, err := h.svc.TaxReportYear(r.Context(), callerFromContext(r.Context()), tenantParam(r), year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// taxReportRange handles GET /api/reports/tax/range?from=&to=.
func (h *Handler) taxReportRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.svc.TaxReportRange(r.Context(), callerFromContext(r.Context()), tenantParam(r),
		q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// taxDashboard handles GET /api/reports/tax/dashboard.
func (h *Handler) taxDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.TaxDashboard(r.Context(), callerFromContext(r.Context()), tenantParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, dash)
}
