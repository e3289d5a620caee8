package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ozavala/Clix-sub000/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		r.Post("/api/postings", h.postDocument)
		r.Get("/api/postings/{kind}/{id}", h.getPosting)

		r.Get("/api/purchase-orders", h.listPurchaseOrders)
		r.Post("/api/purchase-orders", h.createPurchaseOrder)
		r.Get("/api/purchase-orders/{id}", h.getPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/landed-costs", h.addLandedCost)
		r.Post("/api/purchase-orders/{id}/apportion", h.apportion)

		r.Get("/api/taxes/collections", h.listTaxCollections)
		r.Get("/api/taxes/payments", h.listTaxPayments)
		r.Post("/api/taxes/remit", h.markRemitted)
		r.Post("/api/taxes/recover", h.markRecovered)

		r.Get("/api/reports/tax/month", h.taxReportMonth)
		r.Get("/api/reports/tax/year", h.taxReportYear)
		r.Get("/api/reports/tax/range", h.taxReportRange)
		r.Get("/api/reports/tax/dashboard", h.taxDashboard)

		r.Get("/api/accounts", h.listAccounts)
		r.Get("/api/customers", h.listCustomers)
		r.Get("/api/suppliers", h.listSuppliers)
		r.Get("/api/tenants", h.listTenants)

		r.Post("/api/assistant/draft", h.assistantDraft)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// tenantParam reads the optional ?tenant_id= query parameter. It lets an
// elevated caller address a specific tenant; for everyone else the resolver
// rejects foreign tenants downstream.
func tenantParam(r *http.Request) *int64 {
	raw := r.URL.Query().Get("tenant_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// idParam extracts the {id} URL parameter as int64.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// intQuery parses a required integer query parameter.
func intQuery(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	return v, err == nil
}

// decodeJSON decodes the request body into v, writing an error response and
// returning false on failure. Bodies over the RequestBodyLimit get HTTP 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
