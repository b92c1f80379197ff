// Package frontend serves the JSON API and the single-page app that sits on
// top of it.
package frontend

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/freelog/freelog/internal/auth"
	briefsapp "github.com/freelog/freelog/internal/briefs/application"
	briefs "github.com/freelog/freelog/internal/briefs/domain"
	clientsapp "github.com/freelog/freelog/internal/clients/application"
	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/dashboard"
	financeapp "github.com/freelog/freelog/internal/finance/application"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/i18n"
	"github.com/freelog/freelog/internal/log"
	profilesapp "github.com/freelog/freelog/internal/profiles/application"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projectsapp "github.com/freelog/freelog/internal/projects/application"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// maxJSONBody caps JSON and YAML request bodies (1MB).
const maxJSONBody = 1 << 20

// Services are the use cases behind the API.
type Services struct {
	Profiles  *profilesapp.Service
	Clients   *clientsapp.Service
	Projects  *projectsapp.Service
	Finance   *financeapp.Service
	Briefs    *briefsapp.Service
	Dashboard *dashboard.Service
}

// Handler provides the HTTP API.
type Handler struct {
	svc           Services
	guard         *auth.Guard
	spaHandler    http.Handler
	defaultLocale i18n.Locale
}

// NewHandler creates a Handler. spaFS holds the built frontend and may be nil,
// in which case unknown paths get a 404.
func NewHandler(svc Services, guard *auth.Guard, spaFS fs.FS, defaultLocale i18n.Locale) *Handler {
	if !i18n.IsValidLocale(string(defaultLocale)) {
		defaultLocale = i18n.DefaultLocale
	}
	return &Handler{
		svc:           svc,
		guard:         guard,
		spaHandler:    NewSPAHandler(spaFS),
		defaultLocale: defaultLocale,
	}
}

// RegisterAPIRoutes registers the API routes on the provided mux.
// Call this BEFORE registering the SPA handler.
func (h *Handler) RegisterAPIRoutes(mux *http.ServeMux) {
	freelancer := func(fn http.HandlerFunc) http.HandlerFunc { return h.guard.Require(profiles.RoleFreelancer, fn) }
	client := func(fn http.HandlerFunc) http.HandlerFunc { return h.guard.Require(profiles.RoleClient, fn) }
	anyone := func(fn http.HandlerFunc) http.HandlerFunc { return h.guard.Require("", fn) }

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/me", anyone(h.Me))
	mux.HandleFunc("PUT /api/me/profile", anyone(h.SetupProfile))

	mux.HandleFunc("GET /api/clients", freelancer(h.ListClients))
	mux.HandleFunc("POST /api/clients", freelancer(h.CreateClient))
	mux.HandleFunc("GET /api/clients/{id}", freelancer(h.GetClient))

	mux.HandleFunc("GET /api/projects", freelancer(h.ListProjects))
	mux.HandleFunc("POST /api/projects", freelancer(h.CreateProject))
	mux.HandleFunc("GET /api/projects/{id}", freelancer(h.GetProject))
	mux.HandleFunc("PATCH /api/projects/{id}/status", freelancer(h.UpdateProjectStatus))
	mux.HandleFunc("GET /api/projects/{id}/activity", freelancer(h.ProjectActivity))
	mux.HandleFunc("POST /api/projects/{id}/deliverables", freelancer(h.AddDeliverable))
	mux.HandleFunc("PATCH /api/deliverables/{id}/due-date", freelancer(h.UpdateDueDate))
	mux.HandleFunc("POST /api/deliverables/{id}/versions", freelancer(h.UploadVersion))

	mux.HandleFunc("GET /api/payments", freelancer(h.ListPayments))
	mux.HandleFunc("POST /api/payments", freelancer(h.CreatePayment))
	mux.HandleFunc("PATCH /api/payments/{id}/paid", freelancer(h.MarkPaid))
	mux.HandleFunc("GET /api/finances/summary", freelancer(h.FinanceSummary))

	mux.HandleFunc("GET /api/briefs", freelancer(h.ListBriefs))
	mux.HandleFunc("POST /api/briefs", freelancer(h.CreateBrief))
	mux.HandleFunc("GET /api/briefs/templates", freelancer(h.BriefTemplates))
	mux.HandleFunc("POST /api/briefs/import", freelancer(h.ImportBrief))
	mux.HandleFunc("GET /api/briefs/{id}", freelancer(h.GetBrief))
	mux.HandleFunc("PUT /api/briefs/{id}", freelancer(h.UpdateBrief))
	mux.HandleFunc("DELETE /api/briefs/{id}", freelancer(h.DeleteBrief))
	mux.HandleFunc("POST /api/briefs/{id}/edits", freelancer(h.EditBrief))
	mux.HandleFunc("POST /api/briefs/{id}/duplicate", freelancer(h.DuplicateBrief))
	mux.HandleFunc("GET /api/briefs/{id}/export", freelancer(h.ExportBrief))
	mux.HandleFunc("GET /api/briefs/{id}/revisions", freelancer(h.BriefRevisions))
	mux.HandleFunc("GET /api/briefs/{id}/responses", freelancer(h.BriefResponses))

	mux.HandleFunc("GET /api/dashboard", freelancer(h.Dashboard))

	mux.HandleFunc("GET /api/client/projects", client(h.ListProjects))
	mux.HandleFunc("GET /api/client/projects/{id}", client(h.GetProject))
	mux.HandleFunc("GET /api/client/projects/{id}/activity", client(h.ProjectActivity))
	mux.HandleFunc("GET /api/client/finances", client(h.ClientFinances))
	mux.HandleFunc("POST /api/deliverables/{id}/versions/{versionId}/review", client(h.ReviewVersion))
	mux.HandleFunc("GET /api/client/briefs/{id}", client(h.GetClientBrief))
	mux.HandleFunc("POST /api/client/briefs/{id}/responses", client(h.SubmitBriefResponse))

	mux.HandleFunc("POST /api/versions/{id}/comments", anyone(h.AddComment))
	mux.HandleFunc("GET /api/versions/{id}/file", anyone(h.VersionFile))

	mux.HandleFunc("/api/", h.NotFound)
}

// RegisterSPAHandler registers the SPA catch-all handler on the provided mux.
// IMPORTANT: This MUST be registered LAST after all other routes.
// The SPA handler catches all unmatched paths and serves index.html for client-side routing.
func (h *Handler) RegisterSPAHandler(mux *http.ServeMux) {
	mux.Handle("/", h.guard.Pages(h.spaHandler))
}

// Health returns a simple health check response.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// NotFound answers API paths no route matched.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "not_found", "No such endpoint", r.Method+" "+r.URL.Path)
}

// profile returns the signed-in profile. Routes are wrapped in Guard.Require,
// so it is always present.
func profile(r *http.Request) *profiles.Profile {
	p, _ := auth.ProfileFrom(r.Context())
	return p
}

// locale picks the response language: ?locale= wins, then Accept-Language,
// then the configured default.
func (h *Handler) locale(r *http.Request) i18n.Locale {
	if l := r.URL.Query().Get("locale"); i18n.IsValidLocale(l) {
		return i18n.Locale(l)
	}
	if accept := r.Header.Get("Accept-Language"); strings.TrimSpace(accept) != "" {
		return i18n.NegotiateLocale(accept)
	}
	return h.defaultLocale
}

// decodeJSON reads a JSON body into dst, writing the error response itself
// when it fails.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatHTTP, "Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response in the standard APIError format.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, APIError{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeServiceError maps a use case error onto the API's error responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid     *validation.Error
		transition  *projects.InvalidTransitionError
		lastOption  *briefs.LastOptionError
		tooLarge    *http.MaxBytesError
		project     *projects.ProjectNotFoundError
		deliverable *projects.DeliverableNotFoundError
		version     *projects.VersionNotFoundError
		client      *clients.ClientNotFoundError
		payment     *finance.PaymentNotFoundError
		brief       *briefs.BriefNotFoundError
		question    *briefs.QuestionNotFoundError
		option      *briefs.OptionNotFoundError
		prof        *profiles.ProfileNotFoundError
	)

	switch {
	case errors.As(err, &invalid):
		h.writeJSON(w, http.StatusBadRequest, APIError{
			Error:  "Validation failed",
			Code:   "validation_error",
			Fields: invalid.Fields,
		})
	case errors.As(err, &tooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "validation_error", "Request body too large", err.Error())
	case errors.As(err, &transition):
		h.writeError(w, http.StatusConflict, "conflict", "Version has already been reviewed", transition.VersionID)
	case errors.As(err, &lastOption):
		h.writeError(w, http.StatusConflict, "conflict", "A question needs at least one option", lastOption.QuestionID)
	case errors.As(err, &project):
		h.writeError(w, http.StatusNotFound, "not_found", "Project not found", project.ID)
	case errors.As(err, &deliverable):
		h.writeError(w, http.StatusNotFound, "not_found", "Deliverable not found", deliverable.ID)
	case errors.As(err, &version):
		h.writeError(w, http.StatusNotFound, "not_found", "Version not found", version.ID)
	case errors.As(err, &client):
		h.writeError(w, http.StatusNotFound, "not_found", "Client not found", client.ID)
	case errors.As(err, &payment):
		h.writeError(w, http.StatusNotFound, "not_found", "Payment not found", payment.ID)
	case errors.As(err, &brief):
		h.writeError(w, http.StatusNotFound, "not_found", "Brief not found", brief.ID)
	case errors.As(err, &question):
		h.writeError(w, http.StatusNotFound, "not_found", "Question not found", question.QuestionID)
	case errors.As(err, &option):
		h.writeError(w, http.StatusNotFound, "not_found", "Option not found", option.OptionID)
	case errors.As(err, &prof):
		h.writeError(w, http.StatusNotFound, "not_found", "Profile not found", prof.ID)
	default:
		log.ErrorErr(log.CatHTTP, "Request failed", err, "method", r.Method, "path", r.URL.Path)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "")
	}
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
