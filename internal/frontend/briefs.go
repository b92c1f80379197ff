package frontend

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode"

	briefsapp "github.com/freelog/freelog/internal/briefs/application"
)

// ListBriefs returns the freelancer's briefs, filtered by ?q=.
// GET /api/briefs
func (h *Handler) ListBriefs(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Briefs.List(r.Context(), profile(r), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, BriefsResponse{Briefs: nonNil(list)})
}

// CreateBrief creates a brief, optionally from a starter template.
// POST /api/briefs
func (h *Handler) CreateBrief(w http.ResponseWriter, r *http.Request) {
	var req briefsapp.Input
	if !h.decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.Briefs.Create(r.Context(), profile(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

// BriefTemplates lists the starter briefs.
// GET /api/briefs/templates
func (h *Handler) BriefTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Briefs.Templates()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TemplatesResponse{Templates: nonNil(list)})
}

// ImportBrief creates a brief from a YAML document sent as the body.
// POST /api/briefs/import
func (h *Handler) ImportBrief(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	b, err := h.svc.Briefs.Import(r.Context(), profile(r), data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

// GetBrief returns one of the freelancer's briefs.
// GET /api/briefs/{id}
func (h *Handler) GetBrief(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Briefs.Get(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// UpdateBrief replaces a brief's content.
// PUT /api/briefs/{id}
func (h *Handler) UpdateBrief(w http.ResponseWriter, r *http.Request) {
	var req briefsapp.Input
	if !h.decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.Briefs.Update(r.Context(), profile(r), r.PathValue("id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// DeleteBrief removes a brief.
// DELETE /api/briefs/{id}
func (h *Handler) DeleteBrief(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Briefs.Delete(r.Context(), profile(r), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditBrief applies a batch of editor actions.
// POST /api/briefs/{id}/edits
func (h *Handler) EditBrief(w http.ResponseWriter, r *http.Request) {
	var req EditsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.Briefs.ApplyEdits(r.Context(), profile(r), r.PathValue("id"), req.Edits)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// DuplicateBrief stores a copy of a brief.
// POST /api/briefs/{id}/duplicate
func (h *Handler) DuplicateBrief(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Briefs.Duplicate(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

// ExportBrief downloads a brief as YAML.
// GET /api/briefs/{id}/export
func (h *Handler) ExportBrief(w http.ResponseWriter, r *http.Request) {
	b, data, err := h.svc.Briefs.Export(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": slug(b.Name) + ".yaml"}))
	_, _ = w.Write(data)
}

// BriefRevisions returns a brief's history, newest first.
// GET /api/briefs/{id}/revisions
func (h *Handler) BriefRevisions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Briefs.Revisions(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, RevisionsResponse{Revisions: nonNil(list)})
}

// BriefResponses returns the answers clients submitted.
// GET /api/briefs/{id}/responses
func (h *Handler) BriefResponses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Briefs.ListResponses(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ResponsesResponse{Responses: nonNil(list)})
}

// GetClientBrief returns a brief the client can answer.
// GET /api/client/briefs/{id}
func (h *Handler) GetClientBrief(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Briefs.GetForClient(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// SubmitBriefResponse stores the client's answers.
// POST /api/client/briefs/{id}/responses
func (h *Handler) SubmitBriefResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Briefs.SubmitResponse(r.Context(), profile(r), r.PathValue("id"), req.ProjectID, req.Responses)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// slug turns a brief name into a file name: "Logo Brief (Copy)" becomes
// "logo-brief-copy".
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "brief"
	}
	return s
}
