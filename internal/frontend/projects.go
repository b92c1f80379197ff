package frontend

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/freelog/freelog/internal/log"
	projectsapp "github.com/freelog/freelog/internal/projects/application"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// Multipart bodies may exceed the file limit by this much for the other
// form fields and part headers.
const (
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// ListProjects returns the projects visible to the caller: the freelancer's
// own, or a client's projects matched by email.
// GET /api/projects, GET /api/client/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Projects.List(r.Context(), profile(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ProjectsResponse{Projects: nonNil(list)})
}

// CreateProject creates a project with an optional first deliverable.
// POST /api/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projects.NewProjectInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Projects.Create(r.Context(), profile(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// GetProject returns a project with its deliverable tree.
// GET /api/projects/{id}, GET /api/client/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects.Get(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// UpdateProjectStatus changes a project's status.
// PATCH /api/projects/{id}/status
func (h *Handler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Projects.UpdateStatus(r.Context(), profile(r), r.PathValue("id"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// ProjectActivity returns the project's feed in the request's language.
// GET /api/projects/{id}/activity
func (h *Handler) ProjectActivity(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Projects.Activity(r.Context(), profile(r), r.PathValue("id"), h.locale(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ActivityResponse{Activity: nonNil(items)})
}

// AddDeliverable adds a deliverable to a project.
// POST /api/projects/{id}/deliverables
func (h *Handler) AddDeliverable(w http.ResponseWriter, r *http.Request) {
	var req projects.NewDeliverableInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.Projects.AddDeliverable(r.Context(), profile(r), r.PathValue("id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

// UpdateDueDate moves a deliverable's due date within its project's window.
// PATCH /api/deliverables/{id}/due-date
func (h *Handler) UpdateDueDate(w http.ResponseWriter, r *http.Request) {
	var req DueDateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.Projects.UpdateDeliverableDueDate(r.Context(), profile(r), r.PathValue("id"), req.DueDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// UploadVersion stores a new version of a deliverable. The body is
// multipart/form-data with a "file" part and an optional "comment" field.
// POST /api/deliverables/{id}/versions
func (h *Handler) UploadVersion(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.Projects.MaxUploadBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeServiceError(w, r, err)
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid_form", "Invalid multipart body", err.Error())
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn(log.CatHTTP, "Failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.writeServiceError(w, r, &validation.Error{Fields: map[string]string{"file": "A file is required"}})
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid_form", "Invalid multipart body", err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	v, err := h.svc.Projects.AddVersion(r.Context(), profile(r), r.PathValue("id"), projectsapp.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
		Comment:  r.FormValue("comment"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, v)
}

// ReviewVersion records the client's verdict on a version.
// POST /api/deliverables/{id}/versions/{versionId}/review
func (h *Handler) ReviewVersion(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.Projects.ReviewVersion(r.Context(), profile(r),
		r.PathValue("id"), r.PathValue("versionId"), req.Status, req.Comment)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// AddComment adds a comment to a version thread as the signed-in user.
// POST /api/versions/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Projects.AddComment(r.Context(), profile(r), r.PathValue("id"), req.Content)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// VersionFile streams a version's stored file.
// GET /api/versions/{id}/file
func (h *Handler) VersionFile(w http.ResponseWriter, r *http.Request) {
	v, rc, err := h.svc.Projects.OpenVersionFile(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	contentType := mime.TypeByExtension(filepath.Ext(v.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(v.FileSize, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": v.FileName}))
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn(log.CatHTTP, "Failed to stream version file", "version", v.ID, "error", err)
	}
}
