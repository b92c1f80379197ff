package frontend

import (
	"net/http"

	clients "github.com/freelog/freelog/internal/clients/domain"
)

// ListClients returns the freelancer's clients.
// GET /api/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Clients.List(r.Context(), profile(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ClientsResponse{Clients: nonNil(list)})
}

// CreateClient adds a client.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clients.NewClientInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Clients.Create(r.Context(), profile(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// GetClient returns one client.
// GET /api/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Clients.Get(r.Context(), profile(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}
