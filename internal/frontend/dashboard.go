package frontend

import "net/http"

// Dashboard returns the freelancer's dashboard stats.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Dashboard.Stats(r.Context(), profile(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}
