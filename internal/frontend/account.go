package frontend

import (
	"net/http"

	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

// Me returns the signed-in profile.
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := profile(r)
	h.writeJSON(w, http.StatusOK, MeResponse{Profile: p, LandingPath: p.LandingPath()})
}

// SetupProfile stores the role setup form.
// PUT /api/me/profile
func (h *Handler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	var req profiles.SetupInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Profiles.Setup(r.Context(), profile(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MeResponse{Profile: p, LandingPath: p.LandingPath()})
}
