package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	sessions "github.com/freelog/freelog/internal/sessions/domain"
)

// ProfileLoader loads the profile behind a session.
type ProfileLoader interface {
	Get(ctx context.Context, id string) (*profiles.Profile, error)
}

// Page paths the guard acts on.
const (
	LoginPath  = "/login"
	SignupPath = "/signup"
)

// Guard resolves the session cookie and enforces the routing rules.
type Guard struct {
	sessions   *SessionManager
	profiles   ProfileLoader
	cookieName string
}

// NewGuard creates a guard reading the session from cookieName.
func NewGuard(sm *SessionManager, loader ProfileLoader, cookieName string) *Guard {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Guard{sessions: sm, profiles: loader, cookieName: cookieName}
}

// Resolve returns the profile signed in on r, or nil when there is none.
// Errors other than a missing or expired session are returned.
func (g *Guard) Resolve(r *http.Request) (*profiles.Profile, error) {
	c, err := r.Cookie(g.cookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	s, err := g.sessions.Lookup(r.Context(), c.Value)
	if err != nil {
		var (
			notFound *sessions.SessionNotFoundError
			expired  *sessions.SessionExpiredError
		)
		if errors.As(err, &notFound) || errors.As(err, &expired) {
			return nil, nil
		}
		return nil, err
	}
	p, err := g.profiles.Get(r.Context(), s.ProfileID)
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// pageRedirect returns where a request for path should go instead, or "".
func pageRedirect(path string, p *profiles.Profile) string {
	protected := underPath(path, profiles.FreelancerHome) || underPath(path, profiles.ClientHome) ||
		underPath(path, profiles.SetupPath)

	switch {
	case protected && p == nil:
		return LoginPath
	case p == nil:
		return ""
	case path == LoginPath || path == SignupPath:
		return p.LandingPath()
	case !protected:
		return ""
	case p.NeedsSetup():
		if underPath(path, profiles.SetupPath) {
			return ""
		}
		return profiles.SetupPath
	case underPath(path, profiles.FreelancerHome) && p.Role != profiles.RoleFreelancer:
		return profiles.ClientHome
	case underPath(path, profiles.ClientHome) && p.Role != profiles.RoleClient:
		return profiles.FreelancerHome
	}
	return ""
}

// Pages applies the page routing rules in front of next. API paths pass
// through untouched; use Require for those.
func (g *Guard) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/auth/") {
			next.ServeHTTP(w, r)
			return
		}
		p, err := g.Resolve(r)
		if err != nil {
			log.ErrorErr(log.CatAuth, "Failed to resolve session", err, "path", r.URL.Path)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if to := pageRedirect(r.URL.Path, p); to != "" {
			http.Redirect(w, r, to, http.StatusFound)
			return
		}
		if p != nil {
			r = r.WithContext(WithProfile(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// Require wraps an API handler so it only runs for a signed-in profile with
// role. An empty role admits any signed-in profile, including one that has
// not finished setup.
func (g *Guard) Require(role profiles.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := g.Resolve(r)
		switch {
		case err != nil:
			log.ErrorErr(log.CatAuth, "Failed to resolve session", err, "path", r.URL.Path)
			writeAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		case p == nil:
			writeAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign in required")
			return
		case role != "" && p.Role != role:
			writeAPIError(w, http.StatusForbidden, "forbidden", "This action requires the "+string(role)+" role")
			return
		}
		next(w, r.WithContext(WithProfile(r.Context(), p)))
	}
}

// apiError mirrors the API's error body.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiError{Error: message, Code: code}); err != nil {
		log.ErrorErr(log.CatHTTP, "Failed to encode error response", err)
	}
}
