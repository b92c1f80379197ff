package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/freelog/freelog/internal/log"
	profilesapp "github.com/freelog/freelog/internal/profiles/application"
)

// Cookie names and paths of the sign-in flow.
const (
	DefaultCookieName = "freelog_session"
	StateCookieName   = "freelog_oauth_state"
	ErrorPath         = "/auth/auth-code-error"

	stateTTL = 10 * time.Minute
)

// CookieOptions controls the cookies the handler sets.
type CookieOptions struct {
	Name   string
	Secure bool
}

// Handler serves the sign-in, callback and sign-out endpoints.
type Handler struct {
	provider IdentityProvider
	sessions *SessionManager
	profiles *profilesapp.Service
	cookie   CookieOptions
}

// NewHandler creates the auth endpoints.
func NewHandler(provider IdentityProvider, sm *SessionManager, profileService *profilesapp.Service, cookie CookieOptions) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handler{provider: provider, sessions: sm, profiles: profileService, cookie: cookie}
}

// RegisterRoutes registers the auth endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET "+ErrorPath, h.AuthCodeError)
}

// Login sends the browser to the provider's consent page.
// GET /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := NewToken()
	if err != nil {
		log.ErrorErr(log.CatAuth, "Failed to create OAuth state", err)
		http.Redirect(w, r, ErrorPath, http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes sign-in: it checks state, exchanges the code, creates
// the profile on first sign-in and starts a session.
// GET /auth/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	fail := func(msg string, err error) {
		log.Warn(log.CatAuth, msg, "provider", h.provider.Name(), "error", err)
		http.Redirect(w, r, ErrorPath, http.StatusFound)
	}

	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(StateCookieName)
	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Path: "/auth", MaxAge: -1, HttpOnly: true, Secure: h.cookie.Secure})
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(stateCookie.Value)) != 1 {
		fail("OAuth state mismatch", err)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("OAuth callback without code", nil)
		return
	}
	id, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		fail("OAuth code exchange failed", err)
		return
	}

	p, err := h.profiles.Ensure(r.Context(), profilesapp.Identity{
		ID: id.ID, Email: id.Email, Name: id.Name, AvatarURL: id.AvatarURL,
	})
	if err != nil {
		fail("Failed to load profile", err)
		return
	}

	token, _, err := h.sessions.Create(r.Context(), p.ID)
	if err != nil {
		fail("Failed to create session", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info(log.CatAuth, "Signed in", "profile", p.ID, "provider", h.provider.Name())
	http.Redirect(w, r, p.LandingPath(), http.StatusFound)
}

// Logout ends the current session and returns to the landing page.
// GET /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil && c.Value != "" {
		if err := h.sessions.Revoke(r.Context(), c.Value); err != nil {
			log.ErrorErr(log.CatAuth, "Failed to revoke session", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: h.cookie.Name, Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.cookie.Secure})
	http.Redirect(w, r, "/", http.StatusFound)
}

// AuthCodeError reports a failed sign-in.
// GET /auth/auth-code-error
func (h *Handler) AuthCodeError(w http.ResponseWriter, _ *http.Request) {
	writeAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign-in failed. Please try again.")
}
