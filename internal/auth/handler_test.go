package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/auth"
	"github.com/freelog/freelog/internal/mocks"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

func newHandler(t *testing.T, e *env) (*auth.Handler, *mocks.MockIdentityProvider, *http.ServeMux) {
	t.Helper()
	provider := mocks.NewMockIdentityProvider(t)
	provider.EXPECT().Name().Return("test").Maybe()
	h := auth.NewHandler(provider, e.sessions, e.profiles, auth.CookieOptions{})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, provider, mux
}

func callback(state, code string, stateCookie string) *http.Request {
	q := url.Values{"state": {state}, "code": {code}}
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+q.Encode(), nil)
	if stateCookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.StateCookieName, Value: stateCookie})
	}
	return req
}

func TestLogin_SetsStateAndRedirects(t *testing.T) {
	e := newEnv(t)
	_, provider, mux := newHandler(t, e)

	var sent string
	provider.EXPECT().AuthCodeURL(mock.Anything).RunAndReturn(func(state string) string {
		sent = state
		return "https://idp.example.com/authorize?state=" + state
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://idp.example.com/authorize?state="+sent, rec.Header().Get("Location"))
	c := cookieNamed(rec, auth.StateCookieName)
	require.NotNil(t, c)
	require.Equal(t, sent, c.Value)
	require.True(t, c.HttpOnly)
}

func TestCallback_NewProfileGoesToSetup(t *testing.T) {
	e := newEnv(t)
	_, provider, mux := newHandler(t, e)
	provider.EXPECT().Exchange(mock.Anything, "code-1").Return(auth.Identity{
		ID: "u1", Email: "Jane@Example.com", Name: "Jane Designer",
	}, nil).Once()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, callback("s1", "code-1", "s1"))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, profiles.SetupPath, rec.Header().Get("Location"))

	session := cookieNamed(rec, auth.DefaultCookieName)
	require.NotNil(t, session)
	require.Equal(t, int(e.sessions.TTL().Seconds()), session.MaxAge)

	s, err := e.sessions.Lookup(context.Background(), session.Value)
	require.NoError(t, err)
	require.Equal(t, "u1", s.ProfileID)

	p, err := e.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", p.Email)
	require.Equal(t, "Jane Designer", p.FullName)
	require.True(t, p.NeedsSetup())
}

func TestCallback_ExistingProfileGoesHome(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "u1", profiles.RoleFreelancer)
	_, provider, mux := newHandler(t, e)
	provider.EXPECT().Exchange(mock.Anything, "code-1").Return(auth.Identity{ID: "u1", Email: "u1@example.com"}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, callback("s1", "code-1", "s1"))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, profiles.FreelancerHome, rec.Header().Get("Location"))
}

func TestCallback_Failures(t *testing.T) {
	tests := []struct {
		name        string
		state       string
		stateCookie string
		exchangeErr error
	}{
		{name: "missing state cookie", state: "s1"},
		{name: "state mismatch", state: "s1", stateCookie: "s2"},
		{name: "exchange fails", state: "s1", stateCookie: "s1", exchangeErr: errors.New("invalid_grant")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, provider, mux := newHandler(t, e)
			if tt.exchangeErr != nil {
				provider.EXPECT().Exchange(mock.Anything, "code-1").Return(auth.Identity{}, tt.exchangeErr).Once()
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, callback(tt.state, "code-1", tt.stateCookie))

			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, auth.ErrorPath, rec.Header().Get("Location"))
			require.Nil(t, cookieNamed(rec, auth.DefaultCookieName))
		})
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t, "u1", profiles.RoleFreelancer)
	_, _, mux := newHandler(t, e)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, request(http.MethodGet, "/auth/logout", cookie))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	cleared := cookieNamed(rec, auth.DefaultCookieName)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	_, err := e.sessions.Lookup(context.Background(), cookie.Value)
	require.Error(t, err)
}

func TestAuthCodeError(t *testing.T) {
	e := newEnv(t)
	_, _, mux := newHandler(t, e)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, auth.ErrorPath, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"Sign-in failed. Please try again.","code":"unauthorized"}`, rec.Body.String())
}
