package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/auth"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	profilesapp "github.com/freelog/freelog/internal/profiles/application"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

type env struct {
	db       *sqlite.DB
	sessions *auth.SessionManager
	profiles *profilesapp.Service
	guard    *auth.Guard
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{db: db, now: time.Date(2023, time.October, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return e.now }
	e.sessions = auth.NewSessionManager(db.Sessions(), time.Hour, time.Minute, clock)
	e.profiles = profilesapp.NewService(db.Profiles(), clock)
	e.guard = auth.NewGuard(e.sessions, e.profiles, "")
	return e
}

// signIn stores a profile with role and returns a cookie for its session.
func (e *env) signIn(t *testing.T, id string, role profiles.Role) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	p, err := e.profiles.Ensure(ctx, profilesapp.Identity{ID: id, Email: id + "@example.com"})
	require.NoError(t, err)
	if role != "" {
		_, err = e.profiles.Setup(ctx, p, profiles.SetupInput{Role: role, FullName: "Test " + id})
		require.NoError(t, err)
	}
	token, _, err := e.sessions.Create(ctx, id)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.DefaultCookieName, Value: token}
}

func request(method, target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
