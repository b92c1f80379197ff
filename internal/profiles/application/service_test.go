package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	"github.com/freelog/freelog/internal/profiles/application"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	"github.com/freelog/freelog/internal/validation"
)

var now = time.Date(2023, time.October, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) *application.Service {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return application.NewService(db.Profiles(), func() time.Time { return now })
}

func TestEnsure_CreatesOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := application.Identity{ID: "g-123", Email: "Jane@Studio.com", AvatarURL: "https://example.com/a.png"}

	p, err := svc.Ensure(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "jane@studio.com", p.Email)
	require.Equal(t, "Jane", p.FullName, "falls back to the email local part")
	require.True(t, p.NeedsSetup())

	// A later sign-in with a provider name does not overwrite the profile.
	id.Name = "Jane Designer"
	again, err := svc.Ensure(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Jane", again.FullName)
}

func TestSetup(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p, err := svc.Ensure(ctx, application.Identity{ID: "g-1", Email: "john@acmeinc.com", Name: "John"})
	require.NoError(t, err)

	_, err = svc.Setup(ctx, p, profiles.SetupInput{FullName: "John"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "role")

	updated, err := svc.Setup(ctx, p, profiles.SetupInput{Role: profiles.RoleClient, FullName: "John Smith", Company: "Acme Inc"})
	require.NoError(t, err)
	require.Equal(t, profiles.RoleClient, updated.Role)

	got, err := svc.Get(ctx, "g-1")
	require.NoError(t, err)
	require.Equal(t, "John Smith", got.FullName)
	require.Equal(t, "Acme Inc", got.Company)
	require.Equal(t, profiles.ClientHome, got.Role.HomePath())
}
