package cmd

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/freelog/freelog/internal/auth"
	briefsapp "github.com/freelog/freelog/internal/briefs/application"
	clientsapp "github.com/freelog/freelog/internal/clients/application"
	"github.com/freelog/freelog/internal/config"
	"github.com/freelog/freelog/internal/dashboard"
	financeapp "github.com/freelog/freelog/internal/finance/application"
	"github.com/freelog/freelog/internal/frontend"
	"github.com/freelog/freelog/internal/i18n"
	"github.com/freelog/freelog/internal/infrastructure/oauth"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	"github.com/freelog/freelog/internal/infrastructure/storage"
	"github.com/freelog/freelog/internal/log"
	profilesapp "github.com/freelog/freelog/internal/profiles/application"
	projectsapp "github.com/freelog/freelog/internal/projects/application"
	"github.com/freelog/freelog/internal/tracing"
)

// app is the wired application: storage, services and the HTTP handler.
type app struct {
	db       *sqlite.DB
	sessions *auth.SessionManager
	services frontend.Services
	handler  http.Handler
}

// newApp opens the database and upload store and wires every service. tp
// traces requests; nil uses the global provider.
func newApp(cfg config.Config, tp trace.TracerProvider) (*app, error) {
	db, err := sqlite.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	files, err := storage.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening upload store: %w", err)
	}
	provider, err := oauth.New(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	profileService := profilesapp.NewService(db.Profiles(), nil)
	svc := frontend.Services{
		Profiles: profileService,
		Clients:  clientsapp.NewService(db.Clients(), nil, nil),
		Projects: projectsapp.NewService(db.Projects(), db.Clients(), files,
			projectsapp.WithMaxUploadBytes(cfg.Storage.MaxUploadBytes)),
		Finance:   financeapp.NewService(db.Payments(), db.Projects(), nil, nil),
		Briefs:    briefsapp.NewService(db.Briefs(), db.Clients(), db.Projects(), nil, nil),
		Dashboard: dashboard.NewService(db.Projects(), db.Clients(), db.Payments()),
	}
	sm := auth.NewSessionManager(db.Sessions(), cfg.Auth.SessionTTL, cfg.Auth.CacheTTL, nil)

	mux := http.NewServeMux()
	auth.NewHandler(provider, sm, profileService, auth.CookieOptions{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}).RegisterRoutes(mux)
	if r, ok := provider.(oauth.RouteRegistrar); ok {
		r.RegisterRoutes(mux)
	}

	var spaFS fs.FS
	if cfg.Server.StaticDir != "" {
		spaFS = os.DirFS(cfg.Server.StaticDir)
	}
	h := frontend.NewHandler(svc, auth.NewGuard(sm, profileService, cfg.Auth.CookieName), spaFS,
		i18n.Locale(cfg.I18n.DefaultLocale))
	h.RegisterAPIRoutes(mux)
	h.RegisterSPAHandler(mux)

	log.Info(log.CatApp, "Application wired",
		"provider", provider.Name(), "database", cfg.Database.Path, "static_dir", cfg.Server.StaticDir)
	return &app{
		db:       db,
		sessions: sm,
		services: svc,
		handler:  tracing.Middleware(tp, frontend.LogRequests(mux)),
	}, nil
}

// Close releases the database.
func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
