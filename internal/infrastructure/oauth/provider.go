package oauth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/freelog/freelog/internal/auth"
	"github.com/freelog/freelog/internal/config"
)

// CallbackPath is where providers send the browser back to.
const CallbackPath = "/auth/callback"

// New returns the provider selected by cfg.Auth.Provider.
func New(cfg config.Config) (auth.IdentityProvider, error) {
	switch cfg.Auth.Provider {
	case "google":
		return NewGoogle(GoogleConfig{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  strings.TrimSuffix(cfg.Server.BaseURL, "/") + CallbackPath,
		}), nil
	case "dev", "":
		return NewDev(), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Auth.Provider)
	}
}

// RouteRegistrar is implemented by providers that serve their own pages.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}
