package oauth

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/freelog/freelog/internal/auth"
	"github.com/freelog/freelog/internal/log"
)

// DevLoginPath serves the dev provider's sign-in form.
const DevLoginPath = "/auth/dev"

// devNamespace derives stable profile ids from email addresses.
var devNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://freelog.dev/auth/dev"))

// Dev is a local identity provider: the "code" is the email address typed
// into its form. Never enable it on a public deployment.
type Dev struct{}

// NewDev creates the dev provider.
func NewDev() *Dev { return &Dev{} }

// Name implements auth.IdentityProvider.
func (*Dev) Name() string { return "dev" }

// AuthCodeURL implements auth.IdentityProvider.
func (*Dev) AuthCodeURL(state string) string {
	return DevLoginPath + "?" + url.Values{"state": {state}}.Encode()
}

// Exchange implements auth.IdentityProvider. The same email always maps to
// the same identity.
func (*Dev) Exchange(_ context.Context, code string) (auth.Identity, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(code))
	if err != nil {
		return auth.Identity{}, fmt.Errorf("dev: code must be an email address: %w", err)
	}
	email := strings.ToLower(addr.Address)
	return auth.Identity{
		ID:    uuid.NewSHA1(devNamespace, []byte(email)).String(),
		Email: email,
		Name:  addr.Name,
	}, nil
}

var devForm = template.Must(template.New("dev").Parse(`<!doctype html>
<title>Freelog dev sign-in</title>
<form method="get" action="/auth/callback">
  <input type="hidden" name="state" value="{{.}}">
  <label>Email <input type="email" name="code" required autofocus></label>
  <button type="submit">Sign in</button>
</form>
`))

// RegisterRoutes serves the sign-in form on mux.
func (d *Dev) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+DevLoginPath, d.form)
}

func (*Dev) form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := devForm.Execute(w, r.URL.Query().Get("state")); err != nil {
		log.ErrorErr(log.CatAuth, "Failed to render dev sign-in form", err)
	}
}
