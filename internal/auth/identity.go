package auth

import "context"

// Identity is what a provider reports about the user who signed in.
type Identity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityProvider runs the authorization code flow against an external
// identity service.
type IdentityProvider interface {
	Name() string
	// AuthCodeURL returns the consent page URL carrying state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the user's identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}
