package auth

import (
	"context"

	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

type profileKey struct{}

// WithProfile returns ctx carrying the signed-in profile.
func WithProfile(ctx context.Context, p *profiles.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFrom returns the signed-in profile stored by Guard.
func ProfileFrom(ctx context.Context) (*profiles.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(*profiles.Profile)
	return p, ok && p != nil
}
