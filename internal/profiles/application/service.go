// Package application implements the profile use cases: creating a profile
// the first time an identity signs in, and the role setup form.
package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

// Identity is what an identity provider knows about a signed-in user.
type Identity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// Service manages profiles.
type Service struct {
	repo profiles.ProfileRepository
	now  func() time.Time
}

// NewService creates a profile service. now defaults to time.Now when nil.
func NewService(repo profiles.ProfileRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Ensure returns the profile for id, creating it on first sign-in. A new
// profile has no role until Setup runs.
func (s *Service) Ensure(ctx context.Context, id Identity) (*profiles.Profile, error) {
	p, err := s.repo.FindByID(ctx, id.ID)
	if err == nil {
		return p, nil
	}
	var notFound *profiles.ProfileNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	now := s.now().UTC()
	p = &profiles.Profile{
		ID:        id.ID,
		Email:     strings.ToLower(strings.TrimSpace(id.Email)),
		FullName:  profiles.DefaultFullName(id.Email, id.Name),
		AvatarURL: id.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info(log.CatAuth, "Profile created", "profile", p.ID)
	return p, nil
}

// Get returns the profile with id.
func (s *Service) Get(ctx context.Context, id string) (*profiles.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// Setup applies the setup form to p and stores it.
func (s *Service) Setup(ctx context.Context, p *profiles.Profile, in profiles.SetupInput) (*profiles.Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated := *p
	in.Apply(&updated, s.now().UTC())
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	log.Info(log.CatAuth, "Profile set up", "profile", p.ID, "role", updated.Role)
	return &updated, nil
}
