// Package application implements the client use cases.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

// Service manages a freelancer's clients.
type Service struct {
	repo  clients.ClientRepository
	now   func() time.Time
	newID func() string
}

// NewService creates a client service. now and newID default to time.Now
// and uuid.NewString when nil.
func NewService(repo clients.ClientRepository, now func() time.Time, newID func() string) *Service {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Service{repo: repo, now: now, newID: newID}
}

// Create validates the form and stores a new active client.
func (s *Service) Create(ctx context.Context, owner *profiles.Profile, in clients.NewClientInput) (*clients.Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := in.Build(s.newID(), owner.ID, s.now().UTC())
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	log.Info(log.CatApp, "Client created", "client", c.ID, "owner", owner.ID)
	return c, nil
}

// List returns the owner's clients.
func (s *Service) List(ctx context.Context, owner *profiles.Profile) ([]*clients.Client, error) {
	return s.repo.List(ctx, owner.ID)
}

// Get returns one of the owner's clients.
func (s *Service) Get(ctx context.Context, owner *profiles.Profile, id string) (*clients.Client, error) {
	return s.repo.FindByID(ctx, owner.ID, id)
}
