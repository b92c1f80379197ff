package application

import (
	"context"

	clients "github.com/freelog/freelog/internal/clients/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

// ClientLookup finds the client records that carry an email.
type ClientLookup interface {
	ListByEmail(ctx context.Context, email string) ([]*clients.Client, error)
}

// ProjectReader loads a project a response may be attached to.
type ProjectReader interface {
	FindByID(ctx context.Context, id string) (*projects.Project, error)
}
