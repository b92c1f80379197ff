package domain

import (
	"context"

	"github.com/freelog/freelog/internal/calendar"
)

// ProjectRepository persists projects and their deliverable trees.
// Reads return fully populated trees: deliverables, their versions ordered by
// number, and each version's comments ordered by creation time.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, ownerID string) ([]*Project, error)
	ListByClientEmail(ctx context.Context, email string) ([]*Project, error)
	UpdateStatus(ctx context.Context, id string, status ProjectStatus) error

	CreateDeliverable(ctx context.Context, d *Deliverable) error
	FindDeliverable(ctx context.Context, id string) (*Deliverable, error)
	UpdateDeliverableDueDate(ctx context.Context, id string, due calendar.Date) error

	// AddVersion assigns v.Number atomically as one past the deliverable's
	// highest existing number, then inserts v.
	AddVersion(ctx context.Context, v *Version) error
	FindVersion(ctx context.Context, id string) (*Version, error)
	// SaveReview stores v's verdict and, when c is non-nil, adds c to v's
	// thread. Both land or neither does.
	SaveReview(ctx context.Context, v *Version, c *Comment) error

	AddComment(ctx context.Context, c *Comment) error
}
