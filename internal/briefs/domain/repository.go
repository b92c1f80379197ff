package domain

import "context"

// BriefRepository persists briefs, their revision history, and responses.
type BriefRepository interface {
	Create(ctx context.Context, b *Brief) error
	FindByID(ctx context.Context, id string) (*Brief, error)
	// List returns the owner's briefs whose name or description contains
	// search, case-insensitively. An empty search matches everything.
	List(ctx context.Context, ownerID, search string) ([]*Brief, error)
	// Update saves b and, when rev is non-nil, appends rev with the next
	// revision number in the same transaction.
	Update(ctx context.Context, b *Brief, rev *Revision) error
	Delete(ctx context.Context, id string) error
	Revisions(ctx context.Context, briefID string) ([]*Revision, error)

	CreateResponse(ctx context.Context, r *BriefResponse) error
	ListResponses(ctx context.Context, briefID string) ([]*BriefResponse, error)
}
