// Package application implements the payment and finance summary use cases.
package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/freelog/freelog/internal/calendar"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// ProjectReader is the part of the project store finance needs.
type ProjectReader interface {
	FindByID(ctx context.Context, id string) (*projects.Project, error)
	List(ctx context.Context, ownerID string) ([]*projects.Project, error)
	ListByClientEmail(ctx context.Context, email string) ([]*projects.Project, error)
}

// Service manages payments.
type Service struct {
	payments finance.PaymentRepository
	projects ProjectReader
	now      func() time.Time
	newID    func() string
}

// NewService creates a finance service. now and newID default to time.Now
// and uuid.NewString when nil.
func NewService(payments finance.PaymentRepository, projectReader ProjectReader, now func() time.Time, newID func() string) *Service {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Service{payments: payments, projects: projectReader, now: now, newID: newID}
}

// Create records a payment against one of the owner's projects.
func (s *Service) Create(ctx context.Context, owner *profiles.Profile, in finance.NewPaymentInput) (*finance.Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	var notFound *projects.ProjectNotFoundError
	switch {
	case errors.As(err, &notFound), err == nil && project.OwnerID != owner.ID:
		return nil, &validation.Error{Fields: map[string]string{"project_id": "Please select a project"}}
	case err != nil:
		return nil, err
	}

	p := in.Build(s.newID(), owner.ID, project.ClientID, s.now().UTC())
	p.ProjectName = project.Name
	p.ClientName = project.ClientName
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info(log.CatFinance, "Payment created", "payment", p.ID, "project", p.ProjectID, "amount", p.Amount, "status", p.Status)
	return p, nil
}

// List returns the owner's payments ordered by due date.
func (s *Service) List(ctx context.Context, owner *profiles.Profile) ([]*finance.Payment, error) {
	return s.payments.List(ctx, owner.ID)
}

// ListForClient returns the payments on projects billed to the client.
func (s *Service) ListForClient(ctx context.Context, client *profiles.Profile) ([]*finance.Payment, error) {
	return s.payments.ListByClientEmail(ctx, client.Email)
}

// MarkPaid records that a payment was received on date.
func (s *Service) MarkPaid(ctx context.Context, owner *profiles.Profile, id string, date calendar.Date) (*finance.Payment, error) {
	p, err := s.payments.FindByID(ctx, owner.ID, id)
	if err != nil {
		return nil, err
	}
	if err := p.MarkPaid(date); err != nil {
		return nil, err
	}
	if err := s.payments.MarkPaid(ctx, id, date); err != nil {
		return nil, err
	}
	log.Info(log.CatFinance, "Payment marked paid", "payment", id, "paid_date", date)
	return p, nil
}

// Summary aggregates the owner's budgets and payments.
func (s *Service) Summary(ctx context.Context, owner *profiles.Profile) (finance.Summary, error) {
	list, err := s.projects.List(ctx, owner.ID)
	if err != nil {
		return finance.Summary{}, err
	}
	payments, err := s.payments.List(ctx, owner.ID)
	if err != nil {
		return finance.Summary{}, err
	}
	return finance.Summarize(budgets(list), payments, s.now()), nil
}

// ClientSummary aggregates the budgets and payments of a client's projects.
func (s *Service) ClientSummary(ctx context.Context, client *profiles.Profile) (finance.Summary, error) {
	list, err := s.projects.ListByClientEmail(ctx, client.Email)
	if err != nil {
		return finance.Summary{}, err
	}
	payments, err := s.payments.ListByClientEmail(ctx, client.Email)
	if err != nil {
		return finance.Summary{}, err
	}
	return finance.Summarize(budgets(list), payments, s.now()), nil
}

func budgets(list []*projects.Project) []finance.Budget {
	out := make([]finance.Budget, len(list))
	for i, p := range list {
		out[i] = finance.Budget{ProjectID: p.ID, ProjectName: p.Name, ClientName: p.ClientName, Budget: p.Budget}
	}
	return out
}
