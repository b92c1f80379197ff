// Package dashboard computes the freelancer's overview: headline counters,
// the projects due soonest and the deliverables that are waiting on someone.
package dashboard

import (
	"context"
	"sort"

	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/money"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

// RecentLimit caps the recent projects list.
const RecentLimit = 5

// ProjectRow is one line of the recent projects list.
type ProjectRow struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	ClientName string                 `json:"client_name"`
	Status     projects.ProjectStatus `json:"status"`
	DueDate    calendar.Date          `json:"due_date"`
}

// PendingRow is a deliverable with no upload yet or whose latest upload is
// still in review.
type PendingRow struct {
	DeliverableID string                     `json:"deliverable_id"`
	Name          string                     `json:"name"`
	ProjectID     string                     `json:"project_id"`
	ProjectName   string                     `json:"project_name"`
	ClientName    string                     `json:"client_name"`
	DueDate       calendar.Date              `json:"due_date"`
	Version       int                        `json:"version,omitempty"`
	Status        projects.DeliverableStatus `json:"status,omitempty"`
}

// Stats is the dashboard payload.
type Stats struct {
	ActiveProjects      int          `json:"active_projects"`
	TotalClients        int          `json:"total_clients"`
	PendingDeliverables int          `json:"pending_deliverables"`
	Revenue             money.Cents  `json:"revenue"`
	RecentProjects      []ProjectRow `json:"recent_projects"`
	Pending             []PendingRow `json:"pending"`
}

// Compute derives the dashboard from the owner's data. Recent projects are
// the active ones due soonest; pending rows are ordered by due date.
func Compute(projectList []*projects.Project, clientList []*clients.Client, payments []*finance.Payment) Stats {
	s := Stats{
		TotalClients:   len(clientList),
		RecentProjects: []ProjectRow{},
		Pending:        []PendingRow{},
	}

	for _, p := range projectList {
		if p.Status.Active() {
			s.ActiveProjects++
			s.RecentProjects = append(s.RecentProjects, ProjectRow{
				ID: p.ID, Name: p.Name, ClientName: p.ClientName, Status: p.Status, DueDate: p.DueDate,
			})
		}
		for _, d := range p.Deliverables {
			if !d.Pending() {
				continue
			}
			row := PendingRow{
				DeliverableID: d.ID,
				Name:          d.Name,
				ProjectID:     p.ID,
				ProjectName:   p.Name,
				ClientName:    p.ClientName,
				DueDate:       d.DueDate,
			}
			if cur := d.CurrentVersion(); cur != nil {
				row.Version = cur.Number
				row.Status = cur.Status
			}
			s.Pending = append(s.Pending, row)
		}
	}
	s.PendingDeliverables = len(s.Pending)

	for _, pm := range payments {
		if pm.Status == finance.StatusPaid {
			s.Revenue += pm.Amount
		}
	}

	sort.SliceStable(s.RecentProjects, func(i, j int) bool {
		return s.RecentProjects[i].DueDate.Before(s.RecentProjects[j].DueDate)
	})
	if len(s.RecentProjects) > RecentLimit {
		s.RecentProjects = s.RecentProjects[:RecentLimit]
	}
	sort.SliceStable(s.Pending, func(i, j int) bool {
		return s.Pending[i].DueDate.Before(s.Pending[j].DueDate)
	})
	return s
}

// Service loads the data behind the dashboard.
type Service struct {
	projects projects.ProjectRepository
	clients  clients.ClientRepository
	payments finance.PaymentRepository
}

// NewService creates a dashboard service.
func NewService(projectRepo projects.ProjectRepository, clientRepo clients.ClientRepository, paymentRepo finance.PaymentRepository) *Service {
	return &Service{projects: projectRepo, clients: clientRepo, payments: paymentRepo}
}

// Stats returns the owner's dashboard.
func (s *Service) Stats(ctx context.Context, owner *profiles.Profile) (Stats, error) {
	projectList, err := s.projects.List(ctx, owner.ID)
	if err != nil {
		return Stats{}, err
	}
	clientList, err := s.clients.List(ctx, owner.ID)
	if err != nil {
		return Stats{}, err
	}
	payments, err := s.payments.List(ctx, owner.ID)
	if err != nil {
		return Stats{}, err
	}
	return Compute(projectList, clientList, payments), nil
}
