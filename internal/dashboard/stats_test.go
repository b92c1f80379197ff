package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	"github.com/freelog/freelog/internal/money"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

func date(m time.Month, d int) calendar.Date {
	return calendar.NewDate(2023, m, d)
}

func TestCompute(t *testing.T) {
	list := []*projects.Project{
		{
			ID: "p1", Name: "Brand Identity Redesign", ClientName: "Acme Inc", Status: projects.ProjectInProgress, DueDate: date(time.December, 15),
			Deliverables: []*projects.Deliverable{
				{ID: "d1", Name: "Logo Design", DueDate: date(time.November, 1), Versions: []*projects.Version{
					{ID: "v1", Number: 1, Status: projects.StatusReturned},
					{ID: "v2", Number: 2, Status: projects.StatusInReview},
				}},
				{ID: "d2", Name: "Brand Guidelines", DueDate: date(time.December, 1), Versions: []*projects.Version{
					{ID: "v3", Number: 1, Status: projects.StatusDelivered},
				}},
				{ID: "d3", Name: "Stationery", DueDate: date(time.October, 20)},
			},
		},
		{ID: "p2", Name: "Website Development", ClientName: "TechStart", Status: projects.ProjectCompleted, DueDate: date(time.September, 1)},
		{ID: "p3", Name: "Marketing Campaign", ClientName: "Global Foods", Status: projects.ProjectNotStarted, DueDate: date(time.November, 30)},
	}
	payments := []*finance.Payment{
		{Amount: 150000, Status: finance.StatusPaid},
		{Amount: 99900, Status: finance.StatusToBePaid},
		{Amount: 50000, Status: finance.StatusPaid},
	}

	got := Compute(list, []*clients.Client{{ID: "c1"}, {ID: "c2"}}, payments)

	want := Stats{
		ActiveProjects:      2,
		TotalClients:        2,
		PendingDeliverables: 2,
		Revenue:             200000,
		RecentProjects: []ProjectRow{
			{ID: "p3", Name: "Marketing Campaign", ClientName: "Global Foods", Status: projects.ProjectNotStarted, DueDate: date(time.November, 30)},
			{ID: "p1", Name: "Brand Identity Redesign", ClientName: "Acme Inc", Status: projects.ProjectInProgress, DueDate: date(time.December, 15)},
		},
		Pending: []PendingRow{
			{DeliverableID: "d3", Name: "Stationery", ProjectID: "p1", ProjectName: "Brand Identity Redesign", ClientName: "Acme Inc", DueDate: date(time.October, 20)},
			{DeliverableID: "d1", Name: "Logo Design", ProjectID: "p1", ProjectName: "Brand Identity Redesign", ClientName: "Acme Inc",
				DueDate: date(time.November, 1), Version: 2, Status: projects.StatusInReview},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_RecentLimit(t *testing.T) {
	var list []*projects.Project
	for i := 1; i <= 8; i++ {
		list = append(list, &projects.Project{ID: fmt.Sprintf("p%d", i), Status: projects.ProjectInProgress, DueDate: date(time.November, 10-i)})
	}

	got := Compute(list, nil, nil)
	require.Len(t, got.RecentProjects, RecentLimit)
	require.Equal(t, "p8", got.RecentProjects[0].ID)
	require.Equal(t, 8, got.ActiveProjects)
	require.Equal(t, money.Cents(0), got.Revenue)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2023, time.October, 1, 9, 0, 0, 0, time.UTC)
	owner := &profiles.Profile{ID: "u1", Email: "jane@studio.com", FullName: "Jane", Role: profiles.RoleFreelancer, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Profiles().Create(ctx, owner))
	require.NoError(t, db.Clients().Save(ctx, clients.NewClientInput{Name: "Acme Inc", Contact: "John", Email: "john@acmeinc.com"}.Build("c1", owner.ID, now)))
	require.NoError(t, db.Projects().Create(ctx, &projects.Project{
		ID: "p1", OwnerID: owner.ID, ClientID: "c1", Name: "Brand Identity Redesign", Description: "Complete overhaul",
		Status: projects.ProjectInProgress, StartDate: date(time.October, 1), DueDate: date(time.December, 15), Budget: 450000, CreatedAt: now,
		Deliverables: []*projects.Deliverable{{ID: "d1", ProjectID: "p1", Name: "Logo Design", Description: "Primary logo", DueDate: date(time.November, 1)}},
	}))
	require.NoError(t, db.Payments().Create(ctx, &finance.Payment{
		ID: "pay1", OwnerID: owner.ID, ProjectID: "p1", ClientID: "c1", Amount: 150000, Description: "Deposit",
		Status: finance.StatusPaid, DueDate: date(time.October, 1), PaidDate: date(time.October, 2), CreatedAt: now,
	}))

	stats, err := NewService(db.Projects(), db.Clients(), db.Payments()).Stats(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ActiveProjects)
	require.Equal(t, 1, stats.TotalClients)
	require.Equal(t, 1, stats.PendingDeliverables)
	require.Equal(t, money.Cents(150000), stats.Revenue)
}
