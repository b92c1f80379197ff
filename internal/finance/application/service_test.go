package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/finance/application"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	"github.com/freelog/freelog/internal/money"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

var now = time.Date(2023, time.October, 20, 12, 0, 0, 0, time.UTC)

var (
	freelancer = &profiles.Profile{ID: "u1", Email: "jane@studio.com", FullName: "Jane", Role: profiles.RoleFreelancer}
	client     = &profiles.Profile{ID: "u2", Email: "john@acmeinc.com", FullName: "John", Role: profiles.RoleClient}
)

func newService(t *testing.T) *application.Service {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Profiles().Create(ctx, &profiles.Profile{ID: freelancer.ID, Email: freelancer.Email, FullName: "Jane", Role: profiles.RoleFreelancer, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, db.Clients().Save(ctx, clients.NewClientInput{Name: "Acme Inc", Contact: "John", Email: client.Email}.Build("c1", freelancer.ID, now)))
	require.NoError(t, db.Projects().Create(ctx, &projects.Project{
		ID: "p1", OwnerID: freelancer.ID, ClientID: "c1", Name: "Brand Identity Redesign",
		Description: "Complete brand identity overhaul", Status: projects.ProjectInProgress,
		StartDate: calendar.NewDate(2023, time.October, 1), DueDate: calendar.NewDate(2023, time.December, 15),
		Budget: 450000, CreatedAt: now,
	}))

	n := 0
	return application.NewService(db.Payments(), db.Projects(),
		func() time.Time { return now },
		func() string { n++; return fmt.Sprintf("pay-%d", n) })
}

func TestCreate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, freelancer, finance.NewPaymentInput{
		ProjectID: "p1", Amount: 150000, Description: "Initial deposit",
		Status: finance.StatusPaid, DueDate: calendar.NewDate(2023, time.October, 1), PaidDate: calendar.NewDate(2023, time.October, 2),
	})
	require.NoError(t, err)
	require.Equal(t, "pay-1", p.ID)
	require.Equal(t, "c1", p.ClientID)
	require.Equal(t, "Acme Inc", p.ClientName)

	list, err := svc.List(ctx, freelancer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "2023-10-02", list[0].PaidDate.String())

	list, err = svc.ListForClient(ctx, client)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreate_ProjectMustBeOwned(t *testing.T) {
	svc := newService(t)
	in := finance.NewPaymentInput{ProjectID: "p1", Amount: 100, Description: "Deposit", DueDate: calendar.NewDate(2023, time.October, 1)}

	other := &profiles.Profile{ID: "u9", Role: profiles.RoleFreelancer}
	_, err := svc.Create(context.Background(), other, in)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Please select a project", verr.Fields["project_id"])

	in.ProjectID = "missing"
	_, err = svc.Create(context.Background(), freelancer, in)
	require.ErrorAs(t, err, &verr)
}

func TestMarkPaid(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, freelancer, finance.NewPaymentInput{
		ProjectID: "p1", Amount: 150000, Description: "Logo delivery", DueDate: calendar.NewDate(2023, time.November, 1),
	})
	require.NoError(t, err)
	require.Equal(t, finance.StatusToBePaid, p.Status)

	_, err = svc.MarkPaid(ctx, freelancer, p.ID, calendar.Date{})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	_, err = svc.MarkPaid(ctx, &profiles.Profile{ID: "u9"}, p.ID, calendar.NewDate(2023, time.October, 15))
	var notFound *finance.PaymentNotFoundError
	require.ErrorAs(t, err, &notFound)

	paid, err := svc.MarkPaid(ctx, freelancer, p.ID, calendar.NewDate(2023, time.October, 15))
	require.NoError(t, err)
	require.Equal(t, finance.StatusPaid, paid.Status)

	list, err := svc.List(ctx, freelancer)
	require.NoError(t, err)
	require.Equal(t, finance.StatusPaid, list[0].Status)
}

func TestSummary(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, in := range []finance.NewPaymentInput{
		{ProjectID: "p1", Amount: 150000, Description: "Deposit", Status: finance.StatusPaid,
			DueDate: calendar.NewDate(2023, time.October, 1), PaidDate: calendar.NewDate(2023, time.October, 2)},
		{ProjectID: "p1", Amount: 150000, Description: "Milestone", DueDate: calendar.NewDate(2023, time.November, 1)},
	} {
		_, err := svc.Create(ctx, freelancer, in)
		require.NoError(t, err)
	}

	s, err := svc.Summary(ctx, freelancer)
	require.NoError(t, err)
	require.Equal(t, money.Cents(450000), s.TotalBudget)
	require.Equal(t, money.Cents(150000), s.TotalPaid)
	require.Equal(t, money.Cents(150000), s.TotalToBePaid)
	require.InDelta(t, 33.33, s.PercentPaid, 0.01)
	require.Len(t, s.Monthly, finance.MonthsInSummary)
	require.Equal(t, "2023-10", s.Monthly[len(s.Monthly)-1].Month)
	require.Equal(t, money.Cents(150000), s.Monthly[len(s.Monthly)-1].Paid)

	cs, err := svc.ClientSummary(ctx, client)
	require.NoError(t, err)
	require.Equal(t, s.TotalPaid, cs.TotalPaid)
	require.Len(t, cs.Projects, 1)
}
