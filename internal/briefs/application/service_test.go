package application_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/briefs/application"
	briefs "github.com/freelog/freelog/internal/briefs/domain"
	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

var t0 = time.Date(2023, time.October, 1, 9, 0, 0, 0, time.UTC)

var (
	freelancer = &profiles.Profile{ID: "u1", Email: "jane@studio.com", FullName: "Jane", Role: profiles.RoleFreelancer}
	rival      = &profiles.Profile{ID: "u3", Email: "max@otherstudio.com", FullName: "Max", Role: profiles.RoleFreelancer}
	client     = &profiles.Profile{ID: "u2", Email: "john@acmeinc.com", FullName: "John", Role: profiles.RoleClient}
	stranger   = &profiles.Profile{ID: "u9", Email: "nobody@nowhere.com", FullName: "Nobody", Role: profiles.RoleClient}
)

func newService(t *testing.T) *application.Service {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, p := range []*profiles.Profile{freelancer, rival} {
		stored := *p
		stored.CreatedAt, stored.UpdatedAt = t0, t0
		require.NoError(t, db.Profiles().Create(ctx, &stored))
	}
	require.NoError(t, db.Clients().Save(ctx, clients.NewClientInput{Name: "Acme Inc", Contact: "John", Email: client.Email}.Build("c1", freelancer.ID, t0)))
	require.NoError(t, db.Clients().Save(ctx, clients.NewClientInput{Name: "Acme Inc", Contact: "John", Email: client.Email}.Build("c2", rival.ID, t0)))
	for _, p := range []*projects.Project{
		{ID: "p1", OwnerID: freelancer.ID, ClientID: "c1"},
		{ID: "p2", OwnerID: rival.ID, ClientID: "c2"},
	} {
		p.Name, p.Description, p.Status = "Brand Identity Redesign", "Complete overhaul", projects.ProjectInProgress
		p.StartDate, p.DueDate, p.Budget, p.CreatedAt = calendar.NewDate(2023, time.October, 1), calendar.NewDate(2023, time.December, 15), 100, t0
		require.NoError(t, db.Projects().Create(ctx, p))
	}

	n := 0
	return application.NewService(db.Briefs(), db.Clients(), db.Projects(),
		func() time.Time { return t0 },
		func() string { n++; return fmt.Sprintf("id-%d", n) })
}

func intakeInput() application.Input {
	return application.Input{
		Name:        "Website Intake",
		Description: "Questions for new website projects",
		Questions: []briefs.Question{
			{ID: "goal", Text: "What is the main goal of the site?", Type: briefs.TypeTextarea, Required: true},
			{ID: "style", Text: "Preferred style", Type: briefs.TypeDropdown, Options: []briefs.QuestionOption{
				{ID: "flat", Value: "Flat"}, {ID: "retro", Value: "Retro"},
			}},
		},
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestCreate_FromTemplate(t *testing.T) {
	svc := newService(t)

	b, err := svc.Create(context.Background(), freelancer, application.Input{Name: "Acme branding", Template: "branding"})
	require.NoError(t, err)
	require.NotEmpty(t, b.Questions)
	require.Equal(t, "Questionnaire for new branding projects", b.Description)
	require.Equal(t, "company", b.Questions[0].ID)

	_, err = svc.Create(context.Background(), freelancer, application.Input{Name: "x", Template: "nope"})
	require.Contains(t, fields(t, err), "template")
}

func TestCreate_Invalid(t *testing.T) {
	svc := newService(t)
	in := intakeInput()
	in.Name = " "
	in.Questions[1].Options = nil

	_, err := svc.Create(context.Background(), freelancer, in)
	f := fields(t, err)
	require.Equal(t, "Brief name is required", f["name"])
	require.Contains(t, f, "questions.1.options")
}

func TestGetListDelete_OwnerScoped(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, rival, b.ID)
	var notFound *briefs.BriefNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.ErrorAs(t, svc.Delete(ctx, rival, b.ID), &notFound)

	list, err := svc.List(ctx, freelancer, "WEBSITE")
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = svc.List(ctx, freelancer, "logo")
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, svc.Delete(ctx, freelancer, b.ID))
	_, err = svc.Get(ctx, freelancer, b.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestUpdate_RecordsRevision(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	in := intakeInput()
	in.Questions[0].Text = "What should visitors do on the site?"
	updated, err := svc.Update(ctx, freelancer, b.ID, in)
	require.NoError(t, err)
	require.Equal(t, "What should visitors do on the site?", updated.Questions[0].Text)

	// Saving the same content again adds nothing to the history.
	_, err = svc.Update(ctx, freelancer, b.ID, in)
	require.NoError(t, err)

	revs, err := svc.Revisions(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Equal(t, 1, revs[0].Number)
	require.Equal(t, freelancer.ID, revs[0].AuthorID)
	require.Contains(t, revs[0].Diff, "- ")
	require.Contains(t, revs[0].Diff, "+ ")
	require.Contains(t, revs[0].Diff, "What should visitors do on the site?")
}

func TestApplyEdits(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	updated, err := svc.ApplyEdits(ctx, freelancer, b.ID, []application.Edit{
		{Op: application.OpAddQuestion, Type: briefs.TypeCheckbox, Question: &briefs.Question{Text: "Which pages do you need?"}},
		{Op: application.OpMoveQuestion, QuestionID: "style", Direction: briefs.Up},
		{Op: application.OpRemoveOption, QuestionID: "style", OptionID: "retro"},
	})
	require.NoError(t, err)
	require.Len(t, updated.Questions, 3)
	require.Equal(t, "style", updated.Questions[0].ID)
	require.Len(t, updated.Questions[0].Options, 1)
	require.Len(t, updated.Questions[2].Options, 2, "checkbox questions start with two options")

	// The last option survives, and a failing batch saves nothing.
	_, err = svc.ApplyEdits(ctx, freelancer, b.ID, []application.Edit{
		{Op: application.OpRemoveQuestion, QuestionID: "goal"},
		{Op: application.OpRemoveOption, QuestionID: "style", OptionID: "flat"},
	})
	var last *briefs.LastOptionError
	require.ErrorAs(t, err, &last)

	_, err = svc.ApplyEdits(ctx, freelancer, b.ID, []application.Edit{{Op: application.OpAddQuestion, Type: "slider"}})
	require.Contains(t, fields(t, err), "edits.0")

	got, err := svc.Get(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 3)

	revs, err := svc.Revisions(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
}

func TestDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.NotEqual(t, b.ID, dup.ID)
	require.Equal(t, "Website Intake (Copy)", dup.Name)
	require.Len(t, dup.Questions, 2)

	list, err := svc.List(ctx, freelancer, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestExportImport(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	_, data, err := svc.Export(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "name: Website Intake\n"))

	imported, err := svc.Import(ctx, rival, data)
	require.NoError(t, err)
	require.Equal(t, rival.ID, imported.OwnerID)
	require.Equal(t, b.Questions, imported.Questions)

	_, err = svc.Import(ctx, freelancer, []byte("name: [unclosed"))
	require.Contains(t, fields(t, err), "yaml")

	_, err = svc.Import(ctx, freelancer, []byte("description: no name\n"))
	require.Contains(t, fields(t, err), "name")
}

func TestGetForClient(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	got, err := svc.GetForClient(ctx, client, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	_, err = svc.GetForClient(ctx, stranger, b.ID)
	var notFound *briefs.BriefNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitResponse(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	_, err = svc.SubmitResponse(ctx, client, b.ID, "", []briefs.Answer{{QuestionID: "style", Value: "flat"}})
	require.Equal(t, "This question is required", fields(t, err)["goal"])

	_, err = svc.SubmitResponse(ctx, client, b.ID, "", []briefs.Answer{
		{QuestionID: "goal", Value: "Sell more"}, {QuestionID: "style", Value: "gothic"},
	})
	require.Contains(t, fields(t, err), "style")

	// p2 belongs to another freelancer even though the client can see it.
	_, err = svc.SubmitResponse(ctx, client, b.ID, "p2", []briefs.Answer{{QuestionID: "goal", Value: "Sell more"}})
	require.Equal(t, "Unknown project", fields(t, err)["project_id"])

	resp, err := svc.SubmitResponse(ctx, client, b.ID, "p1", []briefs.Answer{
		{QuestionID: "goal", Value: "Sell more"}, {QuestionID: "style", Value: "retro"},
	})
	require.NoError(t, err)
	require.Equal(t, client.ID, resp.ClientID)

	responses, err := svc.ListResponses(ctx, freelancer, b.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, "p1", responses[0].ProjectID)
	require.Len(t, responses[0].Responses, 2)

	_, err = svc.ListResponses(ctx, rival, b.ID)
	var notFound *briefs.BriefNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitResponse_WithoutProject(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, freelancer, intakeInput())
	require.NoError(t, err)

	resp, err := svc.SubmitResponse(ctx, client, b.ID, "", []briefs.Answer{{QuestionID: "goal", Value: "Sell more"}})
	require.NoError(t, err)
	require.Empty(t, resp.ProjectID)

	_, err = svc.SubmitResponse(ctx, stranger, b.ID, "", []briefs.Answer{{QuestionID: "goal", Value: "Sell more"}})
	var notFound *briefs.BriefNotFoundError
	require.ErrorAs(t, err, &notFound)
}
