package application_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/i18n"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
	"github.com/freelog/freelog/internal/mocks"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	"github.com/freelog/freelog/internal/projects/application"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

var t0 = time.Date(2023, time.October, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *application.Service
	files      *mocks.MockFileStore
	freelancer *profiles.Profile
	client     *profiles.Profile
	clock      *time.Time
}

func newFixture(t *testing.T, opts ...application.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		files: mocks.NewMockFileStore(t),
		freelancer: &profiles.Profile{
			ID: "u1", Email: "jane@studio.com", FullName: "Jane Designer", Role: profiles.RoleFreelancer,
			CreatedAt: t0, UpdatedAt: t0,
		},
		client: &profiles.Profile{
			ID: "u2", Email: "john@acmeinc.com", FullName: "John Smith", Role: profiles.RoleClient,
			CreatedAt: t0, UpdatedAt: t0,
		},
	}
	require.NoError(t, db.Profiles().Create(ctx, f.freelancer))
	require.NoError(t, db.Profiles().Create(ctx, f.client))
	require.NoError(t, db.Clients().Save(ctx, clients.NewClientInput{
		Name: "Acme Inc", Contact: "John Smith", Email: "john@acmeinc.com",
	}.Build("c1", f.freelancer.ID, t0)))

	now := t0
	f.clock = &now
	n := 0
	opts = append([]application.Option{
		application.WithClock(func() time.Time { return *f.clock }),
		application.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}, opts...)
	f.svc = application.NewService(db.Projects(), db.Clients(), f.files, opts...)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func validProject() projects.NewProjectInput {
	return projects.NewProjectInput{
		Name:        "Brand Identity Redesign",
		Description: "Complete brand identity overhaul",
		ClientID:    "c1",
		StartDate:   calendar.NewDate(2023, time.October, 1),
		DueDate:     calendar.NewDate(2023, time.December, 15),
		Budget:      450000,
		Deliverable: &projects.NewDeliverableInput{
			Name:        "Logo Design",
			Description: "Primary logo and variations",
			DueDate:     calendar.NewDate(2023, time.November, 1),
		},
	}
}

// expectSave makes the store accept every upload and report its real size.
func (f *fixture) expectSave() {
	f.files.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ string, r io.Reader) (int64, error) {
			return io.Copy(io.Discard, r)
		})
}

func upload(name, body string) application.Upload {
	return application.Upload{FileName: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestCreate_WithInitialDeliverable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	require.Equal(t, projects.ProjectNotStarted, p.Status)
	require.Equal(t, "Acme Inc", p.ClientName)
	require.Len(t, p.Deliverables, 1)

	got, err := f.svc.Get(ctx, f.freelancer, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Deliverables, 1)
	require.Equal(t, "Logo Design", got.Deliverables[0].Name)

	// The client whose email is on the client record sees it too.
	got, err = f.svc.Get(ctx, f.client, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	list, err := f.svc.List(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreate_UnknownClient(t *testing.T) {
	f := newFixture(t)

	in := validProject()
	in.ClientID = "missing"
	_, err := f.svc.Create(context.Background(), f.freelancer, in)
	require.Equal(t, "Please select a client", fieldErrors(t, err)["client_id"])
}

func TestCreate_InvalidForm(t *testing.T) {
	f := newFixture(t)

	in := validProject()
	in.Name = "ab"
	in.Deliverable.DueDate = calendar.NewDate(2024, time.January, 1)
	_, err := f.svc.Create(context.Background(), f.freelancer, in)

	fields := fieldErrors(t, err)
	require.Contains(t, fields, "name")
	require.Equal(t, "Deliverable due date must be before or on project due date", fields["deliverable.due_date"])
}

func TestGet_HiddenFromOtherFreelancer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)

	other := &profiles.Profile{ID: "u9", Role: profiles.RoleFreelancer}
	_, err = f.svc.Get(ctx, other, p.ID)
	var notFound *projects.ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.svc.UpdateStatus(ctx, other, p.ID, projects.ProjectCompleted)
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.freelancer, p.ID, "archived")
	require.Contains(t, fieldErrors(t, err), "status")

	updated, err := f.svc.UpdateStatus(ctx, f.freelancer, p.ID, projects.ProjectInProgress)
	require.NoError(t, err)
	require.Equal(t, projects.ProjectInProgress, updated.Status)

	got, err := f.svc.Get(ctx, f.freelancer, p.ID)
	require.NoError(t, err)
	require.Equal(t, projects.ProjectInProgress, got.Status)
}

func TestAddDeliverable_AndMoveDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)

	d, err := f.svc.AddDeliverable(ctx, f.freelancer, p.ID, projects.NewDeliverableInput{
		Name: "Brand Guidelines", Description: "Typography, colour and usage rules",
		DueDate: calendar.NewDate(2023, time.December, 1),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateDeliverableDueDate(ctx, f.freelancer, d.ID, calendar.NewDate(2023, time.September, 1))
	require.Equal(t, "Deliverable due date must be after project start date", fieldErrors(t, err)["due_date"])

	moved, err := f.svc.UpdateDeliverableDueDate(ctx, f.freelancer, d.ID, calendar.NewDate(2023, time.December, 10))
	require.NoError(t, err)
	require.Equal(t, "2023-12-10", moved.DueDate.String())

	got, err := f.svc.Get(ctx, f.freelancer, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Deliverables, 2)
	require.Equal(t, "2023-12-10", got.Deliverable(d.ID).DueDate.String())
}

func TestAddVersion_NumbersSequentially(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	d := p.Deliverables[0]
	f.expectSave()

	v1, err := f.svc.AddVersion(ctx, f.freelancer, d.ID, upload("logo-v1.pdf", "first draft"))
	require.NoError(t, err)
	require.Equal(t, 1, v1.Number)
	require.Equal(t, projects.StatusInReview, v1.Status)
	require.Equal(t, int64(len("first draft")), v1.FileSize)
	require.Equal(t, d.ID+"/"+v1.ID+".pdf", v1.StorageKey)

	v2, err := f.svc.AddVersion(ctx, f.freelancer, d.ID, upload("logo-v2.PNG", "second draft"))
	require.NoError(t, err)
	require.Equal(t, 2, v2.Number)

	got, err := f.svc.Get(ctx, f.freelancer, p.ID)
	require.NoError(t, err)
	require.Equal(t, v2.ID, got.Deliverables[0].CurrentVersion().ID)
}

func TestAddVersion_RejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)

	// No store expectations: the mock fails the test if Save is reached.
	_, err = f.svc.AddVersion(ctx, f.freelancer, p.Deliverables[0].ID, upload("notes.docx", "hello"))
	require.Contains(t, fieldErrors(t, err), "file")
}

func TestAddVersion_DiscardsOversizedBody(t *testing.T) {
	f := newFixture(t, application.WithMaxUploadBytes(1<<20))
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	f.expectSave()
	f.files.EXPECT().Delete(mock.Anything, mock.Anything).Return(nil).Once()

	up := application.Upload{
		FileName: "big.psd",
		Size:     10, // understated by the client
		Body:     bytes.NewReader(make([]byte, 2<<20)),
	}
	_, err = f.svc.AddVersion(ctx, f.freelancer, p.Deliverables[0].ID, up)
	require.Equal(t, "File exceeds the 1 MB limit", fieldErrors(t, err)["file"])
}

func TestReviewVersion_AppendsReviewerComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	d := p.Deliverables[0]
	f.expectSave()
	v, err := f.svc.AddVersion(ctx, f.freelancer, d.ID, upload("logo.pdf", "draft"))
	require.NoError(t, err)

	f.advance(time.Hour)
	reviewed, err := f.svc.ReviewVersion(ctx, f.client, d.ID, v.ID, projects.StatusDelivered, "  Looks great  ")
	require.NoError(t, err)
	require.Equal(t, projects.StatusDelivered, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)
	require.Len(t, reviewed.Comments, 1)
	require.Equal(t, "Looks great", reviewed.Comments[0].Content)
	require.Equal(t, "John Smith", reviewed.Comments[0].UserName)
	require.Equal(t, profiles.RoleClient, reviewed.Comments[0].UserRole)

	_, err = f.svc.ReviewVersion(ctx, f.client, d.ID, v.ID, projects.StatusReturned, "")
	var transition *projects.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}

func TestReviewVersion_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	d := p.Deliverables[0]
	f.expectSave()
	v, err := f.svc.AddVersion(ctx, f.freelancer, d.ID, upload("logo.pdf", "draft"))
	require.NoError(t, err)

	_, err = f.svc.ReviewVersion(ctx, f.client, d.ID, v.ID, projects.StatusInReview, "")
	require.Contains(t, fieldErrors(t, err), "status")

	stranger := &profiles.Profile{ID: "u9", Email: "someone@else.com", Role: profiles.RoleClient}
	_, err = f.svc.ReviewVersion(ctx, stranger, d.ID, v.ID, projects.StatusDelivered, "")
	var hidden *projects.DeliverableNotFoundError
	require.ErrorAs(t, err, &hidden)

	_, err = f.svc.ReviewVersion(ctx, f.client, d.ID, "missing", projects.StatusDelivered, "")
	var missing *projects.VersionNotFoundError
	require.ErrorAs(t, err, &missing)
}

func TestAddComment_AuthorFromSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	f.expectSave()
	v, err := f.svc.AddVersion(ctx, f.freelancer, p.Deliverables[0].ID, upload("logo.pdf", "draft"))
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.client, v.ID, "   ")
	require.Equal(t, "Comment is required", fieldErrors(t, err)["content"])

	c, err := f.svc.AddComment(ctx, f.client, v.ID, "Can we try a darker blue?")
	require.NoError(t, err)
	require.Equal(t, f.client.ID, c.UserID)
	require.Equal(t, "John Smith", c.UserName)

	stranger := &profiles.Profile{ID: "u9", Role: profiles.RoleFreelancer}
	_, err = f.svc.AddComment(ctx, stranger, v.ID, "hello")
	var notFound *projects.VersionNotFoundError
	require.ErrorAs(t, err, &notFound)

	got, err := f.svc.Get(ctx, f.freelancer, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Deliverables[0].Versions[0].Comments, 1)
}

func TestOpenVersionFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	f.expectSave()
	v, err := f.svc.AddVersion(ctx, f.freelancer, p.Deliverables[0].ID, upload("logo.pdf", "draft"))
	require.NoError(t, err)

	f.files.EXPECT().Open(mock.Anything, v.StorageKey).Return(io.NopCloser(strings.NewReader("draft")), nil)

	got, rc, err := f.svc.OpenVersionFile(ctx, f.client, v.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "draft", string(body))
	require.Equal(t, "logo.pdf", got.FileName)
}

func TestActivity_Localized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.freelancer, validProject())
	require.NoError(t, err)
	d := p.Deliverables[0]
	f.expectSave()
	v, err := f.svc.AddVersion(ctx, f.freelancer, d.ID, upload("logo.pdf", "draft"))
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.svc.ReviewVersion(ctx, f.client, d.ID, v.ID, projects.StatusReturned, "Needs more contrast")
	require.NoError(t, err)
	f.advance(2 * time.Hour)

	feed, err := f.svc.Activity(ctx, f.freelancer, p.ID, i18n.Portuguese)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// The review and its comment share a timestamp; the stable sort keeps
	// review before comment.
	require.Equal(t, "Logo Design devolvido para ajustes", feed[0].Title)
	require.Equal(t, "John Smith comentou em Logo Design", feed[1].Title)
	require.Equal(t, "Nova versão de Logo Design enviada", feed[2].Title)
	require.Equal(t, projects.ActivityUpload, feed[2].Type)

	feed, err = f.svc.Activity(ctx, f.freelancer, p.ID, i18n.English)
	require.NoError(t, err)
	require.Equal(t, "3 hours ago", feed[2].When)
	require.Equal(t, "2 hours ago", feed[0].When)
}
