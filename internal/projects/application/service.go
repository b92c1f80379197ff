package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// DefaultMaxUploadBytes bounds a single deliverable upload.
const DefaultMaxUploadBytes = 50 << 20

// Service runs the project use cases.
type Service struct {
	projects  projects.ProjectRepository
	clients   clients.ClientRepository
	files     FileStore
	maxUpload int64
	now       func() time.Time
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithMaxUploadBytes sets the upload size limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// NewService creates a project service.
func NewService(projectRepo projects.ProjectRepository, clientRepo clients.ClientRepository, files FileStore, opts ...Option) *Service {
	s := &Service{
		projects:  projectRepo,
		clients:   clientRepo,
		files:     files,
		maxUpload: DefaultMaxUploadBytes,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes returns the configured upload limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// Create validates the form and stores the project with its optional first
// deliverable.
func (s *Service) Create(ctx context.Context, owner *profiles.Profile, in projects.NewProjectInput) (*projects.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, owner.ID, in.ClientID)
	if err != nil {
		var notFound *clients.ClientNotFoundError
		if errors.As(err, &notFound) {
			return nil, &validation.Error{Fields: map[string]string{"client_id": "Please select a client"}}
		}
		return nil, err
	}

	p := in.Build(s.newID(), owner.ID, client.Name, s.now().UTC())
	p.ClientEmail = client.Email
	if in.Deliverable != nil {
		p.Deliverables = append(p.Deliverables, in.Deliverable.Build(s.newID(), p.ID))
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info(log.CatProjects, "Project created", "project", p.ID, "owner", owner.ID, "deliverables", len(p.Deliverables))
	return p, nil
}

// List returns the projects visible to viewer.
func (s *Service) List(ctx context.Context, viewer *profiles.Profile) ([]*projects.Project, error) {
	switch viewer.Role {
	case profiles.RoleFreelancer:
		return s.projects.List(ctx, viewer.ID)
	case profiles.RoleClient:
		return s.projects.ListByClientEmail(ctx, viewer.Email)
	default:
		return []*projects.Project{}, nil
	}
}

// Get returns one project if viewer may see it.
func (s *Service) Get(ctx context.Context, viewer *profiles.Profile, id string) (*projects.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(viewer) {
		return nil, &projects.ProjectNotFoundError{ID: id}
	}
	return p, nil
}

// owned returns the project when owner is its freelancer.
func (s *Service) owned(ctx context.Context, owner *profiles.Profile, id string) (*projects.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.Role != profiles.RoleFreelancer || p.OwnerID != owner.ID {
		return nil, &projects.ProjectNotFoundError{ID: id}
	}
	return p, nil
}

// UpdateStatus moves the project to status.
func (s *Service) UpdateStatus(ctx context.Context, owner *profiles.Profile, id string, status projects.ProjectStatus) (*projects.Project, error) {
	if _, err := projects.ParseProjectStatus(string(status)); err != nil {
		return nil, &validation.Error{Fields: map[string]string{"status": err.Error()}}
	}
	p, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.projects.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	p.Status = status
	log.Info(log.CatProjects, "Project status updated", "project", id, "status", status)
	return p, nil
}

// AddDeliverable appends a deliverable to an owned project.
func (s *Service) AddDeliverable(ctx context.Context, owner *profiles.Profile, projectID string, in projects.NewDeliverableInput) (*projects.Deliverable, error) {
	p, err := s.owned(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}
	if err := in.ValidateFor(p); err != nil {
		return nil, err
	}
	d := in.Build(s.newID(), p.ID)
	if err := s.projects.CreateDeliverable(ctx, d); err != nil {
		return nil, err
	}
	log.Info(log.CatProjects, "Deliverable added", "project", p.ID, "deliverable", d.ID)
	return d, nil
}

// deliverable loads a deliverable together with its project, and hides it
// when viewer cannot see the project.
func (s *Service) deliverable(ctx context.Context, viewer *profiles.Profile, id string) (*projects.Deliverable, *projects.Project, error) {
	d, err := s.projects.FindDeliverable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.projects.FindByID(ctx, d.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !p.VisibleTo(viewer) {
		return nil, nil, &projects.DeliverableNotFoundError{ID: id}
	}
	return d, p, nil
}

// UpdateDeliverableDueDate moves a deliverable's due date. The new date must
// stay inside the project's schedule.
func (s *Service) UpdateDeliverableDueDate(ctx context.Context, owner *profiles.Profile, id string, due calendar.Date) (*projects.Deliverable, error) {
	d, p, err := s.deliverable(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != owner.ID {
		return nil, &projects.DeliverableNotFoundError{ID: id}
	}

	var v validation.Errors
	switch {
	case due.IsZero():
		v.Add("due_date", "Deliverable due date is required")
	case due.Before(p.StartDate):
		v.Add("due_date", "Deliverable due date must be after project start date")
	case due.After(p.DueDate):
		v.Add("due_date", "Deliverable due date must be before or on project due date")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.projects.UpdateDeliverableDueDate(ctx, id, due); err != nil {
		return nil, err
	}
	d.DueDate = due
	return d, nil
}

// AddComment posts content to a version's thread as author.
func (s *Service) AddComment(ctx context.Context, author *profiles.Profile, versionID, content string) (*projects.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &validation.Error{Fields: map[string]string{"content": "Comment is required"}}
	}

	v, err := s.projects.FindVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.deliverable(ctx, author, v.DeliverableID); err != nil {
		var notFound *projects.DeliverableNotFoundError
		if errors.As(err, &notFound) {
			return nil, &projects.VersionNotFoundError{ID: versionID}
		}
		return nil, err
	}
	return s.comment(ctx, author, versionID, content)
}

func (s *Service) newComment(author *profiles.Profile, versionID, content string) *projects.Comment {
	return &projects.Comment{
		ID:        s.newID(),
		VersionID: versionID,
		UserID:    author.ID,
		UserName:  author.FullName,
		UserRole:  author.Role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
}

func (s *Service) comment(ctx context.Context, author *profiles.Profile, versionID, content string) (*projects.Comment, error) {
	c := s.newComment(author, versionID, content)
	if err := s.projects.AddComment(ctx, c); err != nil {
		return nil, err
	}
	log.Debug(log.CatProjects, "Comment added", "version", versionID, "user", author.ID)
	return c, nil
}
