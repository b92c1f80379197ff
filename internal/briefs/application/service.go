package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	briefs "github.com/freelog/freelog/internal/briefs/domain"
	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// Service runs the brief use cases.
type Service struct {
	repo     briefs.BriefRepository
	clients  ClientLookup
	projects ProjectReader
	now      func() time.Time
	newID    func() string
}

// NewService creates a brief service. now and newID default to time.Now
// and uuid.NewString when nil.
func NewService(repo briefs.BriefRepository, clientLookup ClientLookup, projectReader ProjectReader,
	now func() time.Time, newID func() string) *Service {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Service{repo: repo, clients: clientLookup, projects: projectReader, now: now, newID: newID}
}

// Input is the brief form. Template names a starter brief to copy questions
// from when Questions is empty.
type Input struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Questions   []briefs.Question `json:"questions"`
	Template    string            `json:"template,omitempty"`
}

// fillIDs gives new questions and options an id.
func (s *Service) fillIDs(qs []briefs.Question) {
	for i := range qs {
		if qs[i].ID == "" {
			qs[i].ID = s.newID()
		}
		for j := range qs[i].Options {
			if qs[i].Options[j].ID == "" {
				qs[i].Options[j].ID = s.newID()
			}
		}
	}
}

// Create validates and stores a new brief.
func (s *Service) Create(ctx context.Context, owner *profiles.Profile, in Input) (*briefs.Brief, error) {
	questions := in.Questions
	if in.Template != "" && len(questions) == 0 {
		tpl, ok := briefs.TemplateByKey(in.Template)
		if !ok {
			return nil, &validation.Error{Fields: map[string]string{"template": fmt.Sprintf("Unknown template %q", in.Template)}}
		}
		questions = tpl.Document.Questions
		if strings.TrimSpace(in.Description) == "" {
			in.Description = tpl.Document.Description
		}
	}
	if questions == nil {
		questions = []briefs.Question{}
	}
	s.fillIDs(questions)

	now := s.now().UTC()
	b := &briefs.Brief{
		ID:          s.newID(),
		OwnerID:     owner.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Questions:   questions,
	}
	return s.create(ctx, b)
}

func (s *Service) create(ctx context.Context, b *briefs.Brief) (*briefs.Brief, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	log.Info(log.CatBriefs, "Brief created", "brief", b.ID, "owner", b.OwnerID, "questions", len(b.Questions))
	return b, nil
}

// List returns the owner's briefs matching search.
func (s *Service) List(ctx context.Context, owner *profiles.Profile, search string) ([]*briefs.Brief, error) {
	return s.repo.List(ctx, owner.ID, strings.TrimSpace(search))
}

// Get returns one of the owner's briefs.
func (s *Service) Get(ctx context.Context, owner *profiles.Profile, id string) (*briefs.Brief, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != owner.ID {
		return nil, &briefs.BriefNotFoundError{ID: id}
	}
	return b, nil
}

// Update replaces the brief's name, description and questions and records
// the change as a revision. Saving an unchanged brief adds no revision.
func (s *Service) Update(ctx context.Context, owner *profiles.Profile, id string, in Input) (*briefs.Brief, error) {
	b, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	after := b.Clone()
	after.Name = strings.TrimSpace(in.Name)
	after.Description = strings.TrimSpace(in.Description)
	after.Questions = in.Questions
	if after.Questions == nil {
		after.Questions = []briefs.Question{}
	}
	s.fillIDs(after.Questions)
	return s.save(ctx, owner, b, after)
}

// save validates after and stores it with a revision diffed against before.
func (s *Service) save(ctx context.Context, author *profiles.Profile, before, after *briefs.Brief) (*briefs.Brief, error) {
	if err := after.Validate(); err != nil {
		return nil, err
	}
	diff, err := briefs.Diff(before, after)
	if err != nil {
		return nil, err
	}

	var rev *briefs.Revision
	now := s.now().UTC()
	if diff != "" {
		after.UpdatedAt = now
		rev = &briefs.Revision{
			ID:        s.newID(),
			BriefID:   after.ID,
			AuthorID:  author.ID,
			Diff:      diff,
			CreatedAt: now,
		}
	}
	if err := s.repo.Update(ctx, after, rev); err != nil {
		return nil, err
	}
	if rev != nil {
		log.Info(log.CatBriefs, "Brief revised", "brief", after.ID, "revision", rev.Number)
	}
	return after, nil
}

// Delete removes one of the owner's briefs with its history and responses.
func (s *Service) Delete(ctx context.Context, owner *profiles.Profile, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info(log.CatBriefs, "Brief deleted", "brief", id)
	return nil
}

// Duplicate stores a copy of one of the owner's briefs.
func (s *Service) Duplicate(ctx context.Context, owner *profiles.Profile, id string) (*briefs.Brief, error) {
	b, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, b.Duplicate(s.newID(), s.now().UTC()))
}

// Revisions returns a brief's history, newest first.
func (s *Service) Revisions(ctx context.Context, owner *profiles.Profile, id string) ([]*briefs.Revision, error) {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.repo.Revisions(ctx, id)
}

// Export renders one of the owner's briefs as YAML.
func (s *Service) Export(ctx context.Context, owner *profiles.Profile, id string) (*briefs.Brief, []byte, error) {
	b, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := briefs.Export(b)
	if err != nil {
		return nil, nil, err
	}
	return b, data, nil
}

// Import stores a brief parsed from YAML. Parse failures are reported as a
// validation error on the "yaml" field.
func (s *Service) Import(ctx context.Context, owner *profiles.Profile, data []byte) (*briefs.Brief, error) {
	b, err := briefs.Import(data, s.newID, s.newID(), owner.ID, s.now().UTC())
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, &validation.Error{Fields: map[string]string{"yaml": err.Error()}}
	}
	return s.create(ctx, b)
}

// Templates returns the built-in starter briefs.
func (s *Service) Templates() ([]briefs.Template, error) {
	return briefs.Templates()
}

// GetForClient returns a brief the client may answer.
func (s *Service) GetForClient(ctx context.Context, client *profiles.Profile, id string) (*briefs.Brief, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.clients.ListByEmail(ctx, client.Email)
	if err != nil {
		return nil, err
	}
	for _, c := range records {
		if c.OwnerID == b.OwnerID {
			return b, nil
		}
	}
	return nil, &briefs.BriefNotFoundError{ID: id}
}

// SubmitResponse validates and stores a client's answers. projectID is
// optional; when set it must be one of the client's projects with the
// brief's owner.
func (s *Service) SubmitResponse(ctx context.Context, client *profiles.Profile, briefID, projectID string, answers []briefs.Answer) (*briefs.BriefResponse, error) {
	b, err := s.GetForClient(ctx, client, briefID)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		p, err := s.projects.FindByID(ctx, projectID)
		var notFound *projects.ProjectNotFoundError
		switch {
		case errors.As(err, &notFound), err == nil && (!p.VisibleTo(client) || p.OwnerID != b.OwnerID):
			return nil, &validation.Error{Fields: map[string]string{"project_id": "Unknown project"}}
		case err != nil:
			return nil, err
		}
	}
	if err := briefs.ValidateAnswers(b, answers); err != nil {
		return nil, err
	}

	resp := &briefs.BriefResponse{
		ID:          s.newID(),
		BriefID:     b.ID,
		ProjectID:   projectID,
		ClientID:    client.ID,
		Responses:   answers,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.repo.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}
	log.Info(log.CatBriefs, "Brief response submitted", "brief", b.ID, "client", client.ID, "answers", len(answers))
	return resp, nil
}

// ListResponses returns the answers collected for one of the owner's briefs.
func (s *Service) ListResponses(ctx context.Context, owner *profiles.Profile, id string) ([]*briefs.BriefResponse, error) {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.repo.ListResponses(ctx, id)
}
