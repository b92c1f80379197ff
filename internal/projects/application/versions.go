package application

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	"github.com/freelog/freelog/internal/validation"
)

// Upload is a deliverable file submitted by the freelancer.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
	Comment  string
}

// AddVersion stores the uploaded file and records it as the deliverable's
// next version, in review.
func (s *Service) AddVersion(ctx context.Context, owner *profiles.Profile, deliverableID string, up Upload) (*projects.Version, error) {
	if err := projects.ValidateUpload(up.FileName, up.Size, s.maxUpload); err != nil {
		return nil, err
	}
	d, p, err := s.deliverable(ctx, owner, deliverableID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != owner.ID {
		return nil, &projects.DeliverableNotFoundError{ID: deliverableID}
	}

	v := &projects.Version{
		ID:            s.newID(),
		DeliverableID: d.ID,
		FileName:      filepath.Base(up.FileName),
		Comment:       strings.TrimSpace(up.Comment),
		Status:        projects.StatusInReview,
		UploadedAt:    s.now().UTC(),
		Comments:      []projects.Comment{},
	}
	v.StorageKey = path.Join(d.ID, v.ID+strings.ToLower(filepath.Ext(v.FileName)))

	// Read one byte past the limit so an understated Size is still caught.
	n, err := s.files.Save(ctx, v.StorageKey, io.LimitReader(up.Body, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if n > s.maxUpload {
		s.discard(ctx, v.StorageKey)
		return nil, &validation.Error{Fields: map[string]string{
			"file": fmt.Sprintf("File exceeds the %d MB limit", s.maxUpload>>20),
		}}
	}
	v.FileSize = n

	if err := s.projects.AddVersion(ctx, v); err != nil {
		s.discard(ctx, v.StorageKey)
		return nil, err
	}

	log.Info(log.CatProjects, "Version uploaded",
		"deliverable", d.ID, "version", v.ID, "number", v.Number, "size", v.FileSize)
	return v, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		log.ErrorErr(log.CatStorage, "Failed to remove orphaned upload", err, "key", key)
	}
}

// ReviewVersion records the client's verdict on an in-review version. A
// non-empty comment is added to the version's thread as the reviewer, in the
// same write as the verdict.
func (s *Service) ReviewVersion(ctx context.Context, reviewer *profiles.Profile, deliverableID, versionID string,
	status projects.DeliverableStatus, comment string) (*projects.Version, error) {
	if _, err := projects.ParseReviewStatus(string(status)); err != nil {
		return nil, &validation.Error{Fields: map[string]string{"status": err.Error()}}
	}
	d, _, err := s.deliverable(ctx, reviewer, deliverableID)
	if err != nil {
		return nil, err
	}
	v := d.Version(versionID)
	if v == nil {
		return nil, &projects.VersionNotFoundError{ID: versionID}
	}

	if err := v.Review(status, s.now().UTC()); err != nil {
		return nil, err
	}
	var c *projects.Comment
	if comment = strings.TrimSpace(comment); comment != "" {
		c = s.newComment(reviewer, v.ID, comment)
	}
	if err := s.projects.SaveReview(ctx, v, c); err != nil {
		return nil, err
	}
	if c != nil {
		v.Comments = append(v.Comments, *c)
	}

	log.Info(log.CatProjects, "Version reviewed", "version", v.ID, "status", v.Status, "reviewer", reviewer.ID)
	return v, nil
}

// OpenVersionFile returns a version and a reader over its stored file. The
// caller closes the reader.
func (s *Service) OpenVersionFile(ctx context.Context, viewer *profiles.Profile, versionID string) (*projects.Version, io.ReadCloser, error) {
	v, err := s.projects.FindVersion(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := s.deliverable(ctx, viewer, v.DeliverableID); err != nil {
		return nil, nil, &projects.VersionNotFoundError{ID: versionID}
	}
	rc, err := s.files.Open(ctx, v.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open version file: %w", err)
	}
	return v, rc, nil
}
