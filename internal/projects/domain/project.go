package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not-started"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectInReview   ProjectStatus = "in-review"
	ProjectCompleted  ProjectStatus = "completed"
)

// ParseProjectStatus validates a project status string.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectNotStarted, ProjectInProgress, ProjectInReview, ProjectCompleted:
		return ProjectStatus(s), nil
	default:
		return "", fmt.Errorf("invalid project status %q", s)
	}
}

// Active reports whether work on the project is still open.
func (s ProjectStatus) Active() bool {
	return s != ProjectCompleted
}

// DeliverableStatus is the review state of one uploaded version.
type DeliverableStatus string

const (
	StatusInReview  DeliverableStatus = "in-review"
	StatusDelivered DeliverableStatus = "delivered"
	StatusReturned  DeliverableStatus = "returned"
)

// ParseReviewStatus validates the outcome of a review. Only delivered and
// returned are review outcomes; in-review is the state a version starts in.
func ParseReviewStatus(s string) (DeliverableStatus, error) {
	switch DeliverableStatus(s) {
	case StatusDelivered, StatusReturned:
		return DeliverableStatus(s), nil
	default:
		return "", fmt.Errorf("invalid review status %q: must be delivered or returned", s)
	}
}

// Author identifies who wrote a comment or performed a review.
type Author struct {
	UserID string        `json:"user_id"`
	Name   string        `json:"user_name"`
	Role   profiles.Role `json:"user_role"`
}

// Comment is a message in a version's review thread.
type Comment struct {
	ID        string        `json:"id"`
	VersionID string        `json:"version_id"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	UserRole  profiles.Role `json:"user_role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// Version is one uploaded file of a deliverable.
type Version struct {
	ID            string            `json:"id"`
	DeliverableID string            `json:"deliverable_id"`
	Number        int               `json:"number"`
	FileURL       string            `json:"file_url"`
	FileName      string            `json:"file_name"`
	FileSize      int64             `json:"file_size"`
	StorageKey    string            `json:"-"`
	Comment       string            `json:"comment,omitempty"`
	Status        DeliverableStatus `json:"status"`
	UploadedAt    time.Time         `json:"uploaded_at"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	Comments      []Comment         `json:"comments"`
}

// Review moves an in-review version to delivered or returned.
func (v *Version) Review(status DeliverableStatus, now time.Time) error {
	if _, err := ParseReviewStatus(string(status)); err != nil {
		return err
	}
	if v.Status != StatusInReview {
		return &InvalidTransitionError{VersionID: v.ID, From: v.Status, To: status}
	}
	v.Status = status
	v.ReviewedAt = &now
	return nil
}

// Deliverable is a unit of creative work with an ordered version history.
type Deliverable struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	DueDate     calendar.Date `json:"due_date"`
	Versions    []*Version    `json:"versions"`
}

// CurrentVersion returns the version with the highest number, or nil when
// nothing has been uploaded yet. It is always derived from Versions so it
// can never point at a stale upload.
func (d *Deliverable) CurrentVersion() *Version {
	var current *Version
	for _, v := range d.Versions {
		if current == nil || v.Number > current.Number {
			current = v
		}
	}
	return current
}

// NextVersionNumber returns the number the next upload will get.
func (d *Deliverable) NextVersionNumber() int {
	if cur := d.CurrentVersion(); cur != nil {
		return cur.Number + 1
	}
	return 1
}

// Version returns the version with the given id, or nil.
func (d *Deliverable) Version(id string) *Version {
	for _, v := range d.Versions {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Pending reports whether the deliverable is waiting on someone: nothing has
// been uploaded yet, or the latest upload is still in review.
func (d *Deliverable) Pending() bool {
	cur := d.CurrentVersion()
	return cur == nil || cur.Status == StatusInReview
}

// Project is a piece of client work with a budget and deliverables.
type Project struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	ClientID     string         `json:"client_id"`
	ClientName   string         `json:"client_name"`
	ClientEmail  string         `json:"-"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Status       ProjectStatus  `json:"status"`
	StartDate    calendar.Date  `json:"start_date"`
	DueDate      calendar.Date  `json:"due_date"`
	Budget       money.Cents    `json:"budget"`
	CreatedAt    time.Time      `json:"created_at"`
	Deliverables []*Deliverable `json:"deliverables"`
}

// VisibleTo reports whether viewer may see the project: its owner, or a
// client whose email matches the project's client record.
func (p *Project) VisibleTo(viewer *profiles.Profile) bool {
	switch viewer.Role {
	case profiles.RoleFreelancer:
		return p.OwnerID == viewer.ID
	case profiles.RoleClient:
		return p.ClientEmail != "" && strings.EqualFold(p.ClientEmail, viewer.Email)
	default:
		return false
	}
}

// Deliverable returns the deliverable with the given id, or nil.
func (p *Project) Deliverable(id string) *Deliverable {
	for _, d := range p.Deliverables {
		if d.ID == id {
			return d
		}
	}
	return nil
}
