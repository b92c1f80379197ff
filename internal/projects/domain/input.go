package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
	"github.com/freelog/freelog/internal/validation"
)

// Minimum lengths enforced by the project and deliverable forms.
const (
	MinNameLength        = 3
	MinDescriptionLength = 10
)

// NewDeliverableInput is the deliverable part of the project form, also used
// on its own to add deliverables to an existing project.
type NewDeliverableInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	DueDate     calendar.Date `json:"due_date"`
}

// NewProjectInput is the new-project form.
type NewProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	ClientID    string               `json:"client_id"`
	Status      ProjectStatus        `json:"status,omitempty"`
	StartDate   calendar.Date        `json:"start_date"`
	DueDate     calendar.Date        `json:"due_date"`
	Budget      money.Cents          `json:"budget"`
	Deliverable *NewDeliverableInput `json:"deliverable,omitempty"`
}

// Validate applies the project form rules. Deliverable fields are reported
// under "deliverable.<field>".
func (in NewProjectInput) Validate() error {
	var v validation.Errors

	v.RequireMinLength("name", in.Name, "Project name", MinNameLength)
	v.RequireMinLength("description", in.Description, "Project description", MinDescriptionLength)

	if strings.TrimSpace(in.ClientID) == "" {
		v.Add("client_id", "Please select a client")
	}
	if in.Status != "" {
		if _, err := ParseProjectStatus(string(in.Status)); err != nil {
			v.Add("status", err.Error())
		}
	}
	if in.StartDate.IsZero() {
		v.Add("start_date", "Start date is required")
	}
	switch {
	case in.DueDate.IsZero():
		v.Add("due_date", "Due date is required")
	case !in.StartDate.IsZero() && in.DueDate.Before(in.StartDate):
		v.Add("due_date", "Due date must be after start date")
	}
	switch {
	case in.Budget <= 0:
		v.Add("budget", "Budget must be a valid positive number")
	case in.Budget > money.Max:
		v.Add("budget", "Budget must be at most "+money.Max.String())
	}

	if in.Deliverable != nil {
		in.Deliverable.validate(&v, "deliverable.", in.StartDate, in.DueDate)
	}
	return v.Err()
}

// ValidateFor checks a deliverable being added to an existing project.
func (in NewDeliverableInput) ValidateFor(p *Project) error {
	var v validation.Errors
	in.validate(&v, "", p.StartDate, p.DueDate)
	return v.Err()
}

func (in NewDeliverableInput) validate(v *validation.Errors, prefix string, start, due calendar.Date) {
	v.RequireMinLength(prefix+"name", in.Name, "Deliverable name", MinNameLength)
	v.RequireMinLength(prefix+"description", in.Description, "Deliverable description", MinDescriptionLength)

	switch {
	case in.DueDate.IsZero():
		v.Add(prefix+"due_date", "Deliverable due date is required")
	case !start.IsZero() && in.DueDate.Before(start):
		v.Add(prefix+"due_date", "Deliverable due date must be after project start date")
	case !due.IsZero() && in.DueDate.After(due):
		v.Add(prefix+"due_date", "Deliverable due date must be before or on project due date")
	}
}

// Build returns the project described by the form. The caller supplies ids.
func (in NewProjectInput) Build(id, ownerID, clientName string, now time.Time) *Project {
	status := in.Status
	if status == "" {
		status = ProjectNotStarted
	}
	return &Project{
		ID:           id,
		OwnerID:      ownerID,
		ClientID:     in.ClientID,
		ClientName:   clientName,
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Status:       status,
		StartDate:    in.StartDate,
		DueDate:      in.DueDate,
		Budget:       in.Budget,
		CreatedAt:    now,
		Deliverables: []*Deliverable{},
	}
}

// Build returns the deliverable described by the form.
func (in NewDeliverableInput) Build(id, projectID string) *Deliverable {
	return &Deliverable{
		ID:          id,
		ProjectID:   projectID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Versions:    []*Version{},
	}
}

// AllowedUploadExtensions lists the file types accepted for deliverables.
var AllowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".ai":   true,
	".psd":  true,
}

// ValidateUpload checks a deliverable file before it is stored.
func ValidateUpload(fileName string, size, maxBytes int64) error {
	var v validation.Errors
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case strings.TrimSpace(fileName) == "":
		v.Add("file", "A file is required")
	case !AllowedUploadExtensions[ext]:
		v.Add("file", "Unsupported file type: use PDF, PNG, JPG, AI or PSD")
	case size <= 0:
		v.Add("file", "File is empty")
	case size > maxBytes:
		v.Add("file", fmt.Sprintf("File exceeds the %d MB limit", maxBytes>>20))
	}
	return v.Err()
}
