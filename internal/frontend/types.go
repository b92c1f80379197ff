package frontend

import (
	briefsapp "github.com/freelog/freelog/internal/briefs/application"
	briefs "github.com/freelog/freelog/internal/briefs/domain"
	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	finance "github.com/freelog/freelog/internal/finance/domain"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projectsapp "github.com/freelog/freelog/internal/projects/application"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

// APIError is the body of every error response.
type APIError struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// MeResponse describes the signed-in user and where the UI should send them.
type MeResponse struct {
	Profile     *profiles.Profile `json:"profile"`
	LandingPath string            `json:"landing_path"`
}

// ClientsResponse lists the freelancer's clients.
type ClientsResponse struct {
	Clients []*clients.Client `json:"clients"`
}

// ProjectsResponse lists projects visible to the caller.
type ProjectsResponse struct {
	Projects []*projects.Project `json:"projects"`
}

// ActivityResponse is a project's localized activity feed.
type ActivityResponse struct {
	Activity []projectsapp.ActivityEntry `json:"activity"`
}

// StatusRequest changes a project's status.
type StatusRequest struct {
	Status projects.ProjectStatus `json:"status"`
}

// DueDateRequest moves a deliverable's due date.
type DueDateRequest struct {
	DueDate calendar.Date `json:"due_date"`
}

// ReviewRequest is the client's verdict on a version.
type ReviewRequest struct {
	Status  projects.DeliverableStatus `json:"status"`
	Comment string                     `json:"comment,omitempty"`
}

// CommentRequest adds a comment to a version thread.
type CommentRequest struct {
	Content string `json:"content"`
}

// PaymentsResponse lists payments.
type PaymentsResponse struct {
	Payments []*finance.Payment `json:"payments"`
}

// MarkPaidRequest records when a payment was received.
type MarkPaidRequest struct {
	PaidDate calendar.Date `json:"paid_date"`
}

// ClientFinancesResponse is the finance view of a client.
type ClientFinancesResponse struct {
	Summary  finance.Summary    `json:"summary"`
	Payments []*finance.Payment `json:"payments"`
}

// BriefsResponse lists briefs.
type BriefsResponse struct {
	Briefs []*briefs.Brief `json:"briefs"`
}

// TemplatesResponse lists the starter briefs.
type TemplatesResponse struct {
	Templates []briefs.Template `json:"templates"`
}

// EditsRequest is a batch of editor actions saved as one revision.
type EditsRequest struct {
	Edits []briefsapp.Edit `json:"edits"`
}

// RevisionsResponse lists a brief's revision history.
type RevisionsResponse struct {
	Revisions []*briefs.Revision `json:"revisions"`
}

// ResponsesResponse lists the answers collected for a brief.
type ResponsesResponse struct {
	Responses []*briefs.BriefResponse `json:"responses"`
}

// SubmitResponseRequest is a client's answers to a brief.
type SubmitResponseRequest struct {
	ProjectID string          `json:"project_id,omitempty"`
	Responses []briefs.Answer `json:"responses"`
}
