// Package domain holds the client entity: a company a freelancer works for.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/validation"
)

// Status of a client relationship.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Client is a company a freelancer works for. Email links the record to the
// client's own login: a client profile with the same email sees the
// projects of this client.
type Client struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	Projects  int       `json:"projects"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClientInput is the new-client form.
type NewClientInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Validate checks the new-client form.
func (in NewClientInput) Validate() error {
	var v validation.Errors
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "Company name is required")
	}
	if strings.TrimSpace(in.Contact) == "" {
		v.Add("contact", "Contact name is required")
	}
	switch email := strings.TrimSpace(in.Email); {
	case email == "":
		v.Add("email", "Email is required")
	case !validation.IsEmail(email):
		v.Add("email", "Email is not a valid address")
	}
	return v.Err()
}

// Build returns a new active client owned by ownerID.
func (in NewClientInput) Build(id, ownerID string, now time.Time) *Client {
	return &Client{
		ID:        id,
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Contact:   strings.TrimSpace(in.Contact),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Status:    StatusActive,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	}
}

// ClientNotFoundError indicates that no client with the ID exists for the owner.
type ClientNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client not found: id=%q", e.ID)
}

// ClientRepository persists clients. List and FindByID populate Projects.
type ClientRepository interface {
	Save(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, ownerID, id string) (*Client, error)
	List(ctx context.Context, ownerID string) ([]*Client, error)
	ListByEmail(ctx context.Context, email string) ([]*Client, error)
}
