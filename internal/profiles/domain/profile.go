package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/validation"
)

// Role discriminates freelancers from their clients.
type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
)

// Home paths for each side of the application.
const (
	FreelancerHome = "/dashboard"
	ClientHome     = "/client"
	SetupPath      = "/setup"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFreelancer, RoleClient:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// HomePath returns where a user with this role lands after login.
// Profiles without a freelancer role go to the client area.
func (r Role) HomePath() string {
	if r == RoleFreelancer {
		return FreelancerHome
	}
	return ClientHome
}

// Profile is a user of the application.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsSetup reports whether the profile has not picked a role yet.
func (p *Profile) NeedsSetup() bool {
	return p.Role == ""
}

// LandingPath is where the profile goes after signing in: the setup page
// until a role is chosen, then the role's home.
func (p *Profile) LandingPath() string {
	if p.NeedsSetup() {
		return SetupPath
	}
	return p.Role.HomePath()
}

// DefaultFullName picks the display name for a new profile: the provider's
// name when it has one, otherwise the local part of the email.
func DefaultFullName(email, providerName string) string {
	if name := strings.TrimSpace(providerName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// SetupInput is the profile setup form.
type SetupInput struct {
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
	Company  string `json:"company,omitempty"`
}

// Validate checks the setup form.
func (in SetupInput) Validate() error {
	var v validation.Errors
	if _, err := ParseRole(string(in.Role)); err != nil {
		v.Add("role", "Please choose freelancer or client")
	}
	if strings.TrimSpace(in.FullName) == "" {
		v.Add("full_name", "Full name is required")
	}
	return v.Err()
}

// Apply copies the setup form onto p. Company is only kept for clients.
func (in SetupInput) Apply(p *Profile, now time.Time) {
	p.Role = in.Role
	p.FullName = strings.TrimSpace(in.FullName)
	p.Company = ""
	if in.Role == RoleClient {
		p.Company = strings.TrimSpace(in.Company)
	}
	p.UpdatedAt = now
}

// ProfileRepository persists profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
}
