package domain

import "fmt"

// ProfileNotFoundError indicates that no profile exists for the given key.
type ProfileNotFoundError struct {
	ID    string
	Email string
}

// Error implements the error interface.
func (e *ProfileNotFoundError) Error() string {
	if e.Email != "" {
		return fmt.Sprintf("profile not found: email=%q", e.Email)
	}
	return fmt.Sprintf("profile not found: id=%q", e.ID)
}
