package domain

import "fmt"

// ProjectNotFoundError indicates that no project with the ID is visible to the caller.
type ProjectNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project not found: id=%q", e.ID)
}

// DeliverableNotFoundError indicates that no deliverable with the ID exists.
type DeliverableNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *DeliverableNotFoundError) Error() string {
	return fmt.Sprintf("deliverable not found: id=%q", e.ID)
}

// VersionNotFoundError indicates that no version with the ID exists.
type VersionNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version not found: id=%q", e.ID)
}

// InvalidTransitionError indicates a review of a version that is not in review.
type InvalidTransitionError struct {
	VersionID string
	From      DeliverableStatus
	To        DeliverableStatus
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("version %q cannot move from %s to %s", e.VersionID, e.From, e.To)
}
