package domain

import "fmt"

// BriefNotFoundError indicates that no brief with the ID is visible to the caller.
type BriefNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *BriefNotFoundError) Error() string {
	return fmt.Sprintf("brief not found: id=%q", e.ID)
}

// QuestionNotFoundError indicates an edit addressed a question the brief does not have.
type QuestionNotFoundError struct {
	BriefID    string
	QuestionID string
}

// Error implements the error interface.
func (e *QuestionNotFoundError) Error() string {
	return fmt.Sprintf("question not found: brief=%q question=%q", e.BriefID, e.QuestionID)
}

// OptionNotFoundError indicates an edit addressed an option the question does not have.
type OptionNotFoundError struct {
	QuestionID string
	OptionID   string
}

// Error implements the error interface.
func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("option not found: question=%q option=%q", e.QuestionID, e.OptionID)
}

// LastOptionError is returned when removing the only option of a question.
type LastOptionError struct {
	QuestionID string
}

// Error implements the error interface.
func (e *LastOptionError) Error() string {
	return fmt.Sprintf("question %q must keep at least one option", e.QuestionID)
}
