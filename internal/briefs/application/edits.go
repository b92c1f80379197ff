package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	briefs "github.com/freelog/freelog/internal/briefs/domain"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	"github.com/freelog/freelog/internal/validation"
)

// EditOp names one schema editing step.
type EditOp string

const (
	OpAddQuestion    EditOp = "add_question"
	OpUpdateQuestion EditOp = "update_question"
	OpRemoveQuestion EditOp = "remove_question"
	OpMoveQuestion   EditOp = "move_question"
	OpAddOption      EditOp = "add_option"
	OpRemoveOption   EditOp = "remove_option"
)

// Edit is one editor action. Fields not used by Op are ignored. For
// add_question, Question optionally carries the new question's text.
type Edit struct {
	Op         EditOp              `json:"op"`
	Type       briefs.QuestionType `json:"type,omitempty"`
	QuestionID string              `json:"question_id,omitempty"`
	OptionID   string              `json:"option_id,omitempty"`
	Direction  briefs.Direction    `json:"direction,omitempty"`
	Question   *briefs.Question    `json:"question,omitempty"`
}

// ApplyEdits runs edits in order against one of the owner's briefs and
// saves the result as a single revision. Nothing is saved when any edit
// fails.
func (s *Service) ApplyEdits(ctx context.Context, owner *profiles.Profile, id string, edits []Edit) (*briefs.Brief, error) {
	before, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	after := before.Clone()
	now := s.now().UTC()
	newID := briefs.IDFunc(s.newID)

	for i, e := range edits {
		if err := apply(after, e, newID, now); err != nil {
			if typed(err) {
				return nil, err
			}
			return nil, &validation.Error{Fields: map[string]string{fmt.Sprintf("edits.%d", i): err.Error()}}
		}
	}
	return s.save(ctx, owner, before, after)
}

// typed reports whether err already carries a meaning callers map, as
// opposed to a plain rule violation.
func typed(err error) bool {
	var (
		question *briefs.QuestionNotFoundError
		option   *briefs.OptionNotFoundError
		last     *briefs.LastOptionError
		invalid  *validation.Error
	)
	return errors.As(err, &question) || errors.As(err, &option) || errors.As(err, &last) || errors.As(err, &invalid)
}

func apply(b *briefs.Brief, e Edit, newID briefs.IDFunc, now time.Time) error {
	switch e.Op {
	case OpAddQuestion:
		q, err := b.AddQuestion(newID, e.Type, now)
		if err != nil {
			return err
		}
		// Saved briefs need question text, so the editor sends it along.
		if e.Question != nil {
			q.Text = e.Question.Text
			q.Description = e.Question.Description
			q.Placeholder = e.Question.Placeholder
			q.Required = e.Question.Required
		}
		return nil
	case OpUpdateQuestion:
		if e.Question == nil {
			return &validation.Error{Fields: map[string]string{"question": "Question is required"}}
		}
		return b.UpdateQuestion(newID, *e.Question, now)
	case OpRemoveQuestion:
		return b.RemoveQuestion(e.QuestionID, now)
	case OpMoveQuestion:
		return b.MoveQuestion(e.QuestionID, e.Direction, now)
	case OpAddOption:
		_, err := b.AddOption(newID, e.QuestionID, now)
		return err
	case OpRemoveOption:
		return b.RemoveOption(e.QuestionID, e.OptionID, now)
	default:
		return &validation.Error{Fields: map[string]string{"op": fmt.Sprintf("Unknown edit %q", e.Op)}}
	}
}
