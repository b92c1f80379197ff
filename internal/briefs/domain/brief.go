// Package domain holds briefs: freelancer-authored questionnaires sent to
// clients, the editing operations on their question schema, and the rules a
// client's answers must satisfy.
package domain

import (
	"fmt"
	"slices"
	"time"
)

// QuestionType is the kind of input a question renders as.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeTextarea       QuestionType = "textarea"
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeCheckbox       QuestionType = "checkbox"
	TypeDate           QuestionType = "date"
	TypeEmail          QuestionType = "email"
	TypeNumber         QuestionType = "number"
	TypeDropdown       QuestionType = "dropdown"
)

// QuestionTypes lists every known question type in editor order.
var QuestionTypes = []QuestionType{
	TypeText, TypeTextarea, TypeMultipleChoice, TypeCheckbox,
	TypeDate, TypeEmail, TypeNumber, TypeDropdown,
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return slices.Contains(QuestionTypes, t)
}

// HasOptions reports whether answers pick from a list of options.
func (t QuestionType) HasOptions() bool {
	return t == TypeMultipleChoice || t == TypeCheckbox || t == TypeDropdown
}

// HasLength reports whether min/max length applies.
func (t QuestionType) HasLength() bool {
	return t == TypeText || t == TypeTextarea
}

// QuestionOption is one choice of an option question. Answers reference the ID.
type QuestionOption struct {
	ID    string `json:"id" yaml:"id"`
	Value string `json:"value" yaml:"value"`
}

// Question is one entry of a brief.
type Question struct {
	ID          string           `json:"id" yaml:"id"`
	Text        string           `json:"text" yaml:"text"`
	Type        QuestionType     `json:"type" yaml:"type"`
	Required    bool             `json:"required" yaml:"required,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []QuestionOption `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MinLength   *int             `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength   *int             `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Min         *float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64         `json:"max,omitempty" yaml:"max,omitempty"`
}

// Option returns the option with the given id, or nil.
func (q *Question) Option(id string) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Brief is a questionnaire template owned by a freelancer.
type Brief struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions"`
}

// IDFunc generates identifiers for new questions and options.
type IDFunc func() string

// Direction is where MoveQuestion moves a question.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (b *Brief) index(questionID string) int {
	return slices.IndexFunc(b.Questions, func(q Question) bool { return q.ID == questionID })
}

// Question returns the question with the given id, or nil.
func (b *Brief) Question(id string) *Question {
	if i := b.index(id); i >= 0 {
		return &b.Questions[i]
	}
	return nil
}

// AddQuestion appends an empty, optional question of type t. Option types
// start with two placeholder options.
func (b *Brief) AddQuestion(newID IDFunc, t QuestionType, now time.Time) (*Question, error) {
	if t == "" {
		t = TypeText
	}
	if !t.Valid() {
		return nil, fmt.Errorf("unknown question type %q", t)
	}
	q := Question{ID: newID(), Type: t}
	if t.HasOptions() {
		q.Options = defaultOptions(newID)
	}
	b.Questions = append(b.Questions, q)
	b.UpdatedAt = now
	return &b.Questions[len(b.Questions)-1], nil
}

// UpdateQuestion replaces the question with the same ID. Switching to an
// option type without options seeds the placeholder options.
func (b *Brief) UpdateQuestion(newID IDFunc, q Question, now time.Time) error {
	i := b.index(q.ID)
	if i < 0 {
		return &QuestionNotFoundError{BriefID: b.ID, QuestionID: q.ID}
	}
	if !q.Type.Valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	if q.Type.HasOptions() && len(q.Options) == 0 {
		q.Options = defaultOptions(newID)
	}
	b.Questions[i] = q
	b.UpdatedAt = now
	return nil
}

// RemoveQuestion deletes a question.
func (b *Brief) RemoveQuestion(id string, now time.Time) error {
	i := b.index(id)
	if i < 0 {
		return &QuestionNotFoundError{BriefID: b.ID, QuestionID: id}
	}
	b.Questions = slices.Delete(b.Questions, i, i+1)
	b.UpdatedAt = now
	return nil
}

// MoveQuestion swaps a question with its neighbour. Moving the first
// question up or the last one down is a no-op.
func (b *Brief) MoveQuestion(id string, dir Direction, now time.Time) error {
	i := b.index(id)
	if i < 0 {
		return &QuestionNotFoundError{BriefID: b.ID, QuestionID: id}
	}
	j := i
	switch dir {
	case Up:
		j = i - 1
	case Down:
		j = i + 1
	default:
		return fmt.Errorf("invalid direction %q", dir)
	}
	if j < 0 || j >= len(b.Questions) {
		return nil
	}
	b.Questions[i], b.Questions[j] = b.Questions[j], b.Questions[i]
	b.UpdatedAt = now
	return nil
}

// AddOption appends "Option N" to an option question.
func (b *Brief) AddOption(newID IDFunc, questionID string, now time.Time) (*QuestionOption, error) {
	q := b.Question(questionID)
	if q == nil {
		return nil, &QuestionNotFoundError{BriefID: b.ID, QuestionID: questionID}
	}
	if !q.Type.HasOptions() {
		return nil, fmt.Errorf("question %q of type %s has no options", questionID, q.Type)
	}
	q.Options = append(q.Options, QuestionOption{
		ID:    newID(),
		Value: fmt.Sprintf("Option %d", len(q.Options)+1),
	})
	b.UpdatedAt = now
	return &q.Options[len(q.Options)-1], nil
}

// RemoveOption deletes an option. The last option of a question cannot be removed.
func (b *Brief) RemoveOption(questionID, optionID string, now time.Time) error {
	q := b.Question(questionID)
	if q == nil {
		return &QuestionNotFoundError{BriefID: b.ID, QuestionID: questionID}
	}
	i := slices.IndexFunc(q.Options, func(o QuestionOption) bool { return o.ID == optionID })
	if i < 0 {
		return &OptionNotFoundError{QuestionID: questionID, OptionID: optionID}
	}
	if len(q.Options) == 1 {
		return &LastOptionError{QuestionID: questionID}
	}
	q.Options = slices.Delete(q.Options, i, i+1)
	b.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the brief.
func (b *Brief) Clone() *Brief {
	c := *b
	c.Questions = make([]Question, len(b.Questions))
	for i, q := range b.Questions {
		q.Options = slices.Clone(q.Options)
		c.Questions[i] = q
	}
	return &c
}

// Duplicate returns a copy of the brief under a new id named "<name> (Copy)".
func (b *Brief) Duplicate(id string, now time.Time) *Brief {
	dup := b.Clone()
	dup.ID = id
	dup.Name = b.Name + " (Copy)"
	dup.CreatedAt = now
	dup.UpdatedAt = now
	return dup
}

func defaultOptions(newID IDFunc) []QuestionOption {
	return []QuestionOption{
		{ID: newID(), Value: "Option 1"},
		{ID: newID(), Value: "Option 2"},
	}
}
