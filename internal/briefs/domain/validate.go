package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/validation"
)

// Validate checks the brief schema. Question errors are reported under
// "questions.<index>.<field>".
func (b *Brief) Validate() error {
	var v validation.Errors
	if strings.TrimSpace(b.Name) == "" {
		v.Add("name", "Brief name is required")
	}

	seen := make(map[string]bool, len(b.Questions))
	for i, q := range b.Questions {
		prefix := fmt.Sprintf("questions.%d.", i)
		switch {
		case q.ID == "":
			v.Add(prefix+"id", "Question id is required")
		case seen[q.ID]:
			v.Add(prefix+"id", fmt.Sprintf("Duplicate question id %q", q.ID))
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Text) == "" {
			v.Add(prefix+"text", "Question text is required")
		}
		if !q.Type.Valid() {
			v.Add(prefix+"type", fmt.Sprintf("Unknown question type %q", q.Type))
			continue
		}
		if q.Type.HasOptions() {
			if len(q.Options) == 0 {
				v.Add(prefix+"options", "At least one option is required")
			}
			for _, o := range q.Options {
				if o.ID == "" || strings.TrimSpace(o.Value) == "" {
					v.Add(prefix+"options", "Options need an id and a value")
				}
			}
		}
		if q.MinLength != nil && *q.MinLength < 0 {
			v.Add(prefix+"min_length", "Minimum length cannot be negative")
		}
		if q.MinLength != nil && q.MaxLength != nil && *q.MinLength > *q.MaxLength {
			v.Add(prefix+"max_length", "Maximum length must be at least the minimum length")
		}
		if q.Min != nil && !finite(*q.Min) {
			v.Add(prefix+"min", "Minimum must be a finite number")
		}
		if q.Max != nil && !finite(*q.Max) {
			v.Add(prefix+"max", "Maximum must be a finite number")
		}
		if q.Min != nil && q.Max != nil && *q.Min > *q.Max {
			v.Add(prefix+"max", "Maximum must be at least the minimum")
		}
	}
	return v.Err()
}

// Answer is a client's answer to one question. Value holds a string for most
// types, a number for number questions, and a list of option ids for
// checkbox questions.
type Answer struct {
	QuestionID string `json:"question_id"`
	Value      any    `json:"answer"`
}

// BriefResponse is one submitted set of answers.
type BriefResponse struct {
	ID          string    `json:"id"`
	BriefID     string    `json:"brief_id"`
	ProjectID   string    `json:"project_id,omitempty"`
	ClientID    string    `json:"client_id"`
	Responses   []Answer  `json:"responses"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ValidateAnswers checks answers against the brief. Errors are keyed by
// question id. Answers to unknown questions are rejected.
func ValidateAnswers(b *Brief, answers []Answer) error {
	var v validation.Errors

	byID := make(map[string]any, len(answers))
	for _, a := range answers {
		if b.Question(a.QuestionID) == nil {
			v.Add(a.QuestionID, "Unknown question")
			continue
		}
		byID[a.QuestionID] = a.Value
	}

	for i := range b.Questions {
		q := &b.Questions[i]
		value, ok := byID[q.ID]
		if !ok || isBlank(value) {
			if q.Required {
				v.Add(q.ID, "This question is required")
			}
			continue
		}
		if msg := checkAnswer(q, value); msg != "" {
			v.Add(q.ID, msg)
		}
	}
	return v.Err()
}

func isBlank(value any) bool {
	switch val := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

func checkAnswer(q *Question, value any) string {
	switch q.Type {
	case TypeText, TypeTextarea:
		s, ok := value.(string)
		if !ok {
			return "Answer must be text"
		}
		n := utf8.RuneCountInString(s)
		if q.MinLength != nil && n < *q.MinLength {
			return fmt.Sprintf("Answer must be at least %d characters", *q.MinLength)
		}
		if q.MaxLength != nil && n > *q.MaxLength {
			return fmt.Sprintf("Answer must be at most %d characters", *q.MaxLength)
		}
	case TypeEmail:
		s, ok := value.(string)
		if !ok || !validation.IsEmail(strings.TrimSpace(s)) {
			return "Please enter a valid email address"
		}
	case TypeNumber:
		n, ok := toNumber(value)
		if !ok {
			return "Answer must be a number"
		}
		if q.Min != nil && n < *q.Min {
			return fmt.Sprintf("Answer must be at least %s", formatNumber(*q.Min))
		}
		if q.Max != nil && n > *q.Max {
			return fmt.Sprintf("Answer must be at most %s", formatNumber(*q.Max))
		}
	case TypeDate:
		s, ok := value.(string)
		if !ok {
			return "Answer must be a date"
		}
		if _, err := calendar.Parse(s); err != nil {
			return "Answer must be a date (YYYY-MM-DD)"
		}
	case TypeMultipleChoice, TypeDropdown:
		s, ok := value.(string)
		if !ok || q.Option(s) == nil {
			return "Please select one of the options"
		}
	case TypeCheckbox:
		ids, ok := toStrings(value)
		if !ok {
			return "Answer must be a list of options"
		}
		for _, id := range ids {
			if q.Option(id) == nil {
				return fmt.Sprintf("Unknown option %q", id)
			}
		}
	}
	return ""
}

// toNumber accepts finite numbers only.
func toNumber(value any) (float64, bool) {
	var f float64
	switch val := value.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toStrings(value any) ([]string, bool) {
	switch val := value.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
