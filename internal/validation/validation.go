// Package validation collects per-field input errors.
package validation

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// Error reports which input fields failed validation and why.
// Field names match the JSON names of the request that was validated;
// nested fields use dot notation ("deliverable.name").
type Error struct {
	Fields map[string]string `json:"fields"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Errors accumulates field errors. The zero value is ready to use.
type Errors struct {
	fields map[string]string
}

// Add records msg for field. The first message recorded for a field wins.
func (v *Errors) Add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

// Has reports whether field already has an error.
func (v *Errors) Has(field string) bool {
	_, ok := v.fields[field]
	return ok
}

// Err returns an *Error when any field failed, nil otherwise.
func (v *Errors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &Error{Fields: v.fields}
}

// RequireMinLength checks that the trimmed value is present and at least
// min characters long.
func (v *Errors) RequireMinLength(field, value, label string, min int) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		v.Add(field, label+" is required")
	case len([]rune(trimmed)) < min:
		v.Add(field, fmt.Sprintf("%s must be at least %d characters", label, min))
	}
}

// IsEmail reports whether s parses as a bare email address.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}
