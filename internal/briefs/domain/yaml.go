package domain

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the portable YAML form of a brief. It carries no ownership or
// timestamps so it can move between accounts.
type Document struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Export renders the brief as YAML.
func Export(b *Brief) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Name: b.Name, Description: b.Description, Questions: b.Questions}); err != nil {
		return nil, fmt.Errorf("failed to encode brief: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode brief: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses a YAML brief and returns a new validated brief owned by
// ownerID. Questions or options without ids get fresh ones.
func Import(data []byte, newID IDFunc, id, ownerID string, now time.Time) (*Brief, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse brief: %w", err)
	}

	for i := range doc.Questions {
		q := &doc.Questions[i]
		if q.ID == "" {
			q.ID = newID()
		}
		if q.Type == "" {
			q.Type = TypeText
		}
		for j := range q.Options {
			if q.Options[j].ID == "" {
				q.Options[j].ID = newID()
			}
		}
	}
	if doc.Questions == nil {
		doc.Questions = []Question{}
	}

	b := &Brief{
		ID:          id,
		OwnerID:     ownerID,
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Questions:   doc.Questions,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
