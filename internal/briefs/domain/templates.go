package domain

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template is a built-in starter brief.
type Template struct {
	Key      string   `json:"key"`
	Document Document `json:"document"`
}

// Templates returns the embedded starter briefs sorted by key.
func Templates() ([]Template, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var out []Template
	for _, e := range entries {
		data, err := templateFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", e.Name(), err)
		}
		b, err := Import(data, func() string { return "" }, "", "", time.Time{})
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.Name(), err)
		}
		out = append(out, Template{
			Key:      strings.TrimSuffix(e.Name(), path.Ext(e.Name())),
			Document: Document{Name: b.Name, Description: b.Description, Questions: b.Questions},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// TemplateByKey returns the starter brief with the given key.
func TemplateByKey(key string) (Template, bool) {
	all, err := Templates()
	if err != nil {
		return Template{}, false
	}
	for _, t := range all {
		if t.Key == key {
			return t, true
		}
	}
	return Template{}, false
}
