package domain

import (
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Revision records one saved change to a brief as a line diff of its YAML
// rendering.
type Revision struct {
	ID        string    `json:"id"`
	BriefID   string    `json:"brief_id"`
	Number    int       `json:"number"`
	AuthorID  string    `json:"author_id"`
	Diff      string    `json:"diff"`
	CreatedAt time.Time `json:"created_at"`
}

// Diff renders a line diff between two briefs. Unchanged lines are prefixed
// with two spaces, removed lines with "- " and added lines with "+ ".
// It returns "" when the YAML renderings are identical.
func Diff(before, after *Brief) (string, error) {
	a, err := Export(before)
	if err != nil {
		return "", err
	}
	b, err := Export(after)
	if err != nil {
		return "", err
	}
	if string(a) == string(b) {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String(), nil
}
