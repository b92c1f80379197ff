package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	briefs "github.com/freelog/freelog/internal/briefs/domain"
)

// Questions and responses are stored as JSON documents; they are always
// read and written whole.
type briefRepository struct {
	db *sql.DB
}

var _ briefs.BriefRepository = (*briefRepository)(nil)

const briefColumns = `id, owner_id, name, description, questions, created_at, updated_at`

func scanBrief(s scanner) (*briefs.Brief, error) {
	var (
		b                briefs.Brief
		questions        string
		created, updated int64
	)
	if err := s.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &questions, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &b.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of brief %s: %w", b.ID, err)
	}
	if b.Questions == nil {
		b.Questions = []briefs.Question{}
	}
	b.CreatedAt = timeFrom(created)
	b.UpdatedAt = timeFrom(updated)
	return &b, nil
}

func encodeQuestions(qs []briefs.Question) (string, error) {
	if qs == nil {
		qs = []briefs.Question{}
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return "", fmt.Errorf("failed to encode questions: %w", err)
	}
	return string(data), nil
}

func (r *briefRepository) Create(ctx context.Context, b *briefs.Brief) error {
	questions, err := encodeQuestions(b.Questions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO briefs (`+briefColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.Name, b.Description, questions, b.CreatedAt.Unix(), b.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert brief: %w", err)
	}
	return nil
}

func (r *briefRepository) FindByID(ctx context.Context, id string) (*briefs.Brief, error) {
	b, err := scanBrief(r.db.QueryRowContext(ctx, `SELECT `+briefColumns+` FROM briefs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &briefs.BriefNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find brief: %w", err)
	}
	return b, nil
}

func (r *briefRepository) List(ctx context.Context, ownerID, search string) ([]*briefs.Brief, error) {
	query := `SELECT ` + briefColumns + ` FROM briefs WHERE owner_id = ?`
	args := []any{ownerID}
	if search = strings.TrimSpace(search); search != "" {
		query += ` AND (instr(lower(name), ?) > 0 OR instr(lower(description), ?) > 0)`
		needle := strings.ToLower(search)
		args = append(args, needle, needle)
	}
	query += ` ORDER BY updated_at DESC, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*briefs.Brief{}
	for rows.Next() {
		b, err := scanBrief(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}
	return out, nil
}

func (r *briefRepository) Update(ctx context.Context, b *briefs.Brief, rev *briefs.Revision) error {
	questions, err := encodeQuestions(b.Questions)
	if err != nil {
		return err
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE briefs SET name = ?, description = ?, questions = ?, updated_at = ? WHERE id = ?`,
			b.Name, b.Description, questions, b.UpdatedAt.Unix(), b.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update brief: %w", err)
		}
		if err := requireAffected(res, &briefs.BriefNotFoundError{ID: b.ID}); err != nil {
			return err
		}
		if rev == nil {
			return nil
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(number), 0) + 1 FROM brief_revisions WHERE brief_id = ?`, b.ID,
		).Scan(&rev.Number); err != nil {
			return fmt.Errorf("failed to number revision: %w", err)
		}
		rev.BriefID = b.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO brief_revisions (id, brief_id, number, author_id, diff, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			rev.ID, rev.BriefID, rev.Number, rev.AuthorID, rev.Diff, rev.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert revision: %w", err)
		}
		return nil
	})
}

func (r *briefRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM briefs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brief: %w", err)
	}
	return requireAffected(res, &briefs.BriefNotFoundError{ID: id})
}

// Revisions returns the history newest first.
func (r *briefRepository) Revisions(ctx context.Context, briefID string) ([]*briefs.Revision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, brief_id, number, author_id, diff, created_at FROM brief_revisions WHERE brief_id = ? ORDER BY number DESC`, briefID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*briefs.Revision{}
	for rows.Next() {
		var (
			rev     briefs.Revision
			created int64
		)
		if err := rows.Scan(&rev.ID, &rev.BriefID, &rev.Number, &rev.AuthorID, &rev.Diff, &created); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		rev.CreatedAt = timeFrom(created)
		out = append(out, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return out, nil
}

func (r *briefRepository) CreateResponse(ctx context.Context, resp *briefs.BriefResponse) error {
	data, err := json.Marshal(resp.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode responses: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO brief_responses (id, brief_id, project_id, client_id, responses, submitted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.BriefID, nullString(resp.ProjectID), resp.ClientID, string(data), resp.SubmittedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert brief response: %w", err)
	}
	return nil
}

// ListResponses returns responses newest first.
func (r *briefRepository) ListResponses(ctx context.Context, briefID string) ([]*briefs.BriefResponse, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, brief_id, project_id, client_id, responses, submitted_at FROM brief_responses
		 WHERE brief_id = ? ORDER BY submitted_at DESC, id`, briefID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brief responses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*briefs.BriefResponse{}
	for rows.Next() {
		var (
			resp      briefs.BriefResponse
			projectID sql.NullString
			answers   string
			submitted int64
		)
		if err := rows.Scan(&resp.ID, &resp.BriefID, &projectID, &resp.ClientID, &answers, &submitted); err != nil {
			return nil, fmt.Errorf("failed to scan brief response: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &resp.Responses); err != nil {
			return nil, fmt.Errorf("failed to decode brief response %s: %w", resp.ID, err)
		}
		resp.ProjectID = projectID.String
		resp.SubmittedAt = timeFrom(submitted)
		out = append(out, &resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list brief responses: %w", err)
	}
	return out, nil
}
