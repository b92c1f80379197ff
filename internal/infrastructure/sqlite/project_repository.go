package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

// VersionFileURL is where the API serves a version's file.
func VersionFileURL(versionID string) string {
	return "/api/versions/" + versionID + "/file"
}

type projectRepository struct {
	db *sql.DB
}

var _ projects.ProjectRepository = (*projectRepository)(nil)

const projectSelect = `SELECT p.id, p.owner_id, p.client_id, c.name, c.email, p.name, p.description, p.status,
	p.start_date, p.due_date, p.budget_cents, p.created_at
	FROM projects p JOIN clients c ON c.id = p.client_id`

func (r *projectRepository) Create(ctx context.Context, p *projects.Project) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, owner_id, client_id, name, description, status, start_date, due_date, budget_cents, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.ClientID, p.Name, p.Description, string(p.Status),
			p.StartDate.Unix(), p.DueDate.Unix(), int64(p.Budget), p.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
		for i, d := range p.Deliverables {
			if err := insertDeliverable(ctx, tx, d, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*projects.Project, error) {
	list, err := r.load(ctx, `WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, &projects.ProjectNotFoundError{ID: id}
	}
	return list[0], nil
}

func (r *projectRepository) List(ctx context.Context, ownerID string) ([]*projects.Project, error) {
	return r.load(ctx, `WHERE p.owner_id = ? ORDER BY p.due_date, p.name`, ownerID)
}

func (r *projectRepository) ListByClientEmail(ctx context.Context, email string) ([]*projects.Project, error) {
	return r.load(ctx, `WHERE c.email = ? ORDER BY p.due_date, p.name`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id string, status projects.ProjectStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return requireAffected(res, &projects.ProjectNotFoundError{ID: id})
}

// CreateDeliverable appends d after the project's existing deliverables.
func (r *projectRepository) CreateDeliverable(ctx context.Context, d *projects.Deliverable) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists, position int
		err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(*) FROM projects WHERE id = ?), (SELECT COUNT(*) FROM deliverables WHERE project_id = ?)`,
			d.ProjectID, d.ProjectID,
		).Scan(&exists, &position)
		if err != nil {
			return fmt.Errorf("failed to check project: %w", err)
		}
		if exists == 0 {
			return &projects.ProjectNotFoundError{ID: d.ProjectID}
		}
		return insertDeliverable(ctx, tx, d, position)
	})
}

func insertDeliverable(ctx context.Context, tx *sql.Tx, d *projects.Deliverable, position int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO deliverables (id, project_id, name, description, due_date, position) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, d.Name, d.Description, d.DueDate.Unix(), position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deliverable: %w", err)
	}
	return nil
}

func (r *projectRepository) FindDeliverable(ctx context.Context, id string) (*projects.Deliverable, error) {
	ds, err := r.loadDeliverables(ctx, `id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, &projects.DeliverableNotFoundError{ID: id}
	}
	return ds[0], nil
}

func (r *projectRepository) UpdateDeliverableDueDate(ctx context.Context, id string, due calendar.Date) error {
	res, err := r.db.ExecContext(ctx, `UPDATE deliverables SET due_date = ? WHERE id = ?`, due.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update deliverable due date: %w", err)
	}
	return requireAffected(res, &projects.DeliverableNotFoundError{ID: id})
}

// AddVersion numbers and inserts v in one transaction so concurrent uploads
// never share a number.
func (r *projectRepository) AddVersion(ctx context.Context, v *projects.Version) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists, next int
		err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(*) FROM deliverables WHERE id = ?),
			        (SELECT COALESCE(MAX(number), 0) + 1 FROM versions WHERE deliverable_id = ?)`,
			v.DeliverableID, v.DeliverableID,
		).Scan(&exists, &next)
		if err != nil {
			return fmt.Errorf("failed to number version: %w", err)
		}
		if exists == 0 {
			return &projects.DeliverableNotFoundError{ID: v.DeliverableID}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO versions (id, deliverable_id, number, file_name, file_size, storage_key, comment, status, uploaded_at, reviewed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.DeliverableID, next, v.FileName, v.FileSize, v.StorageKey, nullString(v.Comment),
			string(v.Status), v.UploadedAt.Unix(), nullTime(v.ReviewedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert version: %w", err)
		}
		v.Number = next
		v.FileURL = VersionFileURL(v.ID)
		return nil
	})
}

func (r *projectRepository) FindVersion(ctx context.Context, id string) (*projects.Version, error) {
	vs, err := r.loadVersions(ctx, `id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, &projects.VersionNotFoundError{ID: id}
	}
	return vs[0], nil
}

// SaveReview stores v's status and review time, plus c when non-nil, in one
// transaction. It only succeeds while the stored row is still in review.
func (r *projectRepository) SaveReview(ctx context.Context, v *projects.Version, c *projects.Comment) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE versions SET status = ?, reviewed_at = ? WHERE id = ? AND status = ?`,
			string(v.Status), nullTime(v.ReviewedAt), v.ID, string(projects.StatusInReview),
		)
		if err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}
		if err := requireAffected(res, &projects.InvalidTransitionError{VersionID: v.ID, From: "reviewed", To: v.Status}); err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		return insertComment(ctx, tx, c)
	})
}

func (r *projectRepository) AddComment(ctx context.Context, c *projects.Comment) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM versions WHERE id = ?`, c.VersionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check version: %w", err)
		}
		if exists == 0 {
			return &projects.VersionNotFoundError{ID: c.VersionID}
		}
		return insertComment(ctx, tx, c)
	})
}

func insertComment(ctx context.Context, tx *sql.Tx, c *projects.Comment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO comments (id, version_id, user_id, user_name, user_role, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.VersionID, c.UserID, c.UserName, string(c.UserRole), c.Content, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// load reads projects matching clause and attaches their deliverable trees.
// Each level is read fully before the next query runs.
func (r *projectRepository) load(ctx context.Context, clause string, args ...any) ([]*projects.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelect+" "+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	out := []*projects.Project{}
	for rows.Next() {
		var (
			p                           projects.Project
			start, due, budget, created int64
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.ClientID, &p.ClientName, &p.ClientEmail, &p.Name, &p.Description, &p.Status,
			&start, &due, &budget, &created); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.StartDate = calendar.FromUnix(start)
		p.DueDate = calendar.FromUnix(due)
		p.Budget = money.Cents(budget)
		p.CreatedAt = timeFrom(created)
		p.Deliverables = []*projects.Deliverable{}
		out = append(out, &p)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, len(out))
	byID := make(map[string]*projects.Project, len(out))
	for i, p := range out {
		ids[i] = p.ID
		byID[p.ID] = p
	}
	ds, err := r.loadDeliverables(ctx, `project_id IN (`+placeholders(len(ids))+`)`, ids...)
	if err != nil {
		return nil, err
	}
	for _, d := range ds {
		byID[d.ProjectID].Deliverables = append(byID[d.ProjectID].Deliverables, d)
	}
	return out, nil
}

func (r *projectRepository) loadDeliverables(ctx context.Context, where string, args ...any) ([]*projects.Deliverable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, description, due_date FROM deliverables WHERE `+where+` ORDER BY position, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliverables: %w", err)
	}
	out := []*projects.Deliverable{}
	for rows.Next() {
		var (
			d   projects.Deliverable
			due int64
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Description, &due); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan deliverable: %w", err)
		}
		d.DueDate = calendar.FromUnix(due)
		d.Versions = []*projects.Version{}
		out = append(out, &d)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, fmt.Errorf("failed to query deliverables: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, len(out))
	byID := make(map[string]*projects.Deliverable, len(out))
	for i, d := range out {
		ids[i] = d.ID
		byID[d.ID] = d
	}
	vs, err := r.loadVersions(ctx, `deliverable_id IN (`+placeholders(len(ids))+`)`, ids...)
	if err != nil {
		return nil, err
	}
	for _, v := range vs {
		byID[v.DeliverableID].Versions = append(byID[v.DeliverableID].Versions, v)
	}
	return out, nil
}

func (r *projectRepository) loadVersions(ctx context.Context, where string, args ...any) ([]*projects.Version, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, deliverable_id, number, file_name, file_size, storage_key, comment, status, uploaded_at, reviewed_at
		 FROM versions WHERE `+where+` ORDER BY deliverable_id, number`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	out := []*projects.Version{}
	for rows.Next() {
		var (
			v        projects.Version
			comment  sql.NullString
			uploaded int64
			reviewed sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.DeliverableID, &v.Number, &v.FileName, &v.FileSize, &v.StorageKey,
			&comment, &v.Status, &uploaded, &reviewed); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.Comment = comment.String
		v.UploadedAt = timeFrom(uploaded)
		v.ReviewedAt = timePtrFrom(reviewed)
		v.FileURL = VersionFileURL(v.ID)
		v.Comments = []projects.Comment{}
		out = append(out, &v)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, len(out))
	byID := make(map[string]*projects.Version, len(out))
	for i, v := range out {
		ids[i] = v.ID
		byID[v.ID] = v
	}
	cs, err := r.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		v := byID[c.VersionID]
		v.Comments = append(v.Comments, c)
	}
	return out, nil
}

func (r *projectRepository) loadComments(ctx context.Context, versionIDs []any) ([]projects.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version_id, user_id, user_name, user_role, content, created_at
		 FROM comments WHERE version_id IN (`+placeholders(len(versionIDs))+`) ORDER BY created_at, rowid`, versionIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []projects.Comment
	for rows.Next() {
		var (
			c       projects.Comment
			role    string
			created int64
		)
		if err := rows.Scan(&c.ID, &c.VersionID, &c.UserID, &c.UserName, &role, &c.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.UserRole = profiles.Role(role)
		c.CreatedAt = timeFrom(created)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
