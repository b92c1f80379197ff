package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	clients "github.com/freelog/freelog/internal/clients/domain"
)

type clientRepository struct {
	db *sql.DB
}

var _ clients.ClientRepository = (*clientRepository)(nil)

const clientSelect = `SELECT c.id, c.owner_id, c.name, c.contact, c.email, c.phone, c.status, c.notes, c.created_at,
	(SELECT COUNT(*) FROM projects p WHERE p.client_id = c.id)
	FROM clients c`

func scanClient(s scanner) (*clients.Client, error) {
	var (
		c            clients.Client
		phone, notes sql.NullString
		createdAt    int64
	)
	if err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Contact, &c.Email, &phone, &c.Status, &notes, &createdAt, &c.Projects); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Notes = notes.String
	c.CreatedAt = timeFrom(createdAt)
	return &c, nil
}

// Save inserts the client or updates it when the id already exists.
func (r *clientRepository) Save(ctx context.Context, c *clients.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, owner_id, name, contact, email, phone, status, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, contact = excluded.contact, email = excluded.email,
		   phone = excluded.phone, status = excluded.status, notes = excluded.notes`,
		c.ID, c.OwnerID, c.Name, c.Contact, strings.ToLower(c.Email), nullString(c.Phone), string(c.Status),
		nullString(c.Notes), c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, ownerID, id string) (*clients.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, clientSelect+` WHERE c.owner_id = ? AND c.id = ?`, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &clients.ClientNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return c, nil
}

func (r *clientRepository) List(ctx context.Context, ownerID string) ([]*clients.Client, error) {
	return r.list(ctx, clientSelect+` WHERE c.owner_id = ? ORDER BY c.name COLLATE NOCASE`, ownerID)
}

func (r *clientRepository) ListByEmail(ctx context.Context, email string) ([]*clients.Client, error) {
	return r.list(ctx, clientSelect+` WHERE c.email = ? ORDER BY c.created_at`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *clientRepository) list(ctx context.Context, query string, args ...any) ([]*clients.Client, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*clients.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return out, nil
}
