package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

type profileRepository struct {
	db *sql.DB
}

var _ profiles.ProfileRepository = (*profileRepository)(nil)

const profileColumns = `id, email, full_name, role, avatar_url, company, created_at, updated_at`

func scanProfile(s scanner) (*profiles.Profile, error) {
	var (
		p                     profiles.Profile
		role, avatar, company sql.NullString
		createdAt, updatedAt  int64
	)
	if err := s.Scan(&p.ID, &p.Email, &p.FullName, &role, &avatar, &company, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Role = profiles.Role(role.String)
	p.AvatarURL = avatar.String
	p.Company = company.String
	p.CreatedAt = timeFrom(createdAt)
	p.UpdatedAt = timeFrom(updatedAt)
	return &p, nil
}

// FindByID returns ProfileNotFoundError when no profile has the id.
func (r *profileRepository) FindByID(ctx context.Context, id string) (*profiles.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &profiles.ProfileNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by id: %w", err)
	}
	return p, nil
}

// FindByEmail matches case-insensitively.
func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*profiles.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &profiles.ProfileNotFoundError{Email: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *profiles.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, strings.ToLower(p.Email), p.FullName, nullString(string(p.Role)), nullString(p.AvatarURL),
		nullString(p.Company), p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, p *profiles.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET full_name = ?, role = ?, avatar_url = ?, company = ?, updated_at = ? WHERE id = ?`,
		p.FullName, nullString(string(p.Role)), nullString(p.AvatarURL), nullString(p.Company), p.UpdatedAt.Unix(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireAffected(res, &profiles.ProfileNotFoundError{ID: p.ID})
}

// requireAffected returns notFound when res touched no rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
