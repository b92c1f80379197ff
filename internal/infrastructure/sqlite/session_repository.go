package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sessions "github.com/freelog/freelog/internal/sessions/domain"
)

type sessionRepository struct {
	db *sql.DB
}

var _ sessions.SessionRepository = (*sessionRepository)(nil)

func (r *sessionRepository) Create(ctx context.Context, s *sessions.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, profile_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.TokenHash, s.ProfileID, s.CreatedAt.Unix(), s.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByHash(ctx context.Context, tokenHash string) (*sessions.Session, error) {
	var (
		s                    sessions.Session
		createdAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, profile_id, created_at, expires_at FROM sessions WHERE token_hash = ?`, tokenHash,
	).Scan(&s.TokenHash, &s.ProfileID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &sessions.SessionNotFoundError{TokenHash: tokenHash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	s.CreatedAt = timeFrom(createdAt)
	s.ExpiresAt = timeFrom(expiresAt)
	return &s, nil
}

// Delete is a no-op for unknown hashes.
func (r *sessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
