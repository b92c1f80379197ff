// Package domain holds login sessions. A session is identified by the hash of
// an opaque token handed to the browser; the token itself is never stored.
package domain

import (
	"context"
	"time"
)

// Session binds a token hash to a profile until it expires.
type Session struct {
	TokenHash string
	ProfileID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRepository persists sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// FindByHash returns SessionNotFoundError for unknown hashes.
	FindByHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
	// DeleteExpired removes sessions that expired at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
