package domain

import (
	"fmt"
	"time"
)

// SessionNotFoundError indicates no session exists for a token.
type SessionNotFoundError struct {
	// TokenHash is truncated so full hashes never reach logs.
	TokenHash string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: hash=%q", shortHash(e.TokenHash))
}

// SessionExpiredError indicates a session exists but is past its expiry.
type SessionExpiredError struct {
	TokenHash string
	ExpiredAt time.Time
}

// Error implements the error interface.
func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: hash=%q at=%s", shortHash(e.TokenHash), e.ExpiredAt.UTC().Format(time.RFC3339))
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
