package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/blake2b"

	"github.com/freelog/freelog/internal/log"
	sessions "github.com/freelog/freelog/internal/sessions/domain"
)

// Default session lifetimes.
const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	DefaultCacheTTL   = time.Minute
)

const tokenBytes = 32

// SessionManager issues and resolves session tokens.
type SessionManager struct {
	repo  sessions.SessionRepository
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a manager whose sessions last ttl and whose
// lookups are cached for cacheTTL. Zero durations use the defaults.
func NewSessionManager(repo sessions.SessionRepository, ttl, cacheTTL time.Duration, now func() time.Time) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
		ttl:   ttl,
		now:   now,
	}
}

// TTL returns how long new sessions last.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// HashToken returns the stored form of a session token.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create starts a session for profileID and returns its token. The token is
// never stored.
func (m *SessionManager) Create(ctx context.Context, profileID string) (string, *sessions.Session, error) {
	token, err := NewToken()
	if err != nil {
		return "", nil, err
	}
	now := m.now().UTC()
	s := &sessions.Session{
		TokenHash: HashToken(token),
		ProfileID: profileID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return "", nil, err
	}
	log.Debug(log.CatAuth, "Session created", "profile", profileID)
	return token, s, nil
}

// Lookup resolves a token to its live session.
func (m *SessionManager) Lookup(ctx context.Context, token string) (*sessions.Session, error) {
	hash := HashToken(token)
	now := m.now()

	if cached, ok := m.cache.Get(hash); ok {
		s := cached.(*sessions.Session)
		if !s.Expired(now) {
			return s, nil
		}
		m.cache.Delete(hash)
	}

	s, err := m.repo.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if s.Expired(now) {
		if err := m.repo.Delete(ctx, hash); err != nil {
			log.ErrorErr(log.CatAuth, "Failed to delete expired session", err)
		}
		return nil, &sessions.SessionExpiredError{TokenHash: hash, ExpiredAt: s.ExpiresAt}
	}
	m.cache.SetDefault(hash, s)
	return s, nil
}

// Revoke ends the session for token. Revoking an unknown token succeeds.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	hash := HashToken(token)
	m.cache.Delete(hash)
	return m.repo.Delete(ctx, hash)
}

// PurgeExpired deletes sessions past their expiry.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info(log.CatAuth, "Purged expired sessions", "count", n)
	}
	return n, nil
}
