// Package session holds the client's authentication state.
//
// A [Session] is the single owner of the bearer token: login sets it, logout clears it, and every
// authenticated call reads it through [Session.Token]. The token is mirrored into a [Store] so it
// survives restarts; repositories.SessionRepository is the SQLite-backed store and [MemoryStore]
// serves tests and throwaway runs.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenKey is the store key the bearer token is persisted under.
const TokenKey = "token"

// Store persists session values.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	store Store
}

// New creates an empty session backed by store. A nil store keeps the token in memory only.
func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Load reads the persisted token, replacing whatever the session held.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.store.Load(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores token. An empty token is the same as [Session.Clear].
func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.store.Save(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear drops the token from memory and from the store.
//
// The in-memory token is cleared even when the store fails, so a failed logout never leaves the client authenticated.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Claims is what can be read from a JWT token without verifying it.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the token's payload for display. The signature is not checked; the backend stays the authority.
//
// Opaque (non-JWT) tokens return an error.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, fmt.Errorf("no session token")
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("token is not a JWT: %w", err)
	}

	var c Claims
	if sub, ok := mc["sub"].(string); ok {
		c.Subject = sub
	} else if id, ok := mc["id"].(string); ok {
		c.Subject = id
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return c, nil
}

// MemoryStore is a [Store] that forgets everything when the process exits.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryStore) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
