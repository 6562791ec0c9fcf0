package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle: creation, retrieval, authentication
// upgrades with token rotation, and per-key data access.
type Manager struct {
	store     Store
	transport Transport
	config    Config
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithTransport sets a custom session transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) { m.transport = transport }
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) { m.config = config }
}

// New creates a session manager. A transport is required; the store defaults
// to in-memory when not provided.
func New(opts ...Option) *Manager {
	m := &Manager{config: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	if m.transport == nil {
		// Fail fast on misconfiguration rather than silently dropping tokens.
		panic("session: transport is required")
	}

	return m
}

// Ensure retrieves the request's session, creating a fresh anonymous one when
// none exists or the existing one is invalid.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		return session, nil
	}
	_ = m.transport.ClearToken(w)

	session, err = m.createSession(ctx, nil)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.GetTimeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Get retrieves an existing session.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Authenticate upgrades the current session to an authenticated one. The
// token is rotated to prevent session fixation; session data carried by the
// anonymous session is preserved.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx, &userID)
		if err != nil {
			return err
		}
	} else {
		session.UserID = &userID

		newToken, err := generateToken()
		if err != nil {
			return err
		}

		_ = m.store.Delete(ctx, session.Token)

		session.Token = newToken
		idle, max := m.config.GetTimeouts(true)
		session.ExpiresAt = calculateExpiry(session.CreatedAt, time.Now(), idle, max)
		session.Touch()

		if err := m.store.Create(ctx, session); err != nil {
			return err
		}
	}

	idle, _ := m.config.GetTimeouts(true)
	return m.transport.SetToken(w, session.Token, idle)
}

// Destroy deletes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}
	return m.transport.ClearToken(w)
}

// Put stores a value under key in the request's session, creating the session
// if needed.
func (m *Manager) Put(ctx context.Context, w http.ResponseWriter, r *http.Request, key string, value any) error {
	session, err := m.Ensure(ctx, w, r)
	if err != nil {
		return err
	}

	session.Set(key, value)
	return m.store.Update(ctx, session)
}

// Value retrieves a value from the request's session.
func (m *Manager) Value(ctx context.Context, r *http.Request, key string) (any, bool) {
	session, err := m.Get(ctx, r)
	if err != nil {
		return nil, false
	}
	return session.Get(key)
}

// Pop reads a value and deletes it in the same operation, so the value is
// observed exactly once.
func (m *Manager) Pop(ctx context.Context, r *http.Request, key string) (any, bool) {
	session, err := m.Get(ctx, r)
	if err != nil {
		return nil, false
	}

	val, ok := session.Get(key)
	if !ok {
		return nil, false
	}

	session.Delete(key)
	if err := m.store.Update(ctx, session); err != nil {
		return nil, false
	}
	return val, true
}

// Remove deletes a value from the request's session.
func (m *Manager) Remove(ctx context.Context, r *http.Request, key string) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		return err
	}

	session.Delete(key)
	return m.store.Update(ctx, session)
}

// Save persists modifications made directly on a session value.
func (m *Manager) Save(ctx context.Context, session *Session) error {
	if session == nil {
		return ErrInvalidSession
	}
	return m.store.Update(ctx, session)
}

func (m *Manager) createSession(ctx context.Context, userID *uuid.UUID) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.GetTimeouts(userID != nil)
	session := NewSession(token, userID, idle)

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// calculateExpiry bounds the idle-based expiry by the absolute max lifetime.
func calculateExpiry(createdAt, now time.Time, idle, max time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(max)
	if idleExpiry.After(maxExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
