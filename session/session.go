// Copyright (c) 2025 BVK Chaitanya

// Package session manages the authenticated user session for the daemon.
//
// The session token is saved in the local database so that restarts keep the
// user logged-in. A missing or expired token starts the daemon anonymously
// without any network calls. A token that fails validation also starts the
// daemon anonymously, but the token is retained so that a later restart can
// retry when the backend recovers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bvk/coinwatch/backend"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/kvutil"
	"github.com/bvkgo/kv"
)

// DefaultKey is the local database key holding the session state.
const DefaultKey = "/session/current"

// TokenMaxAge mirrors the backend cookie lifetime. Tokens older than this are
// dropped without contacting the backend.
const TokenMaxAge = 7 * 24 * time.Hour

// Session is an immutable view of the current session. Anonymous sessions
// have no user and no token.
type Session struct {
	Authenticated bool

	Token string

	User *backend.User
}

type Manager struct {
	db kv.Database

	client *backend.Client

	// mu serializes login, logout and bootstrap so that the saved state and
	// the current session never disagree.
	mu sync.Mutex

	current atomic.Pointer[Session]
}

func New(db kv.Database, client *backend.Client) *Manager {
	m := &Manager{
		db:     db,
		client: client,
	}
	m.current.Store(&Session{})
	return m
}

// Current returns the session as of the last bootstrap, login or logout.
func (m *Manager) Current() *Session {
	return m.current.Load()
}

// Bootstrap resolves the saved token into a session. It is safe to call
// multiple times; each call resolves to the same outcome for the same saved
// state and backend responses.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := kvutil.GetDB[gobs.SessionState](ctx, m.db, DefaultKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.current.Store(&Session{})
			return nil
		}
		return fmt.Errorf("could not load saved session state: %w", err)
	}

	if age := time.Since(state.CreatedAt); age > TokenMaxAge {
		slog.Info("saved session token has expired", "age", age)
		if err := m.deleteState(ctx); err != nil {
			return err
		}
		m.current.Store(&Session{})
		return nil
	}

	user, err := m.client.ValidateToken(ctx, state.Token)
	if err != nil {
		// Keep the saved token so that a later bootstrap can retry.
		slog.Warn("could not validate the saved session token (running anonymously)", "err", err)
		m.current.Store(&Session{})
		return nil
	}

	m.current.Store(&Session{
		Authenticated: true,
		Token:         state.Token,
		User:          user,
	})
	slog.Info("restored authenticated session", "user", user.Email)
	return nil
}

// Login authenticates with the backend and saves the session token.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("could not login to the backend: %w", err)
	}
	return m.saveSession(ctx, resp.Token, resp.User)
}

// Register creates a new account. When the backend returns a token the new
// account is also logged-in.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp, err := m.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, fmt.Errorf("could not register with the backend: %w", err)
	}
	if len(resp.Token) == 0 || resp.User == nil {
		return m.current.Load(), nil
	}
	return m.saveSession(ctx, resp.Token, resp.User)
}

// Logout drops the local session. The backend is notified on a best-effort
// basis; its failure does not keep the user logged-in.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	if cur.Authenticated {
		if err := m.client.Logout(ctx, cur.Token); err != nil {
			slog.Warn("could not logout from the backend (ignored)", "err", err)
		}
	}
	if err := m.deleteState(ctx); err != nil {
		return err
	}
	m.current.Store(&Session{})
	return nil
}

func (m *Manager) saveSession(ctx context.Context, token string, user *backend.User) (*Session, error) {
	state := &gobs.SessionState{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		CreatedAt: time.Now(),
	}
	if err := kvutil.SetDB(ctx, m.db, DefaultKey, state); err != nil {
		return nil, fmt.Errorf("could not save session state: %w", err)
	}
	s := &Session{
		Authenticated: true,
		Token:         token,
		User:          user,
	}
	m.current.Store(s)
	return s, nil
}

func (m *Manager) deleteState(ctx context.Context) error {
	remove := func(ctx context.Context, rw kv.ReadWriter) error {
		if err := rw.Delete(ctx, DefaultKey); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, m.db, remove); err != nil {
		return fmt.Errorf("could not delete saved session state: %w", err)
	}
	return nil
}
