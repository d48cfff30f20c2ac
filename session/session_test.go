// Copyright (c) 2025 BVK Chaitanya

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/coinwatch/backend"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/kvutil"
	"github.com/bvkgo/kv/kvmemdb"
)

type fakeAuth struct {
	nrequests atomic.Int64

	validTokens map[string]*backend.User
}

func (f *fakeAuth) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/validateToken", func(w http.ResponseWriter, r *http.Request) {
		f.nrequests.Add(1)
		token, _ := strings.CutPrefix(r.Header.Get("authorization"), "Bearer ")
		user, ok := f.validTokens[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
			return
		}
		json.NewEncoder(w).Encode(&backend.ValidateTokenResponse{User: user})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.nrequests.Add(1)
		req := new(backend.LoginRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(&backend.LoginResponse{
			Token: "fresh-token",
			User:  &backend.User{ID: "u1", Name: "Test User", Email: req.Email},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.nrequests.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newTestManager(t *testing.T, fake *fakeAuth) *Manager {
	t.Helper()

	s := httptest.NewServer(fake.handler(t))
	t.Cleanup(s.Close)

	client, err := backend.New(&backend.Options{Address: s.URL})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	return New(kvmemdb.New(), client)
}

func TestBootstrapWithoutToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuth{}
	m := newTestManager(t, fake)

	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m.Current(); s.Authenticated {
		t.Fatalf("session without a saved token must be anonymous")
	}
	if n := fake.nrequests.Load(); n != 0 {
		t.Fatalf("bootstrap without a saved token must not contact the backend; saw %d requests", n)
	}
}

func TestBootstrapWithValidToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuth{
		validTokens: map[string]*backend.User{
			"good-token": {ID: "u1", Name: "Test User", Email: "test@example.com"},
		},
	}
	m := newTestManager(t, fake)

	state := &gobs.SessionState{Token: "good-token", CreatedAt: time.Now()}
	if err := kvutil.SetDB(ctx, m.db, DefaultKey, state); err != nil {
		t.Fatal(err)
	}

	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	s := m.Current()
	if !s.Authenticated {
		t.Fatalf("session with a valid token must be authenticated")
	}
	if s.User.ID != "u1" {
		t.Fatalf("wanted user u1, got %q", s.User.ID)
	}
}

func TestBootstrapRetainsInvalidToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuth{}
	m := newTestManager(t, fake)

	state := &gobs.SessionState{Token: "stale-token", CreatedAt: time.Now()}
	if err := kvutil.SetDB(ctx, m.db, DefaultKey, state); err != nil {
		t.Fatal(err)
	}

	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m.Current(); s.Authenticated {
		t.Fatalf("session with an invalid token must be anonymous")
	}

	// The token must survive for a later bootstrap to retry.
	saved, err := kvutil.GetDB[gobs.SessionState](ctx, m.db, DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Token != "stale-token" {
		t.Fatalf("failed validation must retain the saved token; got %q", saved.Token)
	}

	// When the backend recovers, the same token resolves to a user.
	fake.validTokens = map[string]*backend.User{
		"stale-token": {ID: "u1", Name: "Test User", Email: "test@example.com"},
	}
	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m.Current(); !s.Authenticated {
		t.Fatalf("bootstrap retry with a recovered backend must authenticate")
	}
}

func TestBootstrapDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuth{}
	m := newTestManager(t, fake)

	state := &gobs.SessionState{
		Token:     "old-token",
		CreatedAt: time.Now().Add(-TokenMaxAge - time.Hour),
	}
	if err := kvutil.SetDB(ctx, m.db, DefaultKey, state); err != nil {
		t.Fatal(err)
	}

	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m.Current(); s.Authenticated {
		t.Fatalf("session with an expired token must be anonymous")
	}
	if n := fake.nrequests.Load(); n != 0 {
		t.Fatalf("expired tokens must not be validated with the backend; saw %d requests", n)
	}
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuth{
		validTokens: map[string]*backend.User{
			"fresh-token": {ID: "u1", Name: "Test User", Email: "test@example.com"},
		},
	}
	m := newTestManager(t, fake)

	if _, err := m.Login(ctx, "test@example.com", "wrong"); err == nil {
		t.Fatalf("login with a wrong password must fail")
	}
	if s := m.Current(); s.Authenticated {
		t.Fatalf("failed login must leave the session anonymous")
	}

	s, err := m.Login(ctx, "test@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Authenticated || s.Token != "fresh-token" {
		t.Fatalf("login must return an authenticated session")
	}

	// A fresh manager over the same database restores the session.
	m2 := New(m.db, m.client)
	if err := m2.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m2.Current(); !s.Authenticated {
		t.Fatalf("bootstrap after login must restore the session")
	}

	if err := m2.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if s := m2.Current(); s.Authenticated {
		t.Fatalf("logout must leave the session anonymous")
	}

	// Logout removes the saved state, so the next bootstrap stays local.
	before := fake.nrequests.Load()
	if err := m2.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if n := fake.nrequests.Load(); n != before {
		t.Fatalf("bootstrap after logout must not contact the backend")
	}
}
