// Copyright (c) 2025 BVK Chaitanya

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeService(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/validateToken", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
			return
		}
		json.NewEncoder(w).Encode(&ValidateTokenResponse{
			User: &User{ID: "u1", Name: "Test User", Email: "test@example.com"},
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		req := new(LoginRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(&LoginResponse{
			Token: "good-token",
			User:  &User{ID: "u1", Name: "Test User", Email: req.Email},
		})
	})
	mux.HandleFunc("POST /watchlist/toggle", func(w http.ResponseWriter, r *http.Request) {
		req := new(WatchlistToggleRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(&WatchlistToggleResponse{Added: req.CoinID == "bitcoin"})
	})
	mux.HandleFunc("GET /watchlist/user/u1/coins", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&WatchlistCoinsResponse{CoinIDs: []string{"bitcoin", "ethereum"}})
	})
	mux.HandleFunc("GET /watchlist/check/u1/{coin}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&WatchlistCheckResponse{InWatchlist: r.PathValue("coin") == "bitcoin"})
	})
	mux.HandleFunc("GET /watchlist/user/u1/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&WatchlistStatsResponse{Count: 2})
	})

	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	fake := newFakeService(t)

	c, err := New(&Options{Address: fake.URL})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	user, err := c.ValidateToken(ctx, "good-token")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u1" {
		t.Fatalf("wanted user u1, got %q", user.ID)
	}

	if _, err := c.ValidateToken(ctx, "bad-token"); err == nil {
		t.Fatalf("validate with a bad token must fail")
	} else {
		herr := new(Error)
		if !errors.As(err, &herr) {
			t.Fatalf("wanted an *Error, got %T: %v", err, err)
		}
		if herr.StatusCode != http.StatusUnauthorized {
			t.Fatalf("wanted status code 401, got %d", herr.StatusCode)
		}
		if herr.Message != "invalid token" {
			t.Fatalf("wanted the service message, got %q", herr.Message)
		}
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	fake := newFakeService(t)

	c, err := New(&Options{Address: fake.URL})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resp, err := c.Login(ctx, "test@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "good-token" {
		t.Fatalf("wanted good-token, got %q", resp.Token)
	}

	if _, err := c.Login(ctx, "test@example.com", "wrong"); err == nil {
		t.Fatalf("login with wrong password must fail")
	}
}

func TestWatchlist(t *testing.T) {
	ctx := context.Background()
	fake := newFakeService(t)

	c, err := New(&Options{Address: fake.URL})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ids, err := c.WatchlistCoinIDs(ctx, "good-token", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("wanted 2 coin ids, got %v", ids)
	}

	added, err := c.WatchlistToggle(ctx, "good-token", "u1", "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatalf("toggle for bitcoin must report added")
	}

	added, err = c.WatchlistToggle(ctx, "good-token", "u1", "ethereum")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatalf("toggle for ethereum must report removed")
	}

	watched, err := c.WatchlistCheck(ctx, "good-token", "u1", "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if !watched {
		t.Fatalf("check for bitcoin must report watched")
	}

	stats, err := c.WatchlistStats(ctx, "good-token", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 2 {
		t.Fatalf("wanted stats count 2, got %d", stats.Count)
	}
}
