// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/backend"
	"github.com/bvkgo/kv/kvmemdb"
)

// fakeBackend is an in-memory account and watchlist service.
type fakeBackend struct {
	mu sync.Mutex

	watchlists map[string][]string
}

func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	f := &fakeBackend{watchlists: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
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
			Token: "test-token",
			User:  &backend.User{ID: "u1", Name: "Test User", Email: req.Email},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/auth/validateToken", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
			return
		}
		json.NewEncoder(w).Encode(&backend.ValidateTokenResponse{
			User: &backend.User{ID: "u1", Name: "Test User", Email: "test@example.com"},
		})
	})
	mux.HandleFunc("GET /watchlist/user/u1/coins", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(&backend.WatchlistCoinsResponse{CoinIDs: f.watchlists["u1"]})
	})
	mux.HandleFunc("POST /watchlist/toggle", func(w http.ResponseWriter, r *http.Request) {
		req := new(backend.WatchlistToggleRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		ids := f.watchlists[req.UserID]
		added := false
		if slices.Contains(ids, req.CoinID) {
			ids = slices.DeleteFunc(ids, func(id string) bool { return id == req.CoinID })
		} else {
			ids = append(ids, req.CoinID)
			added = true
		}
		f.watchlists[req.UserID] = ids
		json.NewEncoder(w).Encode(&backend.WatchlistToggleResponse{Added: added})
	})

	mux.HandleFunc("POST /watchlist/add", func(w http.ResponseWriter, r *http.Request) {
		req := new(backend.WatchlistAddRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if !slices.Contains(f.watchlists[req.UserID], req.CoinID) {
			f.watchlists[req.UserID] = append(f.watchlists[req.UserID], req.CoinID)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /watchlist/remove/{user}/{coin}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		user, coin := r.PathValue("user"), r.PathValue("coin")
		f.watchlists[user] = slices.DeleteFunc(f.watchlists[user], func(id string) bool { return id == coin })
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /watchlist/user/{user}/clear", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.watchlists[r.PathValue("user")] = nil
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /watchlist/check/{user}/{coin}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		watched := slices.Contains(f.watchlists[r.PathValue("user")], r.PathValue("coin"))
		json.NewEncoder(w).Encode(&backend.WatchlistCheckResponse{InWatchlist: watched})
	})

	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ctx := context.Background()
	fake := newFakeBackend(t)

	opts := &Options{
		BackendAddress:     fake.URL,
		MarketPollInterval: time.Hour,
	}
	s, err := New(ctx, nil /* secrets */, kvmemdb.New(), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServerStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	resp, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Authenticated {
		t.Fatalf("a fresh daemon must start anonymously")
	}
	if resp.NumWatched != 0 {
		t.Fatalf("a fresh daemon must have an empty watchlist")
	}
}

func TestServerAnonymousWatchlist(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	resp, err := s.doWatchToggle(ctx, &api.WatchToggleRequest{CoinID: "bitcoin"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Added {
		t.Fatalf("first toggle must add the coin")
	}

	list, err := s.doWatchList(ctx, &api.WatchListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.CoinIDs) != 1 || list.CoinIDs[0] != "bitcoin" {
		t.Fatalf("wanted [bitcoin], got %v", list.CoinIDs)
	}
}

func TestServerWatchlistEditing(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	// Anonymous edits land on the local store.
	if _, err := s.doWatchAdd(ctx, &api.WatchAddRequest{CoinID: "bitcoin"}); err != nil {
		t.Fatal(err)
	}
	check, err := s.doWatchCheck(ctx, &api.WatchCheckRequest{CoinID: "bitcoin"})
	if err != nil {
		t.Fatal(err)
	}
	if !check.Watched {
		t.Fatalf("bitcoin must be watched after an add")
	}
	if _, err := s.doWatchRemove(ctx, &api.WatchRemoveRequest{CoinID: "bitcoin"}); err != nil {
		t.Fatal(err)
	}
	check, err = s.doWatchCheck(ctx, &api.WatchCheckRequest{CoinID: "bitcoin"})
	if err != nil {
		t.Fatal(err)
	}
	if check.Watched {
		t.Fatalf("bitcoin must not be watched after a remove")
	}

	// Logged-in edits land on the backend service.
	if _, err := s.doLogin(ctx, &api.LoginRequest{Email: "test@example.com", Password: "secret"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"bitcoin", "ethereum"} {
		if _, err := s.doWatchAdd(ctx, &api.WatchAddRequest{CoinID: id}); err != nil {
			t.Fatal(err)
		}
	}
	check, err = s.doWatchCheck(ctx, &api.WatchCheckRequest{CoinID: "ethereum"})
	if err != nil {
		t.Fatal(err)
	}
	if !check.Watched {
		t.Fatalf("ethereum must be watched on the backend after an add")
	}
	if _, err := s.doWatchRemove(ctx, &api.WatchRemoveRequest{CoinID: "ethereum"}); err != nil {
		t.Fatal(err)
	}
	list, err := s.doWatchList(ctx, &api.WatchListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.CoinIDs) != 1 || list.CoinIDs[0] != "bitcoin" {
		t.Fatalf("wanted [bitcoin], got %v", list.CoinIDs)
	}

	// Clear drops every watched coin in one call.
	if _, err := s.doWatchClear(ctx, &api.WatchClearRequest{}); err != nil {
		t.Fatal(err)
	}
	list, err = s.doWatchList(ctx, &api.WatchListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.CoinIDs) != 0 {
		t.Fatalf("wanted an empty watchlist after clear, got %v", list.CoinIDs)
	}
	check, err = s.doWatchCheck(ctx, &api.WatchCheckRequest{CoinID: "bitcoin"})
	if err != nil {
		t.Fatal(err)
	}
	if check.Watched {
		t.Fatalf("bitcoin must not be watched after a clear")
	}
}

func TestServerLoginLogout(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	// Anonymous coins live in the local database.
	if _, err := s.doWatchToggle(ctx, &api.WatchToggleRequest{CoinID: "dogecoin"}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.doLogin(ctx, &api.LoginRequest{Email: "test@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("login with a wrong password must fail")
	}

	login, err := s.doLogin(ctx, &api.LoginRequest{Email: "test@example.com", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if login.UserEmail != "test@example.com" {
		t.Fatalf("wanted the logged-in user email, got %q", login.UserEmail)
	}

	// The logged-in watchlist starts from the backend, not the local one.
	list, err := s.doWatchList(ctx, &api.WatchListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.CoinIDs) != 0 {
		t.Fatalf("wanted an empty backend watchlist, got %v", list.CoinIDs)
	}

	// Toggles for the logged-in user land on the backend.
	if _, err := s.doWatchToggle(ctx, &api.WatchToggleRequest{CoinID: "bitcoin"}); err != nil {
		t.Fatal(err)
	}

	// Gated endpoints work only while logged-in.
	if _, err := s.doWatchImport(ctx, &api.WatchImportRequest{CoinIDs: []string{"dogecoin"}}); err == nil {
		// The fake service has no bulk-add endpoint, so any success means the
		// gate did not consult the backend at all.
		t.Fatalf("import against a fake without bulk-add must fail")
	}

	if _, err := s.doLogout(ctx, &api.LogoutRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.doWatchImport(ctx, &api.WatchImportRequest{CoinIDs: []string{"dogecoin"}}); err == nil {
		t.Fatalf("import without a logged-in user must fail")
	}

	// The anonymous watchlist is intact after the round trip.
	list, err = s.doWatchList(ctx, &api.WatchListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.CoinIDs) != 1 || list.CoinIDs[0] != "dogecoin" {
		t.Fatalf("wanted [dogecoin], got %v", list.CoinIDs)
	}
}
