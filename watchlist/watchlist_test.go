// Copyright (c) 2025 BVK Chaitanya

package watchlist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := NewLocalStore(db)

	// Nothing saved yet means an empty watchlist.
	ids, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("wanted an empty watchlist, got %v", ids)
	}

	added, err := s.Toggle(ctx, "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatalf("first toggle must add the coin")
	}
	if err := s.Add(ctx, "ethereum"); err != nil {
		t.Fatal(err)
	}

	ids, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "ethereum" {
		t.Fatalf("wanted [bitcoin ethereum], got %v", ids)
	}

	// The value is saved as a json array.
	read := func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, DefaultKey)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(v)
		if err != nil {
			return err
		}
		if want := `["bitcoin","ethereum"]`; string(data) != want {
			return fmt.Errorf("wanted %s, got %s", want, data)
		}
		return nil
	}
	if err := kv.WithReader(ctx, db, read); err != nil {
		t.Fatal(err)
	}

	added, err = s.Toggle(ctx, "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatalf("second toggle must remove the coin")
	}

	if err := s.Remove(ctx, "ethereum"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, "ethereum"); err != nil {
		t.Fatal(err)
	}
	ids, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("wanted an empty watchlist after remove, got %v", ids)
	}

	if err := s.Add(ctx, "solana"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	ids, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("wanted an empty watchlist after clear, got %v", ids)
	}
}

func TestLocalStoreMalformedValue(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := NewLocalStore(db)

	write := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, DefaultKey, bytes.NewReader([]byte(`{not json`)))
	}
	if err := kv.WithReadWriter(ctx, db, write); err != nil {
		t.Fatal(err)
	}

	// Garbage in the database reads back as an empty watchlist.
	ids, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("wanted an empty watchlist, got %v", ids)
	}

	// And the next toggle replaces the garbage.
	if _, err := s.Toggle(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	ids, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "bitcoin" {
		t.Fatalf("wanted [bitcoin], got %v", ids)
	}
}

// flakyStore fails every call until healed.
type flakyStore struct {
	mu     sync.Mutex
	ids    []string
	broken bool

	ncalls int
}

func (f *flakyStore) Load(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return nil, os.ErrDeadlineExceeded
	}
	return append([]string(nil), f.ids...), nil
}

func (f *flakyStore) Toggle(ctx context.Context, coinID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ncalls++
	if f.broken {
		return false, os.ErrDeadlineExceeded
	}
	for i, id := range f.ids {
		if id == coinID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return false, nil
		}
	}
	f.ids = append(f.ids, coinID)
	return true, nil
}

func (f *flakyStore) Add(ctx context.Context, coinID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ncalls++
	if f.broken {
		return os.ErrDeadlineExceeded
	}
	for _, id := range f.ids {
		if id == coinID {
			return nil
		}
	}
	f.ids = append(f.ids, coinID)
	return nil
}

func (f *flakyStore) Remove(ctx context.Context, coinID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ncalls++
	if f.broken {
		return os.ErrDeadlineExceeded
	}
	for i, id := range f.ids {
		if id == coinID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *flakyStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ncalls++
	if f.broken {
		return os.ErrDeadlineExceeded
	}
	f.ids = nil
	return nil
}

func TestReconcilerRevertsFailedToggle(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{ids: []string{"bitcoin"}}
	r := NewReconciler(store)
	if err := r.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	store.broken = true
	if _, err := r.Toggle(ctx, "ethereum"); err == nil {
		t.Fatalf("toggle against a broken store must fail")
	}
	if r.Has("ethereum") {
		t.Fatalf("failed toggle must revert the optimistic add")
	}
	if _, err := r.Toggle(ctx, "bitcoin"); err == nil {
		t.Fatalf("toggle against a broken store must fail")
	}
	if !r.Has("bitcoin") {
		t.Fatalf("failed toggle must revert the optimistic remove")
	}

	store.broken = false
	added, err := r.Toggle(ctx, "ethereum")
	if err != nil {
		t.Fatal(err)
	}
	if !added || !r.Has("ethereum") {
		t.Fatalf("toggle against a healthy store must stick")
	}
}

func TestReconcilerAddRemoveClear(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{}
	r := NewReconciler(store)

	if err := r.Add(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(ctx, "ethereum"); err != nil {
		t.Fatal(err)
	}
	if !r.Has("bitcoin") || !r.Has("ethereum") {
		t.Fatalf("added coins must be watched, got %v", r.CoinIDs())
	}

	if err := r.Remove(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	if r.Has("bitcoin") {
		t.Fatalf("removed coin must not be watched")
	}
	if len(store.ids) != 1 || store.ids[0] != "ethereum" {
		t.Fatalf("store and view disagree: %v", store.ids)
	}

	// A failed clear keeps the view intact.
	store.broken = true
	if err := r.Clear(ctx); err == nil {
		t.Fatalf("clear against a broken store must fail")
	}
	if !r.Has("ethereum") {
		t.Fatalf("failed clear must keep the watchlist")
	}

	store.broken = false
	if err := r.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if len(r.CoinIDs()) != 0 || len(store.ids) != 0 {
		t.Fatalf("clear must empty both the store and the view")
	}
}

func TestReconcilerSerializesPerCoin(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{}
	r := NewReconciler(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Toggle(ctx, "bitcoin")
		}()
	}
	wg.Wait()

	// An even number of serialized toggles always lands back at removed.
	if store.ncalls != 20 {
		t.Fatalf("wanted 20 store calls, got %d", store.ncalls)
	}
	if r.Has("bitcoin") {
		t.Fatalf("an even number of toggles must end with the coin removed")
	}
	if len(store.ids) != 0 {
		t.Fatalf("store and view disagree: %v", store.ids)
	}
}

func TestJoin(t *testing.T) {
	markets := []*coingecko.Market{
		{ID: "bitcoin"},
		{ID: "ethereum"},
		{ID: "solana"},
		{ID: "cardano"},
	}

	watched := Join(markets, []string{"solana", "bitcoin", "dogecoin"})
	if len(watched) != 2 {
		t.Fatalf("wanted 2 matches, got %d", len(watched))
	}

	// Listing order wins over watchlist order.
	if watched[0].ID != "bitcoin" || watched[1].ID != "solana" {
		t.Fatalf("join must preserve the listing order, got %v", []string{watched[0].ID, watched[1].ID})
	}

	if len(Join(nil, []string{"bitcoin"})) != 0 {
		t.Fatalf("join with no markets must be empty")
	}
	if len(Join(markets, nil)) != 0 {
		t.Fatalf("join with no watchlist must be empty")
	}
}
