// Copyright (c) 2025 BVK Chaitanya

// Package watchlist tracks the set of coins a user watches.
//
// Authenticated users keep their watchlist on the backend service and
// anonymous users keep it in the local database. Both cases are served
// through the same Store interface, so that callers never need to know which
// backing is active.
package watchlist

import (
	"context"
	"slices"
	"sync"

	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvk/coinwatch/syncmap"
)

// Store is the backing for a watchlist.
type Store interface {
	// Load returns all watched coin ids.
	Load(ctx context.Context) ([]string, error)

	// Toggle flips the watched state for a coin and reports whether the coin
	// is watched after the flip.
	Toggle(ctx context.Context, coinID string) (bool, error)

	Add(ctx context.Context, coinID string) error
	Remove(ctx context.Context, coinID string) error
	Clear(ctx context.Context) error
}

// Reconciler keeps an in-memory view of the watchlist in sync with a Store.
//
// Toggle applies the flip to the in-memory view first and reverts it when the
// store call fails, so that readers always see the last response-confirmed or
// optimistic state, never a torn one. Toggles for the same coin are
// serialized; toggles for different coins may run concurrently.
type Reconciler struct {
	store Store

	mu  sync.Mutex
	ids []string

	coinLockMap syncmap.Map[string, *sync.Mutex]
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Refresh replaces the in-memory view with the store content.
func (r *Reconciler) Refresh(ctx context.Context) error {
	ids, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.ids = ids
	r.mu.Unlock()
	return nil
}

// CoinIDs returns the watched coin ids in their stored order.
func (r *Reconciler) CoinIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ids)
}

func (r *Reconciler) Has(coinID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.ids, coinID)
}

// Toggle flips the watched state for a coin. The in-memory view is updated
// optimistically and reverted when the store fails, in which case the error
// is returned for the caller to surface.
func (r *Reconciler) Toggle(ctx context.Context, coinID string) (bool, error) {
	lock, _ := r.coinLockMap.LoadOrStore(coinID, new(sync.Mutex))
	lock.Lock()
	defer lock.Unlock()

	before := r.flip(coinID)

	added, err := r.store.Toggle(ctx, coinID)
	if err != nil {
		r.setMembership(coinID, before)
		return before, err
	}

	// The store response is authoritative.
	r.setMembership(coinID, added)
	return added, nil
}

// Add marks a coin as watched. Adding an already watched coin is a no-op.
func (r *Reconciler) Add(ctx context.Context, coinID string) error {
	lock, _ := r.coinLockMap.LoadOrStore(coinID, new(sync.Mutex))
	lock.Lock()
	defer lock.Unlock()

	if err := r.store.Add(ctx, coinID); err != nil {
		return err
	}
	r.setMembership(coinID, true)
	return nil
}

// Remove drops a coin from the watchlist. Removing an unwatched coin is a
// no-op.
func (r *Reconciler) Remove(ctx context.Context, coinID string) error {
	lock, _ := r.coinLockMap.LoadOrStore(coinID, new(sync.Mutex))
	lock.Lock()
	defer lock.Unlock()

	if err := r.store.Remove(ctx, coinID); err != nil {
		return err
	}
	r.setMembership(coinID, false)
	return nil
}

// Clear drops every watched coin in a single store call. The in-memory view
// is emptied only after the store succeeds.
func (r *Reconciler) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	r.ids = nil
	r.mu.Unlock()
	return nil
}

// flip flips local membership and returns the previous state.
func (r *Reconciler) flip(coinID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.ids, coinID) {
		r.ids = slices.DeleteFunc(r.ids, func(id string) bool { return id == coinID })
		return true
	}
	r.ids = append(r.ids, coinID)
	return false
}

func (r *Reconciler) setMembership(coinID string, watched bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	has := slices.Contains(r.ids, coinID)
	switch {
	case watched && !has:
		r.ids = append(r.ids, coinID)
	case !watched && has:
		r.ids = slices.DeleteFunc(r.ids, func(id string) bool { return id == coinID })
	}
}

// Join filters a market listing down to the watched coins. The listing order
// is preserved. Watched ids with no matching market entry stay in the
// watchlist; they are only absent from the result.
func Join(markets []*coingecko.Market, coinIDs []string) []*coingecko.Market {
	idSet := make(map[string]struct{}, len(coinIDs))
	for _, id := range coinIDs {
		idSet[id] = struct{}{}
	}
	var watched []*coingecko.Market
	for _, m := range markets {
		if _, ok := idSet[m.ID]; ok {
			watched = append(watched, m)
		}
	}
	return watched
}
