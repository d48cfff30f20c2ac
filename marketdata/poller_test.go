// Copyright (c) 2025 BVK Chaitanya

package marketdata

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/kvutil"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/visvasity/topic"
)

type fakeSource struct {
	mu      sync.Mutex
	markets []*coingecko.Market
	broken  bool
	nfetch  int
}

func (f *fakeSource) ListMarkets(ctx context.Context, currency string, page, perPage int) ([]*coingecko.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nfetch++
	if f.broken {
		return nil, os.ErrDeadlineExceeded
	}
	return f.markets, nil
}

func (f *fakeSource) setBroken(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = v
}

func TestPoller(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	source := &fakeSource{
		markets: []*coingecko.Market{{ID: "bitcoin"}, {ID: "ethereum"}},
	}

	p, err := New(ctx, db, source, &Options{PollInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	// The first fetch happens right away; wait through a subscription.
	r, err := p.Subscribe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ch, err := topic.ReceiveCh(r)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case snap := <-ch:
		if len(snap.Markets) != 2 {
			t.Fatalf("wanted 2 markets, got %d", len(snap.Markets))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the first snapshot")
	}

	// The snapshot is also saved for the next restart.
	saved, err := kvutil.GetDB[gobs.MarketSnapshot](ctx, db, SnapshotKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Markets) != 2 {
		t.Fatalf("wanted 2 saved markets, got %d", len(saved.Markets))
	}
}

func TestPollerKeepsLastOnFailure(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	source := &fakeSource{
		markets: []*coingecko.Market{{ID: "bitcoin"}},
	}

	p, err := New(ctx, db, source, &Options{PollInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	source.setBroken(true)
	if err := p.Refresh(ctx); err == nil {
		t.Fatalf("refresh against a broken source must fail")
	}

	snap, lastErr := p.Last()
	if snap == nil || len(snap.Markets) != 1 {
		t.Fatalf("a failed fetch must not drop the last good snapshot")
	}
	if lastErr == nil {
		t.Fatalf("a failed fetch must be visible through Last")
	}

	// A successful refresh clears the failure.
	source.setBroken(false)
	if err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, lastErr := p.Last(); lastErr != nil {
		t.Fatalf("a successful fetch must clear the last error, got %v", lastErr)
	}
}

func TestPollerServesSavedSnapshot(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	snap := &gobs.MarketSnapshot{
		Timestamp: time.Now(),
		Currency:  "usd",
		Markets:   []*coingecko.Market{{ID: "solana"}},
	}
	if err := kvutil.SetDB(ctx, db, SnapshotKey, snap); err != nil {
		t.Fatal(err)
	}

	source := &fakeSource{broken: true}
	p, err := New(ctx, db, source, &Options{PollInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	last, _ := p.Last()
	if last == nil || len(last.Markets) != 1 || last.Markets[0].ID != "solana" {
		t.Fatalf("poller must serve the saved snapshot before the first fetch")
	}
}
