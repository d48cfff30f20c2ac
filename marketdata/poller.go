// Copyright (c) 2025 BVK Chaitanya

// Package marketdata polls the coingecko api for the market listing.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvk/coinwatch/ctxutil"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/kvutil"
	"github.com/bvkgo/kv"
	"github.com/visvasity/topic"
)

// SnapshotKey is the local database key holding the last fetched listing.
const SnapshotKey = "/markets/snapshot"

// Source fetches one page of the market listing.
type Source interface {
	ListMarkets(ctx context.Context, currency string, page, perPage int) ([]*coingecko.Market, error)
}

type Options struct {
	// PollInterval is the time between automatic fetches.
	PollInterval time.Duration

	Currency string
	Page     int
	PerPage  int
}

func (v *Options) setDefaults() {
	if v.PollInterval == 0 {
		v.PollInterval = time.Minute
	}
	if v.Currency == "" {
		v.Currency = "usd"
	}
	if v.Page == 0 {
		v.Page = 1
	}
	if v.PerPage == 0 {
		v.PerPage = 50
	}
}

// Poller fetches the market listing on a fixed interval and publishes each
// snapshot to subscribers. A failed fetch never overwrites the last good
// snapshot; it is recorded separately and retried on the next tick or through
// Refresh.
type Poller struct {
	cg ctxutil.CloseGroup

	opts Options

	source Source

	db kv.Database

	topic *topic.Topic[*gobs.MarketSnapshot]

	refreshCh chan chan error

	mu      sync.Mutex
	last    *gobs.MarketSnapshot
	lastErr error
}

// New creates a poller over the given source. The last snapshot saved in the
// database, if any, is served until the first fetch completes.
func New(ctx context.Context, db kv.Database, source Source, opts *Options) (*Poller, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	p := &Poller{
		opts:      *opts,
		source:    source,
		db:        db,
		topic:     topic.New[*gobs.MarketSnapshot](),
		refreshCh: make(chan chan error),
	}

	snap, err := kvutil.GetDB[gobs.MarketSnapshot](ctx, db, SnapshotKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load saved market snapshot: %w", err)
		}
	} else {
		p.last = snap
	}

	p.cg.Go(p.goPoll)
	return p, nil
}

func (p *Poller) Close() error {
	p.cg.Close()
	return nil
}

// Last returns the most recent snapshot and the error from the most recent
// fetch attempt. Both can be set when a fetch failed after an earlier
// success.
func (p *Poller) Last() (*gobs.MarketSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.lastErr
}

// Subscribe returns a receiver for future snapshots. The current snapshot, if
// any, is delivered first.
func (p *Poller) Subscribe(limit int) (*topic.Receiver[*gobs.MarketSnapshot], error) {
	return topic.Subscribe(p.topic, limit, true /* includeRecent */)
}

// Refresh fetches immediately, resetting the poll timer, and returns the
// fetch result.
func (p *Poller) Refresh(ctx context.Context) error {
	errCh := make(chan error, 1)
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-p.cg.Context().Done():
		return context.Cause(p.cg.Context())
	case p.refreshCh <- errCh:
	}
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case err := <-errCh:
		return err
	}
}

func (p *Poller) goPoll(ctx context.Context) {
	if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("could not fetch initial market listing (will retry)", "err", err)
	}

	timer := time.NewTimer(p.opts.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("could not fetch market listing (will retry)", "err", err)
			}
			timer.Reset(p.opts.PollInterval)

		case errCh := <-p.refreshCh:
			errCh <- p.fetch(ctx)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.opts.PollInterval)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) error {
	markets, err := p.source.ListMarkets(ctx, p.opts.Currency, p.opts.Page, p.opts.PerPage)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	snap := &gobs.MarketSnapshot{
		Timestamp: time.Now(),
		Currency:  p.opts.Currency,
		Page:      p.opts.Page,
		PerPage:   p.opts.PerPage,
		Markets:   markets,
	}

	p.mu.Lock()
	p.last = snap
	p.lastErr = nil
	p.mu.Unlock()

	if err := kvutil.SetDB(ctx, p.db, SnapshotKey, snap); err != nil {
		slog.Warn("could not save market snapshot (ignored)", "err", err)
	}

	p.topic.Send(snap)
	return nil
}
