// Copyright (c) 2025 BVK Chaitanya

// Package server implements the coinwatch daemon.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvk/coinwatch/backend"
	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvk/coinwatch/ctxutil"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/kvutil"
	"github.com/bvk/coinwatch/marketdata"
	"github.com/bvk/coinwatch/session"
	"github.com/bvk/coinwatch/telegram"
	"github.com/bvk/coinwatch/watchlist"
	"github.com/bvkgo/kv"
)

const stateKey = "/server/state"

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	gecko *coingecko.Client

	backendClient *backend.Client

	sessionManager *session.Manager

	poller *marketdata.Poller

	telegramClient *telegram.Client

	messenger messenger

	mu sync.Mutex

	reconciler *watchlist.Reconciler

	state *gobs.ServerState

	alertFreezeDeadlineMap map[string]time.Time
}

// New creates the coinwatch daemon. The saved session, if any, is resolved
// before this returns, so callers always observe a settled session.
func New(ctx context.Context, secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if secrets == nil {
		secrets = new(Secrets)
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	gecko, err := coingecko.New(secrets.CoinGecko, nil /* opts */)
	if err != nil {
		return nil, fmt.Errorf("could not create coingecko client: %w", err)
	}

	backendClient, err := backend.New(&backend.Options{Address: opts.BackendAddress})
	if err != nil {
		return nil, fmt.Errorf("could not create backend client: %w", err)
	}

	s := &Server{
		opts:                   *opts,
		db:                     db,
		gecko:                  gecko,
		backendClient:          backendClient,
		sessionManager:         session.New(db, backendClient),
		alertFreezeDeadlineMap: make(map[string]time.Time),
	}
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	state, err := kvutil.GetDB[gobs.ServerState](ctx, db, stateKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load saved server state: %w", err)
		}
		state = new(gobs.ServerState)
	}
	s.state = state

	if err := s.sessionManager.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("could not bootstrap the session: %w", err)
	}

	s.reconciler = watchlist.NewReconciler(s.newStore())
	if err := s.reconciler.Refresh(ctx); err != nil {
		slog.Warn("could not load the watchlist (starting empty)", "err", err)
	}

	popts := &marketdata.Options{
		PollInterval: opts.MarketPollInterval,
		Currency:     opts.Currency,
		Page:         opts.MarketPage,
		PerPage:      opts.MarketPerPage,
	}
	poller, err := marketdata.New(ctx, db, gecko, popts)
	if err != nil {
		return nil, fmt.Errorf("could not create market data poller: %w", err)
	}
	s.poller = poller

	if secrets.Telegram != nil {
		tc, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = tc
		s.messenger = tc
		if err := s.addTelegramCommands(ctx); err != nil {
			return nil, err
		}
	}

	s.cg.Go(func(ctx context.Context) {
		if err := s.watchForPriceMoves(ctx); err != nil && ctx.Err() == nil {
			slog.Error("price move watcher has failed", "err", err)
		}
	})
	return s, nil
}

func (s *Server) Close() error {
	s.cg.Close()
	if s.poller != nil {
		s.poller.Close()
	}
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	if s.backendClient != nil {
		s.backendClient.Close()
	}
	if s.gecko != nil {
		s.gecko.Close()
	}
	return nil
}

// newStore picks the watchlist backing for the current session.
func (s *Server) newStore() watchlist.Store {
	if cur := s.sessionManager.Current(); cur.Authenticated {
		return watchlist.NewRemoteStore(s.backendClient, cur.Token, cur.User.ID)
	}
	return watchlist.NewLocalStore(s.db)
}

// resetWatchlist rebuilds the reconciler after a session change.
func (s *Server) resetWatchlist(ctx context.Context) {
	r := watchlist.NewReconciler(s.newStore())
	if err := r.Refresh(ctx); err != nil {
		slog.Warn("could not load the watchlist (starting empty)", "err", err)
	}

	s.mu.Lock()
	s.reconciler = r
	s.mu.Unlock()
}

func (s *Server) watchlistReconciler() *watchlist.Reconciler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler
}

func (s *Server) saveState(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kvutil.SetDB(ctx, s.db, stateKey, s.state)
}

// messenger delivers user notifications. The telegram client is the only
// production implementation.
type messenger interface {
	SendMessage(ctx context.Context, at time.Time, text string) error
}

// SendMessage notifies the configured telegram users. It is a no-op without
// a telegram configuration.
func (s *Server) SendMessage(ctx context.Context, at time.Time, format string, args ...any) {
	if s.messenger == nil {
		return
	}
	if err := s.messenger.SendMessage(ctx, at, fmt.Sprintf(format, args...)); err != nil {
		slog.Warn("could not send telegram message (ignored)", "err", err)
	}
}
