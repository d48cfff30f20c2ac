// Copyright (c) 2025 BVK Chaitanya

package watchlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/bvkgo/kv"
)

// DefaultKey is the local database key holding the anonymous watchlist as a
// JSON array of coin ids.
const DefaultKey = "/watchlist/local"

// LocalStore keeps the watchlist in the local database. It is used when no
// user is logged-in.
type LocalStore struct {
	db kv.Database

	key string
}

func NewLocalStore(db kv.Database) *LocalStore {
	return &LocalStore{db: db, key: DefaultKey}
}

// Load returns the saved coin ids. A missing or unparseable value is an
// empty watchlist, not an error.
func (s *LocalStore) Load(ctx context.Context) ([]string, error) {
	var ids []string
	load := func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, s.key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		data, err := io.ReadAll(v)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &ids); err != nil {
			slog.Warn("could not parse the saved watchlist (treating as empty)", "err", err)
			ids = nil
		}
		return nil
	}
	if err := kv.WithReader(ctx, s.db, load); err != nil {
		return nil, fmt.Errorf("could not load the saved watchlist: %w", err)
	}
	return ids, nil
}

// save writes the coin ids back. Persistence failures are logged and
// swallowed; the in-memory watchlist stays usable without them.
func (s *LocalStore) save(ctx context.Context, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		slog.Warn("could not marshal the watchlist (not persisted)", "err", err)
		return
	}
	set := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, s.key, bytes.NewReader(data))
	}
	if err := kv.WithReadWriter(ctx, s.db, set); err != nil {
		slog.Warn("could not persist the watchlist (in-memory state continues)", "err", err)
	}
}

func (s *LocalStore) Toggle(ctx context.Context, coinID string) (bool, error) {
	if len(coinID) == 0 {
		return false, fmt.Errorf("coin id cannot be empty")
	}
	ids, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	added := false
	if slices.Contains(ids, coinID) {
		ids = slices.DeleteFunc(ids, func(id string) bool { return id == coinID })
	} else {
		ids = append(ids, coinID)
		added = true
	}
	s.save(ctx, ids)
	return added, nil
}

func (s *LocalStore) Add(ctx context.Context, coinID string) error {
	if len(coinID) == 0 {
		return fmt.Errorf("coin id cannot be empty")
	}
	ids, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, coinID) {
		s.save(ctx, append(ids, coinID))
	}
	return nil
}

func (s *LocalStore) Remove(ctx context.Context, coinID string) error {
	ids, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, coinID) {
		s.save(ctx, slices.DeleteFunc(ids, func(id string) bool { return id == coinID }))
	}
	return nil
}

func (s *LocalStore) Clear(ctx context.Context) error {
	s.save(ctx, nil)
	return nil
}
