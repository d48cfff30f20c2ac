// Copyright (c) 2025 BVK Chaitanya

package watchlist

import (
	"context"

	"github.com/bvk/coinwatch/backend"
)

// RemoteStore keeps the watchlist on the backend service for a logged-in
// user.
type RemoteStore struct {
	client *backend.Client

	token  string
	userID string
}

func NewRemoteStore(client *backend.Client, token, userID string) *RemoteStore {
	return &RemoteStore{client: client, token: token, userID: userID}
}

func (s *RemoteStore) Load(ctx context.Context) ([]string, error) {
	return s.client.WatchlistCoinIDs(ctx, s.token, s.userID)
}

func (s *RemoteStore) Toggle(ctx context.Context, coinID string) (bool, error) {
	return s.client.WatchlistToggle(ctx, s.token, s.userID, coinID)
}

func (s *RemoteStore) Add(ctx context.Context, coinID string) error {
	return s.client.WatchlistAdd(ctx, s.token, s.userID, coinID)
}

func (s *RemoteStore) Remove(ctx context.Context, coinID string) error {
	return s.client.WatchlistRemove(ctx, s.token, s.userID, coinID)
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	return s.client.WatchlistClear(ctx, s.token, s.userID)
}
