// Copyright (c) 2025 BVK Chaitanya

// Package api defines the request and response types for the coinwatch
// daemon's control endpoints.
package api

import (
	"time"

	"github.com/bvk/coinwatch/coingecko"
)

type StatusRequest struct {
}

type StatusResponse struct {
	Authenticated bool

	UserName  string
	UserEmail string

	NumWatched int

	LastFetchTime  time.Time
	LastFetchError string

	PriceAlertPct float64
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	UserName  string
	UserEmail string
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type RegisterResponse struct {
	UserName  string
	UserEmail string

	// LoggedIn is true when registration also started a session.
	LoggedIn bool
}

type LogoutRequest struct {
}

type LogoutResponse struct {
}

type MarketsRequest struct {
	// WatchedOnly limits the response to watched coins.
	WatchedOnly bool
}

type MarketsResponse struct {
	Timestamp time.Time
	Currency  string

	Markets []*coingecko.Market

	// FetchError holds the failure of the most recent fetch attempt. Markets
	// above may still hold an older, successful snapshot.
	FetchError string
}

type CoinRequest struct {
	ID string

	// ChartDays requests a historical price chart over the given number of
	// days. Zero skips the chart.
	ChartDays int
}

type CoinResponse struct {
	Coin *coingecko.Coin

	Chart *coingecko.MarketChart
}

type RefreshRequest struct {
}

type RefreshResponse struct {
	Timestamp  time.Time
	NumMarkets int
}

type WatchListRequest struct {
}

type WatchListResponse struct {
	CoinIDs []string
}

type WatchToggleRequest struct {
	CoinID string
}

type WatchToggleResponse struct {
	// Added is true when the coin is watched after the toggle.
	Added bool
}

type WatchAddRequest struct {
	CoinID string
}

type WatchAddResponse struct {
}

type WatchRemoveRequest struct {
	CoinID string
}

type WatchRemoveResponse struct {
}

type WatchClearRequest struct {
}

type WatchClearResponse struct {
}

type WatchCheckRequest struct {
	CoinID string
}

type WatchCheckResponse struct {
	Watched bool
}

type WatchImportRequest struct {
	CoinIDs []string
}

type WatchImportResponse struct {
	NumAdded int
}

type WatchStatsRequest struct {
}

type WatchStatsResponse struct {
	Count     int
	UpdatedAt time.Time
}

type AlertsSetRequest struct {
	// PriceAlertPct is the 24h price change percentage beyond which watched
	// coins raise a notification. Zero disables alerts.
	PriceAlertPct float64
}

type AlertsSetResponse struct {
}
