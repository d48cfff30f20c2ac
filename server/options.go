// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"time"
)

type Options struct {
	// BackendAddress holds the base URL of the account and watchlist service.
	BackendAddress string

	// MarketPollInterval is the time between automatic market listing
	// fetches.
	MarketPollInterval time.Duration

	// Currency, MarketPage and MarketPerPage select the market listing slice
	// that the daemon polls.
	Currency      string
	MarketPage    int
	MarketPerPage int

	// AlertFreezeInterval is the minimum time between repeated price move
	// notifications for the same coin.
	AlertFreezeInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.MarketPollInterval == 0 {
		v.MarketPollInterval = time.Minute
	}
	if v.Currency == "" {
		v.Currency = "usd"
	}
	if v.MarketPage == 0 {
		v.MarketPage = 1
	}
	if v.MarketPerPage == 0 {
		v.MarketPerPage = 50
	}
	if v.AlertFreezeInterval == 0 {
		v.AlertFreezeInterval = time.Hour
	}
}

func (v *Options) Check() error {
	return nil
}
