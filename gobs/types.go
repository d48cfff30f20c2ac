// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/bvk/coinwatch/coingecko"
)

type KeyValue struct {
	Key   string
	Value []byte
}

// SessionState holds the authenticated user session saved in the local
// database. A missing value means the daemon runs anonymously.
type SessionState struct {
	Token string

	UserID    string
	UserName  string
	UserEmail string

	CreatedAt time.Time
}

// MarketSnapshot holds the most recent market listing fetched from the
// coingecko api, saved so that a restarted daemon can serve data before the
// first poll completes.
type MarketSnapshot struct {
	Timestamp time.Time

	Currency string
	Page     int
	PerPage  int

	Markets []*coingecko.Market
}

type TelegramState struct {
	UserChatIDMap map[string]int64
}

type ServerState struct {
	// PriceAlertPct holds the 24h price change percentage (absolute value)
	// beyond which watched coins raise a notification. Zero disables alerts.
	PriceAlertPct float64
}
