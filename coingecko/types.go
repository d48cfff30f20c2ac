// Copyright (c) 2025 BVK Chaitanya

package coingecko

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Market holds one entry of the /coins/markets listing.
type Market struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`

	CurrentPrice          decimal.Decimal     `json:"current_price"`
	MarketCap             decimal.Decimal     `json:"market_cap"`
	MarketCapRank         int                 `json:"market_cap_rank"`
	FullyDilutedValuation decimal.NullDecimal `json:"fully_diluted_valuation"`
	TotalVolume           decimal.Decimal     `json:"total_volume"`

	High24h decimal.NullDecimal `json:"high_24h"`
	Low24h  decimal.NullDecimal `json:"low_24h"`

	PriceChange24h    decimal.NullDecimal `json:"price_change_24h"`
	PriceChangePct24h decimal.NullDecimal `json:"price_change_percentage_24h"`

	CirculatingSupply decimal.NullDecimal `json:"circulating_supply"`
	TotalSupply       decimal.NullDecimal `json:"total_supply"`
	MaxSupply         decimal.NullDecimal `json:"max_supply"`

	ATH     decimal.Decimal `json:"ath"`
	ATHDate time.Time       `json:"ath_date"`
	ATL     decimal.Decimal `json:"atl"`
	ATLDate time.Time       `json:"atl_date"`

	LastUpdated time.Time `json:"last_updated"`

	// Percentage fields below are only present when the markets listing is
	// requested with the price_change_percentage parameter.
	PriceChangePct24hInCurrency decimal.NullDecimal `json:"price_change_percentage_24h_in_currency"`
	PriceChangePct7dInCurrency  decimal.NullDecimal `json:"price_change_percentage_7d_in_currency"`
}

// Coin holds the detail view of a single coin from /coins/{id}.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	Description struct {
		English string `json:"en"`
	} `json:"description"`

	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`

	MarketCapRank int `json:"market_cap_rank"`

	MarketData struct {
		CurrentPrice      map[string]decimal.Decimal `json:"current_price"`
		MarketCap         map[string]decimal.Decimal `json:"market_cap"`
		TotalVolume       map[string]decimal.Decimal `json:"total_volume"`
		High24h           map[string]decimal.Decimal `json:"high_24h"`
		Low24h            map[string]decimal.Decimal `json:"low_24h"`
		PriceChangePct24h decimal.NullDecimal        `json:"price_change_percentage_24h"`
		PriceChangePct7d  decimal.NullDecimal        `json:"price_change_percentage_7d"`
		PriceChangePct30d decimal.NullDecimal        `json:"price_change_percentage_30d"`
	} `json:"market_data"`

	LastUpdated time.Time `json:"last_updated"`
}

// MarketChart holds historical series from /coins/{id}/market_chart. Each
// point is a [unix-millis, value] pair.
type MarketChart struct {
	Prices       [][2]decimal.Decimal `json:"prices"`
	MarketCaps   [][2]decimal.Decimal `json:"market_caps"`
	TotalVolumes [][2]decimal.Decimal `json:"total_volumes"`
}

// StatusError is returned when the api endpoint responds with a non-2xx
// status code.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status code %d", e.StatusCode)
	}
	return fmt.Sprintf("http status code %d: %s", e.StatusCode, e.Message)
}
