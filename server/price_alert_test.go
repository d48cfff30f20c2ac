// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/coingecko"
	"github.com/bvk/coinwatch/gobs"
	"github.com/shopspring/decimal"
)

// recordingMessenger keeps delivered notifications for assertions.
type recordingMessenger struct {
	mu sync.Mutex

	texts []string
}

func (m *recordingMessenger) SendMessage(ctx context.Context, at time.Time, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *recordingMessenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func testMarket(id, name string, changePct float64) *coingecko.Market {
	return &coingecko.Market{
		ID:                id,
		Name:              name,
		CurrentPrice:      decimal.NewFromInt(100),
		PriceChangePct24h: decimal.NewNullDecimal(decimal.NewFromFloat(changePct)),
	}
}

func TestPriceMoveAlerts(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	recorder := new(recordingMessenger)
	s.messenger = recorder

	for _, id := range []string{"bitcoin", "dogecoin"} {
		if _, err := s.doWatchToggle(ctx, &api.WatchToggleRequest{CoinID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.doAlertsSet(ctx, &api.AlertsSetRequest{PriceAlertPct: 5}); err != nil {
		t.Fatal(err)
	}

	snap := &gobs.MarketSnapshot{
		Timestamp: time.Now(),
		Currency:  "usd",
		Markets: []*coingecko.Market{
			testMarket("bitcoin", "Bitcoin", 7.5),
			testMarket("dogecoin", "Dogecoin", -2),
			testMarket("ethereum", "Ethereum", 10),
		},
	}
	// Dogecoin moved below the threshold and ethereum is not watched, so
	// only bitcoin may notify.
	s.alertOnPriceMoves(ctx, snap)
	texts := recorder.Texts()
	if len(texts) != 1 {
		t.Fatalf("wanted one notification, got %v", texts)
	}
	if want := "Bitcoin is up 7.50% over 24h (price 100 usd)"; texts[0] != want {
		t.Fatalf("wanted %q, got %q", want, texts[0])
	}

	// A repeated move inside the freeze interval stays silent.
	s.alertOnPriceMoves(ctx, snap)
	if texts := recorder.Texts(); len(texts) != 1 {
		t.Fatalf("wanted the repeat suppressed, got %v", texts)
	}

	// An expired freeze deadline lets the coin notify again.
	s.mu.Lock()
	s.alertFreezeDeadlineMap["alerts/price-move/bitcoin"] = time.Now().Add(-time.Minute)
	s.mu.Unlock()
	s.alertOnPriceMoves(ctx, snap)
	if texts := recorder.Texts(); len(texts) != 2 {
		t.Fatalf("wanted a second notification after the freeze, got %v", texts)
	}

	// A downward move past the threshold notifies with the down direction.
	s.alertOnPriceMoves(ctx, &gobs.MarketSnapshot{
		Timestamp: time.Now(),
		Currency:  "usd",
		Markets:   []*coingecko.Market{testMarket("dogecoin", "Dogecoin", -12.3)},
	})
	texts = recorder.Texts()
	if len(texts) != 3 {
		t.Fatalf("wanted a downward notification, got %v", texts)
	}
	if want := "Dogecoin is down 12.30% over 24h (price 100 usd)"; texts[2] != want {
		t.Fatalf("wanted %q, got %q", want, texts[2])
	}

	// A zero threshold disables the alerts entirely.
	if _, err := s.doAlertsSet(ctx, &api.AlertsSetRequest{PriceAlertPct: 0}); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	clear(s.alertFreezeDeadlineMap)
	s.mu.Unlock()
	s.alertOnPriceMoves(ctx, snap)
	if texts := recorder.Texts(); len(texts) != 3 {
		t.Fatalf("wanted no notifications with alerts disabled, got %v", texts)
	}
}
