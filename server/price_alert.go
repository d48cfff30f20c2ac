// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"time"

	"github.com/bvk/coinwatch/gobs"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

func (s *Server) watchForPriceMoves(ctx context.Context) error {
	updates, err := s.poller.Subscribe(1)
	if err != nil {
		return err
	}
	defer updates.Close()

	updatesCh, err := topic.ReceiveCh(updates)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case snap := <-updatesCh:
			s.alertOnPriceMoves(ctx, snap)
		}
	}
}

func (s *Server) alertOnPriceMoves(ctx context.Context, snap *gobs.MarketSnapshot) {
	s.mu.Lock()
	threshold := s.state.PriceAlertPct
	s.mu.Unlock()
	if threshold <= 0 {
		return
	}

	watched := s.watchlistReconciler().CoinIDs()
	idSet := make(map[string]struct{}, len(watched))
	for _, id := range watched {
		idSet[id] = struct{}{}
	}

	now := time.Now()
	for _, m := range snap.Markets {
		if _, ok := idSet[m.ID]; !ok {
			continue
		}
		if !m.PriceChangePct24h.Valid {
			continue
		}
		pct := m.PriceChangePct24h.Decimal
		if pct.Abs().LessThan(decimal.NewFromFloat(threshold)) {
			continue
		}

		key := "alerts/price-move/" + m.ID
		s.mu.Lock()
		deadline, frozen := s.alertFreezeDeadlineMap[key]
		if frozen && now.Before(deadline) {
			s.mu.Unlock()
			continue
		}
		s.alertFreezeDeadlineMap[key] = now.Add(s.opts.AlertFreezeInterval)
		s.mu.Unlock()

		direction := "up"
		if pct.IsNegative() {
			direction = "down"
		}
		s.SendMessage(ctx, now, "%s is %s %s%% over 24h (price %s %s)",
			m.Name, direction, pct.Abs().StringFixed(2), m.CurrentPrice, snap.Currency)
	}
}
