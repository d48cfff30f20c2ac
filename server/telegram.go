// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bvk/coinwatch/watchlist"
	"github.com/visvasity/cli"
)

func (s *Server) addTelegramCommands(ctx context.Context) error {
	cmds := []struct {
		name, purpose string
		handler       cli.CmdFunc
	}{
		{"status", "Prints the session and fetch status", s.statusTelegramCmd},
		{"watchlist", "Prints watched coins with their prices", s.watchlistTelegramCmd},
	}
	for _, c := range cmds {
		if err := s.telegramClient.AddCommand(ctx, c.name, c.purpose, c.handler); err != nil {
			return fmt.Errorf("could not add telegram command %q: %w", c.name, err)
		}
	}
	return nil
}

func (s *Server) statusTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	if cur := s.sessionManager.Current(); cur.Authenticated {
		fmt.Fprintf(stdout, "Logged-in as %s <%s>\n", cur.User.Name, cur.User.Email)
	} else {
		fmt.Fprintf(stdout, "Anonymous session\n")
	}

	snap, lastErr := s.poller.Last()
	if snap != nil {
		fmt.Fprintf(stdout, "Last fetch: %s (%d coins)\n", snap.Timestamp.Format("2006-01-02 15:04:05"), len(snap.Markets))
	}
	if lastErr != nil {
		fmt.Fprintf(stdout, "Fetch error: %v\n", lastErr)
	}
	fmt.Fprintf(stdout, "Watched coins: %d\n", len(s.watchlistReconciler().CoinIDs()))
	return nil
}

func (s *Server) watchlistTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	snap, _ := s.poller.Last()
	ids := s.watchlistReconciler().CoinIDs()
	if len(ids) == 0 {
		fmt.Fprintln(stdout, "watchlist is empty")
		return nil
	}
	if snap == nil {
		fmt.Fprintln(stdout, strings.Join(ids, "\n"))
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 8, 1, ' ', 0)
	for _, m := range watchlist.Join(snap.Markets, ids) {
		change := "-"
		if m.PriceChangePct24h.Valid {
			change = m.PriceChangePct24h.Decimal.StringFixed(2) + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Symbol, m.CurrentPrice, change)
	}
	return tw.Flush()
}
