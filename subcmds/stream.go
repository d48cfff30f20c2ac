// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path"

	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/gobs"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
	"github.com/gorilla/websocket"
)

type Stream struct {
	cmdutil.ClientFlags

	count int
}

func (c *Stream) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("stream", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.count, "count", 0, "number of snapshots to print before exiting; zero streams forever")
	return fset, cli.CmdFunc(c.run)
}

func (c *Stream) Synopsis() string {
	return "Streams market snapshots as they are fetched"
}

func (c *Stream) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	wsURL := &url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port())),
		Path:   path.Join(c.APIPath, "/ws"),
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	// Unblock the blocking ReadJSON below on a signal.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for n := 0; c.count == 0 || n < c.count; n++ {
		snapshot := new(gobs.MarketSnapshot)
		if err := conn.ReadJSON(snapshot); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("could not read market snapshot: %w", err)
		}
		fmt.Printf("%s: %d markets (%s)\n", snapshot.Timestamp.Format("15:04:05"), len(snapshot.Markets), snapshot.Currency)
		for _, m := range snapshot.Markets {
			change := ""
			if m.PriceChangePct24h.Valid {
				change = " " + m.PriceChangePct24h.Decimal.StringFixed(2) + "%"
			}
			fmt.Printf("  %-12s %s%s\n", m.Symbol, m.CurrentPrice.StringFixed(4), change)
		}
	}
	return nil
}
