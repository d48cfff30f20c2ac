// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type Markets struct {
	cmdutil.ClientFlags

	watched bool
}

func (c *Markets) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("markets", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.watched, "watched", false, "when true, only watched coins are listed")
	return fset, cli.CmdFunc(c.run)
}

func (c *Markets) Synopsis() string {
	return "Prints the most recent market listing"
}

func (c *Markets) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.MarketsRequest{
		WatchedOnly: c.watched,
	}
	resp, err := cmdutil.Post[api.MarketsResponse](ctx, &c.ClientFlags, "/markets", req)
	if err != nil {
		return err
	}
	if len(resp.FetchError) > 0 {
		fmt.Fprintf(os.Stderr, "warning: last fetch has failed: %s\n", resp.FetchError)
	}
	if len(resp.Markets) == 0 {
		fmt.Println("no market data is available yet")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Rank\tSymbol\tName\tPrice (%s)\t24h%%\tMarket Cap\t\n", resp.Currency)
	for _, m := range resp.Markets {
		change := ""
		if m.PriceChangePct24h.Valid {
			change = m.PriceChangePct24h.Decimal.StringFixed(2) + "%"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", m.MarketCapRank, m.Symbol, m.Name, m.CurrentPrice.StringFixed(4), change, m.MarketCap.StringFixed(0))
	}
	tw.Flush()
	fmt.Printf("\nAs of %s\n", resp.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}
