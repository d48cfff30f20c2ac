// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type Coin struct {
	cmdutil.ClientFlags

	days int
}

func (c *Coin) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("coin", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.days, "days", 0, "when non-zero, includes daily price history for this many days")
	return fset, cli.CmdFunc(c.run)
}

func (c *Coin) Synopsis() string {
	return "Prints detail view of a single coin"
}

func (c *Coin) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (coin-id) argument")
	}
	req := &api.CoinRequest{
		ID:        args[0],
		ChartDays: c.days,
	}
	resp, err := cmdutil.Post[api.CoinResponse](ctx, &c.ClientFlags, "/coin", req)
	if err != nil {
		return err
	}

	coin := resp.Coin
	fmt.Printf("Name: %s (%s)\n", coin.Name, strings.ToUpper(coin.Symbol))
	fmt.Printf("Rank: %d\n", coin.MarketCapRank)
	if p, ok := coin.MarketData.CurrentPrice["usd"]; ok {
		fmt.Printf("Price: %s usd\n", p.StringFixed(4))
	}
	if v, ok := coin.MarketData.MarketCap["usd"]; ok {
		fmt.Printf("Market Cap: %s usd\n", v.StringFixed(0))
	}
	if v := coin.MarketData.PriceChangePct24h; v.Valid {
		fmt.Printf("24h Change: %s%%\n", v.Decimal.StringFixed(2))
	}
	if v := coin.MarketData.PriceChangePct7d; v.Valid {
		fmt.Printf("7d Change: %s%%\n", v.Decimal.StringFixed(2))
	}
	if desc := coin.Description.English; len(desc) > 0 {
		if i := strings.IndexRune(desc, '\n'); i > 0 {
			desc = desc[:i]
		}
		fmt.Printf("\n%s\n", desc)
	}

	if resp.Chart != nil && len(resp.Chart.Prices) > 0 {
		fmt.Println()
		for _, p := range resp.Chart.Prices {
			ts := time.UnixMilli(p[0].IntPart())
			fmt.Printf("%s %s\n", ts.Format("2006-01-02"), p[1].StringFixed(4))
		}
	}
	return nil
}
