// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Status) Synopsis() string {
	return "Prints session and market data summary"
}

func (c *Status) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.StatusRequest{}
	resp, err := cmdutil.Post[api.StatusResponse](ctx, &c.ClientFlags, "/status", req)
	if err != nil {
		return err
	}

	if resp.Authenticated {
		fmt.Printf("Session: %s <%s>\n", resp.UserName, resp.UserEmail)
	} else {
		fmt.Printf("Session: anonymous\n")
	}
	fmt.Printf("Watched Coins: %d\n", resp.NumWatched)
	if !resp.LastFetchTime.IsZero() {
		fmt.Printf("Last Fetch: %s\n", resp.LastFetchTime.Format("2006-01-02 15:04:05"))
	}
	if len(resp.LastFetchError) > 0 {
		fmt.Printf("Last Fetch Error: %s\n", resp.LastFetchError)
	}
	if resp.PriceAlertPct != 0 {
		fmt.Printf("Price Alert: %.2f%%\n", resp.PriceAlertPct)
	}
	return nil
}
