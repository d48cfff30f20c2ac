// Copyright (c) 2025 BVK Chaitanya

package watch

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type Toggle struct {
	cmdutil.ClientFlags
}

func (c *Toggle) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("toggle", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Toggle) Synopsis() string {
	return "Adds or removes a coin from the watchlist"
}

func (c *Toggle) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (coin-id) argument")
	}
	req := &api.WatchToggleRequest{
		CoinID: args[0],
	}
	resp, err := cmdutil.Post[api.WatchToggleResponse](ctx, &c.ClientFlags, "/watch/toggle", req)
	if err != nil {
		return err
	}
	if resp.Added {
		fmt.Printf("%s is now watched\n", args[0])
	} else {
		fmt.Printf("%s is no longer watched\n", args[0])
	}
	return nil
}
