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

type Add struct {
	cmdutil.ClientFlags
}

func (c *Add) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Add) Synopsis() string {
	return "Adds one or more coins to the watchlist"
}

func (c *Add) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more (coin-id) arguments")
	}
	for _, id := range args {
		req := &api.WatchAddRequest{
			CoinID: id,
		}
		if _, err := cmdutil.Post[api.WatchAddResponse](ctx, &c.ClientFlags, "/watch/add", req); err != nil {
			return fmt.Errorf("could not add %q: %w", id, err)
		}
	}
	return nil
}
