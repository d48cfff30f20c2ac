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

type Remove struct {
	cmdutil.ClientFlags
}

func (c *Remove) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("remove", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Remove) Synopsis() string {
	return "Removes one or more coins from the watchlist"
}

func (c *Remove) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more (coin-id) arguments")
	}
	for _, id := range args {
		req := &api.WatchRemoveRequest{
			CoinID: id,
		}
		if _, err := cmdutil.Post[api.WatchRemoveResponse](ctx, &c.ClientFlags, "/watch/remove", req); err != nil {
			return fmt.Errorf("could not remove %q: %w", id, err)
		}
	}
	return nil
}
