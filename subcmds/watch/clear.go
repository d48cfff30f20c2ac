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

type Clear struct {
	cmdutil.ClientFlags
}

func (c *Clear) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("clear", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Clear) Synopsis() string {
	return "Removes all coins from the watchlist"
}

func (c *Clear) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.WatchClearRequest{}
	if _, err := cmdutil.Post[api.WatchClearResponse](ctx, &c.ClientFlags, "/watch/clear", req); err != nil {
		return err
	}
	return nil
}
