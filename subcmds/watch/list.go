// Copyright (c) 2025 BVK Chaitanya

// Package watch implements the watchlist management subcommands.
package watch

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type List struct {
	cmdutil.ClientFlags
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *List) Synopsis() string {
	return "Prints the watched coin ids"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.WatchListRequest{}
	resp, err := cmdutil.Post[api.WatchListResponse](ctx, &c.ClientFlags, "/watch/list", req)
	if err != nil {
		return err
	}
	for _, id := range resp.CoinIDs {
		fmt.Println(id)
	}
	return nil
}
