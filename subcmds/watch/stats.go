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

type Stats struct {
	cmdutil.ClientFlags
}

func (c *Stats) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("stats", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Stats) Synopsis() string {
	return "Prints account watchlist statistics"
}

func (c *Stats) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.WatchStatsRequest{}
	resp, err := cmdutil.Post[api.WatchStatsResponse](ctx, &c.ClientFlags, "/watch/stats", req)
	if err != nil {
		return err
	}
	fmt.Printf("Count: %d\n", resp.Count)
	if !resp.UpdatedAt.IsZero() {
		fmt.Printf("Updated: %s\n", resp.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
