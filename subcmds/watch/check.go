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

type Check struct {
	cmdutil.ClientFlags
}

func (c *Check) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("check", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Check) Synopsis() string {
	return "Reports whether a coin is on the watchlist"
}

func (c *Check) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (coin-id) argument")
	}
	req := &api.WatchCheckRequest{
		CoinID: args[0],
	}
	resp, err := cmdutil.Post[api.WatchCheckResponse](ctx, &c.ClientFlags, "/watch/check", req)
	if err != nil {
		return err
	}
	if resp.Watched {
		fmt.Printf("%s is watched\n", args[0])
	} else {
		fmt.Printf("%s is not watched\n", args[0])
	}
	return nil
}
