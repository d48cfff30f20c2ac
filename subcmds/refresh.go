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

type Refresh struct {
	cmdutil.ClientFlags
}

func (c *Refresh) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("refresh", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Refresh) Synopsis() string {
	return "Fetches a fresh market listing immediately"
}

func (c *Refresh) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.RefreshRequest{}
	resp, err := cmdutil.Post[api.RefreshResponse](ctx, &c.ClientFlags, "/refresh", req)
	if err != nil {
		return err
	}
	fmt.Printf("Fetched %d markets at %s\n", resp.NumMarkets, resp.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}
