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

type Logout struct {
	cmdutil.ClientFlags
}

func (c *Logout) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("logout", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Logout) Synopsis() string {
	return "Signs out and switches to an anonymous session"
}

func (c *Logout) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.LogoutRequest{}
	if _, err := cmdutil.Post[api.LogoutResponse](ctx, &c.ClientFlags, "/logout", req); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}
