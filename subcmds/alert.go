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

type Alert struct {
	cmdutil.ClientFlags

	pct float64
}

func (c *Alert) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("alert", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.Float64Var(&c.pct, "price-change-pct", 0, "24h price change percentage that raises a notification; zero disables")
	return fset, cli.CmdFunc(c.run)
}

func (c *Alert) Synopsis() string {
	return "Configures price move notifications for watched coins"
}

func (c *Alert) CommandHelp() string {
	return `

Command "alert" configures the daemon to send a notification whenever a
watched coin's 24 hour price change crosses the given percentage in either
direction. Notifications are delivered through the telegram integration, so
they require the telegram section in the secrets file.

Setting the percentage to zero disables the notifications.

`
}

func (c *Alert) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if c.pct < 0 {
		return fmt.Errorf("price change percentage cannot be negative")
	}
	req := &api.AlertsSetRequest{
		PriceAlertPct: c.pct,
	}
	if _, err := cmdutil.Post[api.AlertsSetResponse](ctx, &c.ClientFlags, "/alerts/set", req); err != nil {
		return err
	}
	if c.pct == 0 {
		fmt.Println("Price move notifications are disabled")
	} else {
		fmt.Printf("Price move notifications are set at %.2f%%\n", c.pct)
	}
	return nil
}
