// Copyright (c) 2025 BVK Chaitanya

package watch

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
)

type Import struct {
	cmdutil.ClientFlags

	fromFile string
}

func (c *Import) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("import", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.fromFile, "from-file", "", "path to a JSON file with an array of coin ids")
	return fset, cli.CmdFunc(c.run)
}

func (c *Import) Synopsis() string {
	return "Adds many coins to the account watchlist in one call"
}

func (c *Import) CommandHelp() string {
	return `

Command "import" adds multiple coins to the watchlist in a single backend
call, either from the command-line arguments or from a JSON file holding an
array of coin ids. It requires a signed in session.

`
}

func (c *Import) run(ctx context.Context, args []string) error {
	coinIDs := args
	if len(c.fromFile) != 0 {
		if len(args) != 0 {
			return fmt.Errorf("coin-id arguments and from-file flag are exclusive")
		}
		data, err := os.ReadFile(c.fromFile)
		if err != nil {
			return fmt.Errorf("could not read file %q: %w", c.fromFile, err)
		}
		if err := json.Unmarshal(data, &coinIDs); err != nil {
			return fmt.Errorf("could not parse file %q: %w", c.fromFile, err)
		}
	}
	if len(coinIDs) == 0 {
		return fmt.Errorf("this command takes one or more (coin-id) arguments")
	}

	req := &api.WatchImportRequest{
		CoinIDs: coinIDs,
	}
	resp, err := cmdutil.Post[api.WatchImportResponse](ctx, &c.ClientFlags, "/watch/import", req)
	if err != nil {
		return err
	}
	fmt.Printf("Added %d new coins\n", resp.NumAdded)
	return nil
}
