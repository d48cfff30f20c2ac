// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/envfile"
	"github.com/bvk/coinwatch/subcmds"
	"github.com/bvk/coinwatch/subcmds/db"
	"github.com/bvk/coinwatch/subcmds/setup"
	"github.com/bvk/coinwatch/subcmds/watch"
)

func main() {
	// Environment variable defaults, like COINWATCH_SERVER_PORT, can be kept
	// in a ".coinwatch.env" file in the home directory or any parent of the
	// current directory.
	if err := envfile.UpdateEnv(".coinwatch.env", envfile.SearchCurrentDir(true)); err != nil {
		log.Fatal(err)
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	watchCmds := []cli.Command{
		new(watch.List),
		new(watch.Toggle),
		new(watch.Add),
		new(watch.Remove),
		new(watch.Clear),
		new(watch.Check),
		new(watch.Import),
		new(watch.Stats),
	}

	setupCmds := []cli.Command{
		new(setup.CoinGecko),
		new(setup.Telegram),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		new(subcmds.Login),
		new(subcmds.Register),
		new(subcmds.Logout),
		new(subcmds.Markets),
		new(subcmds.Coin),
		new(subcmds.Refresh),
		new(subcmds.Stream),
		new(subcmds.Alert),
		cli.CommandGroup("watch", watchCmds...),
		cli.CommandGroup("db", dbCmds...),
		cli.CommandGroup("setup", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
