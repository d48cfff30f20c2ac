// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/coingecko"
)

type CoinGecko struct {
	dataDir     string
	skipTesting bool

	key string
}

func (c *CoinGecko) Synopsis() string {
	return "Configures the market data provider API key"
}

func (c *CoinGecko) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("coingecko", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.key, "key", "", "CoinGecko demo api key")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *CoinGecko) CommandHelp() string {
	return `

Command "coingecko" saves a CoinGecko api key into the secrets file. The key
raises the rate limits on the market data endpoints. The daemon works without
a key, with the anonymous rate limits.

`
}

func (c *CoinGecko) run(ctx context.Context, args []string) error {
	secretsPath, secrets, err := loadSecrets(c.dataDir)
	if err != nil {
		return err
	}

	secrets.CoinGecko = &coingecko.Credentials{
		Key: c.key,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		client, err := coingecko.New(secrets.CoinGecko, nil)
		if err != nil {
			return err
		}
		if _, err := client.ListMarkets(ctx, "usd", 1, 1); err != nil {
			return fmt.Errorf("could not verify the api key: %w", err)
		}
	}

	return writeSecrets(secretsPath, secrets)
}
