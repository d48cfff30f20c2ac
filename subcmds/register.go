// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/cli"
	"github.com/bvk/coinwatch/subcmds/cmdutil"
	"golang.org/x/term"
)

type Register struct {
	cmdutil.ClientFlags

	name     string
	email    string
	password string
}

func (c *Register) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("register", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.name, "name", "", "display name for the new account")
	fset.StringVar(&c.email, "email", "", "email address for the new account")
	fset.StringVar(&c.password, "password", "", "password for the new account (prompted when empty)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Register) Synopsis() string {
	return "Creates an account on the account service"
}

func (c *Register) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.name) == 0 || len(c.email) == 0 {
		return fmt.Errorf("name and email flags cannot be empty")
	}
	password := c.password
	if len(password) == 0 {
		fmt.Printf("Password: ")
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("could not read password: %w", err)
		}
		password = string(data)
	}

	req := &api.RegisterRequest{
		Name:     c.name,
		Email:    c.email,
		Password: password,
	}
	resp, err := cmdutil.Post[api.RegisterResponse](ctx, &c.ClientFlags, "/register", req)
	if err != nil {
		return err
	}
	if resp.LoggedIn {
		fmt.Printf("Registered and logged in as %s <%s>\n", resp.UserName, resp.UserEmail)
	} else {
		fmt.Printf("Registered %s <%s>\n", resp.UserName, resp.UserEmail)
	}
	return nil
}
