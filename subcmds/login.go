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

type Login struct {
	cmdutil.ClientFlags

	email    string
	password string
}

func (c *Login) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("login", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.email, "email", "", "email address of the account")
	fset.StringVar(&c.password, "password", "", "password for the account (prompted when empty)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Login) Synopsis() string {
	return "Signs in to the account service"
}

func (c *Login) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.email) == 0 {
		return fmt.Errorf("email flag cannot be empty")
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

	req := &api.LoginRequest{
		Email:    c.email,
		Password: password,
	}
	resp, err := cmdutil.Post[api.LoginResponse](ctx, &c.ClientFlags, "/login", req)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s <%s>\n", resp.UserName, resp.UserEmail)
	return nil
}
