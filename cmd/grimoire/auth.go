package main

import (
	"fmt"

	"github.com/archerdnd/grimoire"
)

// Run executes the login command.
func (c *LoginCmd) Run(deps *Dependencies) error {
	if c.Password == "" {
		fmt.Fprintln(deps.Stderr, "error: password required. Pass --password or set GRIMOIRE_PASSWORD.")
		return grimoire.Errorf(grimoire.EINVALID, "password required")
	}

	tok, err := deps.Auth.Login(deps.Ctx, c.Username, c.Password)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Logged in as %s (user %s)\n", c.Username, tok.UserID)
	return nil
}

// Run executes the register command.
func (c *RegisterCmd) Run(deps *Dependencies) error {
	if c.Password == "" {
		fmt.Fprintln(deps.Stderr, "error: password required. Pass --password or set GRIMOIRE_PASSWORD.")
		return grimoire.Errorf(grimoire.EINVALID, "password required")
	}

	tok, err := deps.Auth.Register(deps.Ctx, c.Username, c.Password)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Registered and logged in as %s (user %s)\n", c.Username, tok.UserID)
	return nil
}

// Run executes the logout command.
func (c *LogoutCmd) Run(deps *Dependencies) error {
	if err := deps.Auth.Logout(deps.Ctx); err != nil {
		// The saved token is already gone at this point; a remote
		// failure only means the server-side session may linger.
		fmt.Fprintf(deps.Stderr, "warning: remote logout failed: %s\n", grimoire.ErrorMessage(err))
	}

	fmt.Fprintln(deps.Stdout, "Logged out")
	return nil
}
