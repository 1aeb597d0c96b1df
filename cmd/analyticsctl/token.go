package main

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-analytics-console/components/dashboard"
)

type tokenCmd struct {
	Set   tokenSetCmd   `cmd:"" help:"Store a bearer token."`
	Show  tokenShowCmd  `cmd:"" help:"Print the stored bearer token."`
	Clear tokenClearCmd `cmd:"" help:"Remove the stored bearer token."`
}

type tokenSetCmd struct {
	Token string `arg:"" help:"Token value (surrounding whitespace is trimmed)."`
}

func (cmd *tokenSetCmd) Run(rt *runtime) error {
	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		return dashboard.ErrBlankToken
	}
	store, err := rt.globals.credentials()
	if err != nil {
		return err
	}
	if err := store.SetToken(rt.ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✓ Token saved to %s\n", store.Path())
	return nil
}

type tokenShowCmd struct {
	Reveal bool `help:"Print the full token instead of a masked form."`
}

func (cmd *tokenShowCmd) Run(rt *runtime) error {
	store, err := rt.globals.credentials()
	if err != nil {
		return err
	}
	token, err := store.Token(rt.ctx)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Fprintln(rt.out, "no token stored")
		return nil
	}
	if !cmd.Reveal {
		token = maskToken(token)
	}
	fmt.Fprintln(rt.out, token)
	return nil
}

type tokenClearCmd struct{}

func (cmd *tokenClearCmd) Run(rt *runtime) error {
	store, err := rt.globals.credentials()
	if err != nil {
		return err
	}
	if err := store.Clear(rt.ctx); err != nil {
		return err
	}
	fmt.Fprintln(rt.out, "✓ Token cleared")
	return nil
}

// maskToken keeps the last four characters visible.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
