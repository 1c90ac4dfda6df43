package cmd

import (
	"context"
	"fmt"
)

// OldDefConfig updates an existing configuration, like 'make olddefconfig'.
// Symbols not present in the file are given their default values, and
// symbols whose saved values are no longer attainable are updated.
type OldDefConfig struct{}

// Run executes the olddefconfig command.
func (*OldDefConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, true)
	if err != nil {
		return err
	}

	if err := writeConfig(ctx, cfg, g.Config); err != nil {
		return err
	}

	fmt.Printf("Updated configuration written to '%s'\n", g.Config)

	return nil
}
