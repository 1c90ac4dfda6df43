package cmd

import (
	"context"

	"github.com/ardnew/kconf/cli/cmd/menu"
)

// Menu opens an interactive terminal browser over the configuration tree.
//
// Bool and tristate symbols are toggled in place, string, int, and hex
// symbols are edited inline, and the result is saved back to the
// configuration file on demand. An existing configuration file is loaded
// before the browser opens.
type Menu struct {
	Header string `help:"Header written at the top of the saved configuration file" placeholder:"TEXT"`
}

// Run executes the menu command.
func (m *Menu) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, false)
	if err != nil {
		return err
	}

	return menu.Run(ctx, cfg, g.Config, m.Header)
}
