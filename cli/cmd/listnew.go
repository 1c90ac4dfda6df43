package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ardnew/kconf/kconfig"
)

// ListNewConfig lists all modifiable symbols that are not assigned in the
// configuration file, like 'make listnewconfig'.
type ListNewConfig struct{}

// Run executes the listnewconfig command.
func (*ListNewConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, true)
	if err != nil {
		return err
	}

	for _, sym := range cfg.Symbols() {
		if _, set := sym.UserValue(); set {
			continue
		}

		// Only show symbols that can be toggled. Visible symbols in choices
		// in y mode have a single assignable value, but they can still be
		// toggled by selecting some other choice symbol.
		inChoice := false
		if _, ok := sym.Choice(); ok {
			inChoice = true
		}

		modifiable := len(sym.Assignable()) > 1 ||
			(sym.Visibility() != kconfig.N &&
				(sym.OrigType() == kconfig.TypeInt ||
					sym.OrigType() == kconfig.TypeHex ||
					sym.OrigType() == kconfig.TypeString ||
					inChoice))

		if !modifiable {
			continue
		}

		// Don't reuse the configuration file format for bool and tristate
		// symbols, so that n-valued symbols print as FOO=n instead of
		// '# FOO is not set'. This matches the C tools.
		if t := sym.OrigType(); t == kconfig.TypeBool || t == kconfig.TypeTristate {
			fmt.Fprintf(os.Stdout, "%s%s=%s\n",
				cfg.ConfigPrefix(), sym.Name(), sym.TriValue())
		} else {
			fmt.Fprint(os.Stdout, sym.ConfigString())
		}
	}

	return nil
}
