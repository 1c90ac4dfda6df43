package cmd

import (
	"context"
	"fmt"
)

// Eval evaluates an expression in the Kconfig grammar against the loaded
// configuration and prints its tristate value.
//
// The expression is parsed as if it appeared on the right-hand side of a
// 'depends on' line, so symbol names, comparisons, and the !, &&, and ||
// operators are all available. An existing configuration file is loaded
// first when present, so symbol values reflect saved user values.
type Eval struct {
	Expr string `arg:"" help:"Expression to evaluate" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, false)
	if err != nil {
		return err
	}

	val, err := cfg.EvalString(e.Expr)
	if err != nil {
		return err
	}

	fmt.Println(val)

	return nil
}
