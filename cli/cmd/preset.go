package cmd

import (
	"context"

	"github.com/ardnew/kconf/kconfig"
)

// AllNoConfig writes a configuration with every symbol at its lowest value,
// like 'make allnoconfig'. Symbols marked with 'option allnoconfig_y' are
// set to y instead.
type AllNoConfig struct{}

// Run executes the allnoconfig command.
func (*AllNoConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.Load(ctx)
	if err != nil {
		return err
	}

	// Avoid warnings about assigning to promptless symbols and about values
	// invalid for the type. Assignments to string/int/hex symbols are
	// ignored, which is what we want here.
	cfg.DisableWarnings()

	for _, sym := range cfg.Symbols() {
		v := kconfig.N
		if sym.IsAllnoconfigY() {
			v = kconfig.Y
		}

		sym.SetTri(v)
	}

	return writeConfig(ctx, cfg, g.Config)
}

// AllYesConfig writes a configuration with every symbol at its highest
// value, like 'make allyesconfig'.
//
// Choices normally end up in y mode, where assigning m to the member
// symbols has no effect, but a tristate choice can be limited to m mode by
// its dependencies. Assigning m to members first and then raising every
// choice to its highest mode handles both cases.
type AllYesConfig struct{}

// Run executes the allyesconfig command.
func (*AllYesConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.Load(ctx)
	if err != nil {
		return err
	}

	cfg.DisableWarnings()

	for _, sym := range cfg.DefinedSymbols() {
		if t := sym.OrigType(); t != kconfig.TypeBool && t != kconfig.TypeTristate {
			continue
		}

		v := kconfig.Y
		if _, inChoice := sym.Choice(); inChoice {
			v = kconfig.M
		}

		sym.SetTri(v)
	}

	for _, choice := range cfg.Choices() {
		choice.SetTri(kconfig.Y)
	}

	return writeConfig(ctx, cfg, g.Config)
}

// AllModConfig writes a configuration with every tristate symbol at m, like
// 'make allmodconfig'. Bool symbols outside choices are set to y, and bool
// choice symbols keep the choice's default selection.
type AllModConfig struct{}

// Run executes the allmodconfig command.
func (*AllModConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.Load(ctx)
	if err != nil {
		return err
	}

	cfg.DisableWarnings()

	for _, sym := range cfg.Symbols() {
		switch sym.OrigType() {
		case kconfig.TypeBool:
			if _, inChoice := sym.Choice(); !inChoice {
				sym.SetTri(kconfig.Y)
			}

		case kconfig.TypeTristate:
			sym.SetTri(kconfig.M)
		}
	}

	for _, choice := range cfg.Choices() {
		v := kconfig.M
		if choice.OrigType() == kconfig.TypeBool {
			v = kconfig.Y
		}

		choice.SetTri(v)
	}

	return writeConfig(ctx, cfg, g.Config)
}

// AllDefConfig writes a configuration with every symbol at its default
// value, like 'make alldefconfig'.
type AllDefConfig struct{}

// Run executes the alldefconfig command.
func (*AllDefConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.Load(ctx)
	if err != nil {
		return err
	}

	return writeConfig(ctx, cfg, g.Config)
}
