package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/kconf/kconfig"
	"github.com/ardnew/kconf/log"
)

// GenConfig generates a C header with #defines from the configuration,
// matching the format of include/generated/autoconf.h in the Linux kernel.
//
// It can also write per-symbol dependency files for incremental builds and
// a full configuration file equivalent to what olddefconfig would produce.
type GenConfig struct {
	HeaderPath string `default:"config.h" help:"Path of the generated header file"                           placeholder:"FILE" type:"path"`
	SyncDeps   bool   `                   help:"Write build dependency information for incremental builds"`
	DepsDir    string `default:"deps/"    help:"Output directory for --sync-deps symbol files"               placeholder:"DIR"  type:"path"`
	ConfigOut  string `                   help:"Write a full configuration file to FILE"                     placeholder:"FILE" type:"path"`
}

// Run executes the genconfig command.
func (c *GenConfig) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, false)
	if err != nil {
		return err
	}

	if err := cfg.WriteAutoconf(c.HeaderPath, kconfig.DefaultAutoconfHeader); err != nil {
		return ErrWriteHeader.
			With(slog.String("file", c.HeaderPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "header written", slog.String("file", c.HeaderPath))

	if c.SyncDeps {
		if err := cfg.SyncDeps(c.DepsDir); err != nil {
			return ErrWriteDeps.
				With(slog.String("dir", c.DepsDir)).
				Wrap(err)
		}

		log.DebugContext(ctx, "dependency information written",
			slog.String("dir", c.DepsDir))
	}

	if c.ConfigOut != "" {
		return writeConfig(ctx, cfg, c.ConfigOut)
	}

	return nil
}
