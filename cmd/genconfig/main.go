// Command genconfig generates build outputs from Kconfig files without the
// rest of the kconf surface: a C header with #defines matching the
// configuration, optional per-symbol dependency files for incremental
// builds, and optionally a full configuration file. It is the genconfig
// subcommand of kconf packaged as a single-purpose binary for build
// systems.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/kconf/cli/cmd"
	"github.com/ardnew/kconf/log"
)

// CLI inlines the genconfig command and the shared kconf flags at the top
// level.
type CLI struct {
	cmd.Globals
	cmd.GenConfig
}

func main() {
	err := run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	parser, err := kong.New(&cli,
		kong.Name("genconfig"),
		kong.Description(
			"Generate a C header, and optionally build dependency "+
				"information and a full configuration file, from Kconfig files."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return ktx.Run(&cli.Globals)
}
