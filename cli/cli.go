package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/kconf/cli/cmd"
	"github.com/ardnew/kconf/pkg"
)

// CLI is the top-level command-line interface for kconf.
type CLI struct {
	cmd.Globals

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version information and quit" short:"V"`

	Allnoconfig   cmd.AllNoConfig   `cmd:"" help:"Write a configuration with all symbols at their lowest values"`
	Allyesconfig  cmd.AllYesConfig  `cmd:"" help:"Write a configuration with all symbols at their highest values"`
	Allmodconfig  cmd.AllModConfig  `cmd:"" help:"Write a configuration with all tristate symbols at m"`
	Alldefconfig  cmd.AllDefConfig  `cmd:"" help:"Write a configuration with all symbols at their default values"`
	Olddefconfig  cmd.OldDefConfig  `cmd:"" help:"Update an existing configuration with defaults for new symbols"`
	Listnewconfig cmd.ListNewConfig `cmd:"" help:"List modifiable symbols the configuration file leaves unset"`
	Genconfig     cmd.GenConfig     `cmd:"" help:"Generate a C header from the configuration"`
	Eval          cmd.Eval          `cmd:"" help:"Evaluate an expression in the configuration's context"`
	Dump          cmd.Dump          `cmd:"" help:"Print the menu tree or symbol table"`
	Search        cmd.Search        `cmd:"" help:"Search symbols by name and prompt"`
	Menu          cmd.Menu          `cmd:"" help:"Browse and edit the configuration interactively"`
}

// Run parses args, then executes the selected command. Kong reports usage
// errors through exit before returning.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		"version": pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before kong parses, so messages emitted during
	// parsing already honor them. See logConfig.scan.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Now that every flag is known, including the ones the early scan
	// cannot see, settle the logger configuration.
	cli.Log.start(ctx)

	// No-op unless built with the pprof tag and --pprof-mode is set.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(&cli.Globals)
}
