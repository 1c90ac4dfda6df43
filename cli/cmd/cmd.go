package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/kconf/kconfig"
	"github.com/ardnew/kconf/log"
)

// srctreeEnv is the environment variable carrying additional source tree
// roots, in list form with the platform's path list separator.
const srctreeEnv = "KCONFIG_SRCTREE"

// Globals holds the flags shared by every kconf command. The cli package
// embeds it at the top level and passes it to each command's Run through
// kong's bindings.
type Globals struct {
	File    string   `default:"Kconfig"                       help:"Top-level Kconfig file"                                           short:"f"`
	Config  string   `default:".config" env:"KCONFIG_CONFIG"  help:"Configuration file to read and write"                             short:"c"`
	Prefix  string   `default:"CONFIG_" env:"KCONFIG_PREFIX"  help:"Symbol name prefix in configuration files and headers"`
	Srctree []string `                                        help:"Root for files sourced with relative paths" placeholder:"DIR"`
	Strict  bool     `                                        help:"Warn about assignments to undefined symbols"`
	NoWarn  bool     `                                        help:"Suppress warnings"`
}

// Load parses the top-level Kconfig tree with the global flags applied.
func (g *Globals) Load(ctx context.Context) (*kconfig.Config, error) {
	opts := []kconfig.Option{
		kconfig.WithPrefix(g.Prefix),
		kconfig.WithLogger(log.Default()),
		kconfig.WithWarnings(!g.NoWarn),
		kconfig.WithUndefWarnings(g.Strict),
	}

	if roots := srctreeRoots(g.Srctree); len(roots) > 0 {
		opts = append(opts, kconfig.WithSrctree(roots...))
	}

	cfg, err := kconfig.Load(g.File, opts...)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "kconfig loaded",
		slog.String("file", g.File),
		slog.Int("symbols", len(cfg.Symbols())),
		slog.Int("warnings", len(cfg.Warnings())),
	)

	return cfg, nil
}

// LoadWithConfig parses the Kconfig tree and then loads the configuration
// file on top of it. With must, a missing configuration file is an error;
// otherwise it is skipped silently, leaving every symbol at its default.
func (g *Globals) LoadWithConfig(
	ctx context.Context,
	must bool,
) (*kconfig.Config, error) {
	cfg, err := g.Load(ctx)
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(g.Config)
	if err != nil {
		if must {
			return nil, ErrConfigMissing.
				With(slog.String("file", g.Config)).
				Wrap(err)
		}

		log.DebugContext(ctx, "no existing configuration",
			slog.String("file", g.Config),
		)

		return cfg, nil
	}

	err = cfg.LoadConfig(g.Config, true)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "configuration loaded",
		slog.String("file", g.Config),
	)

	return cfg, nil
}

// srctreeRoots merges the --srctree flags with the KCONFIG_SRCTREE
// environment list into one ordered root list, flag roots first, dropping
// blank entries and duplicates.
func srctreeRoots(flags []string) []string {
	merged := mung.Make(
		mung.WithSubjectItems(os.Getenv(srctreeEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(flags...),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).String()

	seen := make(map[string]struct{})

	var roots []string

	for _, root := range strings.Split(merged, string(os.PathListSeparator)) {
		if _, dup := seen[root]; dup || root == "" {
			continue
		}

		seen[root] = struct{}{}
		roots = append(roots, root)
	}

	return roots
}

// writeConfig writes the full configuration to path and logs the result.
func writeConfig(ctx context.Context, cfg *kconfig.Config, path string) error {
	err := cfg.WriteConfig(path, kconfig.DefaultConfigHeader)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", path)).
			Wrap(err)
	}

	log.DebugContext(ctx, "configuration written",
		slog.String("file", path),
	)

	return nil
}
