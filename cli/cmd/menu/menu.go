// Package menu implements the interactive terminal configuration browser
// behind 'kconf menu'.
//
// The browser presents the visible menu tree as a flat, indented list.
// Bool and tristate symbols toggle in place, string, int, and hex symbols
// are edited inline, and fuzzy find jumps between entries. Changes are
// written back to the configuration file on demand, with an unsaved-changes
// prompt on quit.
package menu

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/kconf/kconfig"
	"github.com/ardnew/kconf/log"
)

// Run opens the browser over a loaded configuration and blocks until the
// user quits. The file is the configuration path saved to and reloaded
// from. An empty header selects the default configuration file header.
func Run(ctx context.Context, cfg *kconfig.Config, file, header string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	log.TraceContext(
		ctx,
		"menu start",
		slog.String("config", file),
		slog.Int("symbols", len(cfg.Symbols())),
	)

	m := newModel(ctx, cfg, file, header)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()

	return err
}
