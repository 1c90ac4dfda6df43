// Package log wraps [log/slog] with a small concurrency-safe logger used
// throughout kconf.
//
// A [Logger] is a value, cheap to copy, configured once at creation with
// functional options. The zero value discards everything, so embedding a
// Logger in a struct never requires a nil check.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("configuration loaded", slog.String("path", path))
//	logger.Error("load failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options overridden, leaving the
// receiver untouched. [Logger.With] attaches attributes that appear on every
// record the derived logger emits:
//
//	logger = logger.With(slog.String("component", "parser"))
//	logger.Info("file loaded") // includes component=parser
//
// # Levels
//
// Five levels are defined, [LevelTrace] through [LevelError]. Records below
// the configured level are discarded. Trace sits below slog's debug and
// carries per-token and per-item diagnostics that would drown out debug
// output.
//
// # Context
//
// Every level has a context-aware method ([Logger.InfoContext] and friends).
// The plain methods obtain their context from [DefaultContextProvider],
// which defaults to [context.TODO].
//
// # Formats
//
// Records render as [FormatText] (default) or [FormatJSON]. Both have
// colorized pretty variants built on lipgloss, enabled by default and
// toggled with [WithPretty].
package log
