package log

import (
	"context"
	"log/slog"
	"os"
)

// defaultLog is the process-wide logger the package-level functions use.
//
//nolint:gochecknoglobals
var defaultLog = Make(os.Stderr)

// Config reconfigures the default logger in place. The CLI calls it while
// parsing flags, so records logged during startup already use the final
// settings.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the package-level logger.
func Default() Logger { return defaultLog }

// TraceContext logs msg at [LevelTrace] under ctx to the default logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.TraceContext(ctx, msg, attrs...)
}

// Trace logs msg at [LevelTrace] to the default logger.
func Trace(msg string, attrs ...slog.Attr) {
	TraceContext(DefaultContextProvider(), msg, attrs...)
}

// DebugContext logs msg at [LevelDebug] under ctx to the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.DebugContext(ctx, msg, attrs...)
}

// Debug logs msg at [LevelDebug] to the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	DebugContext(DefaultContextProvider(), msg, attrs...)
}

// InfoContext logs msg at [LevelInfo] under ctx to the default logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.InfoContext(ctx, msg, attrs...)
}

// Info logs msg at [LevelInfo] to the default logger.
func Info(msg string, attrs ...slog.Attr) {
	InfoContext(DefaultContextProvider(), msg, attrs...)
}

// WarnContext logs msg at [LevelWarn] under ctx to the default logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.WarnContext(ctx, msg, attrs...)
}

// Warn logs msg at [LevelWarn] to the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	WarnContext(DefaultContextProvider(), msg, attrs...)
}

// ErrorContext logs msg at [LevelError] under ctx to the default logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.ErrorContext(ctx, msg, attrs...)
}

// Error logs msg at [LevelError] to the default logger.
func Error(msg string, attrs ...slog.Attr) {
	ErrorContext(DefaultContextProvider(), msg, attrs...)
}

// With derives a [Logger] from the default logger that attaches the given
// attributes to every record.
func With(attrs ...slog.Attr) Logger {
	return defaultLog.With(attrs...)
}
