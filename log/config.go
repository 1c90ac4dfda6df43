package log

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log record, ordered least to most severe.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// String returns the lowercase name of the level, with offsets rendered the
// way [slog.Level.String] renders them.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return strings.ToLower(slog.Level(l).String())
	}
}

// Levels returns an iterator over the names of all defined log levels, from
// least to most severe.
func Levels() iter.Seq[string] {
	names := []string{}
	for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
		names = append(names, l.String())
	}

	return slices.Values(names)
}

// ParseLevel maps a level name to its [Level]. It accepts the names
// [slog.Level.UnmarshalText] accepts, case-insensitively and with optional
// integer offsets, plus "trace". Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	// slog.Level.UnmarshalText doesn't recognize "trace"
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects how log records are rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return slices.Values([]string{FormatText.String(), FormatJSON.String()})
}

// ParseFormat maps a format name ("text" or "json", any case) to its
// [Format]. Unrecognized input yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// FormatTime renders a record timestamp. An empty result drops the time
// attribute from the record entirely.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the timestamp layout used unless overridden.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller controls whether source locations are recorded by default.
const DefaultCaller = false

// DefaultPretty controls whether the colorized handlers are used by default.
const DefaultPretty = true

// config carries the settings a [Logger] is built from.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option transforms a config, returning the modified copy.
type Option func(config) config

// with returns a copy of the config with each option applied in order.
func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// makeConfig builds a config from the package defaults, then applies opts.
func makeConfig(w io.Writer, opts ...Option) config {
	var c config

	c.mutex = &sync.RWMutex{}

	return c.with(WithDefaults(w)).with(opts...)
}

// clone creates a copy of the config with a separate mutex and applies any
// provided options.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return c.with(opts...)
}

// handler creates a slog.Handler based on the current configuration.
// The optional opts can be used to override specific configuration values.
func (c config) handler(opts ...Option) slog.Handler {
	override := c.with(opts...)

	makeOpts := func(cfg config) (io.Writer, *slog.HandlerOptions) {
		return cfg.output, &slog.HandlerOptions{
			AddSource: cfg.caller,
			Level:     slog.Level(cfg.level),
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					if t, ok := a.Value.Any().(time.Time); ok {
						formatted := cfg.formatTime(t)
						if formatted == "" {
							return slog.Attr{}
						}

						a.Value = slog.StringValue(formatted)
					}
				}

				// Replace level with custom string representation to show
				// "TRACE" instead of "DEBUG-4". Use uppercase to match slog's
				// default level formatting.
				if a.Key == slog.LevelKey {
					if level, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
					}
				}

				return a
			},
		}
	}

	switch {
	case override.pretty && override.format == FormatJSON:
		return newPrettyJSONHandler(makeOpts(override))

	case override.pretty && override.format == FormatText:
		return newPrettyTextHandler(makeOpts(override))

	case override.format == FormatJSON:
		return slog.NewJSONHandler(makeOpts(override))

	case override.format == FormatText:
		return slog.NewTextHandler(makeOpts(override))

	default:
		return slog.DiscardHandler
	}
}

// set wraps a field mutation in an Option that locks the config's mutex for
// the duration of the change. A zero-value config is given a fresh mutex
// instead, since nothing else can reference it yet.
func set(mutate func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		mutate(&c)

		return c
	}
}

// WithDefaults returns a functional option that resets the configuration to
// [DefaultLevel], [DefaultFormat], [DefaultTimeLayout], [DefaultCaller], and
// [DefaultPretty], writing to w. A nil writer discards all output.
func WithDefaults(w io.Writer) Option {
	return set(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput directs log output to w. A nil writer discards everything.
func WithOutput(w io.Writer) Option {
	return set(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	})
}

// WithLevel sets the minimum severity a record needs to be emitted.
func WithLevel(level Level) Option {
	return set(func(c *config) { c.level = level })
}

// WithFormat selects text or JSON rendering.
func WithFormat(format Format) Option {
	return set(func(c *config) { c.format = format })
}

// WithTimeLayout sets the timestamp layout. Named layouts from the [time]
// package are recognized in any casing or punctuation ("RFC3339Nano",
// "rfc-3339-nano"); anything else goes verbatim to [time.Time.Format].
// An empty layout, or the name "none", disables timestamps.
func WithTimeLayout(layout string) Option {
	return set(func(c *config) { c.formatTime = makeFormatTimeFunc(layout) })
}

// WithCaller records the source file and line of each logging call when
// enabled. Resolving the caller costs a few frames of stack walk per record.
func WithCaller(enable bool) Option {
	return set(func(c *config) { c.caller = enable })
}

// WithPretty toggles the colorized handlers. Pretty text drops quoting and
// colors keys and values; pretty JSON is indented and colorized.
func WithPretty(enable bool) Option {
	return set(func(c *config) { c.pretty = enable })
}

// timeLayout resolves normalized layout names to [time] package layouts.
// Lookup keys come from normalizeLayout, so entries are lowercase with no
// punctuation. "none" maps to the empty layout, which disables timestamps.
var timeLayout = map[string]string{
	"none": "",

	"ansic":       time.ANSIC,
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rubydate":    time.RubyDate,
	"unixdate":    time.UnixDate,

	"stamp": time.Stamp,

	"stampmilli": time.StampMilli,
	"milli":      time.StampMilli,
	"millis":     time.StampMilli,
	"ms":         time.StampMilli,

	"stampmicro": time.StampMicro,
	"micro":      time.StampMicro,
	"micros":     time.StampMicro,
	"us":         time.StampMicro,

	"stampnano": time.StampNano,
	"nano":      time.StampNano,
	"nanos":     time.StampNano,
	"ns":        time.StampNano,
}

// normalizeLayout lowercases a layout name and strips everything that is not
// a letter or digit, so "RFC3339Nano", "rfc-3339-nano", and "rfc3339nano"
// all find the same timeLayout entry.
func normalizeLayout(layout string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(layout) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func makeFormatTimeFunc(layout string) FormatTime {
	key := normalizeLayout(layout)
	if key == "" {
		return func(time.Time) string { return "" }
	}

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	// Unrecognized names pass through as custom layouts.
	return func(t time.Time) string { return t.Format(layout) }
}
