package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/kconf/log"
)

// logFormat configures the logger format as a side effect of flag parsing
// via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler. Kong calls it when
// parsing --log-format, which reconfigures the logger early enough to affect
// messages emitted during parsing itself.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of flag parsing
// via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler. Kong calls it when
// parsing --log-level, which reconfigures the logger early enough to affect
// messages emitted during parsing itself.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"text"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before kong parses anything, so
// the logger configuration does not depend on flag position. The string
// flags reconfigure the logger through encoding.TextUnmarshaler during the
// real parse as well, but the boolean flags never pass through that
// interface, and all of them would otherwise apply too late for messages
// emitted while parsing.
//
// Values kong would reject are ignored here and reported by the real parse.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		name, value, assigned := strings.Cut(args[i], "=")

		switch name {
		case "--log-level", "--log-format":
			if !assigned {
				// The value is the next argument unless it looks like
				// another flag.
				if i+1 >= len(args) || args[i+1] == "" || args[i+1][0] == '-' {
					continue
				}

				value = args[i+1]
				i++
			}

			if name == "--log-level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "--log-pretty", "--no-log-pretty", "--log-caller", "--no-log-caller":
			enable := !strings.HasPrefix(name, "--no-")

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				if !v {
					enable = !enable
				}
			}

			if strings.HasSuffix(name, "pretty") {
				f.Pretty = enable

				log.Config(log.WithPretty(enable))
			} else {
				f.Caller = enable

				log.Config(log.WithCaller(enable))
			}
		}
	}
}
