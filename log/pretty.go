package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles for pretty printing. ANSI 16-color palette so output degrades
// sanely on dumb terminals.
//
//nolint:gochecknoglobals
var (
	styleKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleString   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleNumber   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTrue     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleDuration = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleNull     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	styleLevelError = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleLevelWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleLevelInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleLevelLow   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styleLevelError
	case level >= slog.LevelWarn:
		return styleLevelWarn
	case level >= slog.LevelInfo:
		return styleLevelInfo
	default:
		return styleLevelLow
	}
}

// renderLevel colors a level by severity and names it through [Level], so
// trace prints as "trace" rather than slog's "DEBUG-4".
func renderLevel(level slog.Level) string {
	return levelStyle(level).Render(Level(level).String())
}

// prettySink serializes writes from the pretty handlers. Handlers derived
// through WithAttrs and WithGroup share one sink so records never interleave.
type prettySink struct {
	mu *sync.Mutex
	w  io.Writer
}

func makePrettySink(w io.Writer) prettySink {
	return prettySink{mu: new(sync.Mutex), w: w}
}

func (s prettySink) flush(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler is a colorized slog.Handler for interactive terminals.
// It renders one record per line as unquoted key=value pairs.
type prettyTextHandler struct {
	sink   prettySink
	opts   slog.HandlerOptions
	groups []string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{
		sink: makePrettySink(w),
		opts: *opts,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		h.writeAttr(buf, slog.Time(slog.TimeKey, r.Time))
	}

	h.writeAttr(buf, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			location := fmt.Sprintf("%s:%d", src.File, src.Line)
			h.writeAttr(buf, slog.String(slog.SourceKey, location))
		}
	}

	h.writeAttr(buf, slog.String(slog.MessageKey, r.Message))

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a)

		return true
	})

	return h.sink.flush(buf)
}

// WithAttrs returns a handler writing to the same sink. Preformatted attrs
// are not carried over; the pretty form is for reading, not for parsing.
func (h *prettyTextHandler) WithAttrs([]slog.Attr) slog.Handler {
	clone := *h

	return &clone
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(
		clone.groups[:len(clone.groups):len(clone.groups)], name,
	)

	return &clone
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(styleKey.Render(a.Key))
	buf.WriteByte('=')

	h.writeValue(buf, a.Value)
}

func (h *prettyTextHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		// Unquoted, favoring legibility over parseability.
		buf.WriteString(styleString.Render(v.String()))

	case slog.KindInt64:
		buf.WriteString(styleNumber.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(styleNumber.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(
			styleNumber.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)),
		)

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(styleTrue.Render("true"))
		} else {
			buf.WriteString(styleFalse.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(styleDuration.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(styleTime.Render(v.Time().String()))

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			buf.WriteString(renderLevel(level))

			return
		}

		buf.WriteString(styleString.Render(v.String()))

	default:
		buf.WriteString(styleString.Render(v.String()))
	}
}

// prettyJSONHandler renders each record as an indented, colorized JSON-like
// object. Values are not escaped, so the output is not machine-safe JSON
// when attributes contain quotes or control characters.
type prettyJSONHandler struct {
	sink prettySink
	opts slog.HandlerOptions
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{
		sink: makePrettySink(w),
		opts: *opts,
	}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{\n")

	first := true
	field := func(key string, value any) {
		if !first {
			buf.WriteString(",\n")
		}

		first = false

		buf.WriteString("  ")
		buf.WriteString(styleKey.Render(key))
		buf.WriteString(": ")

		h.writeValue(buf, value)
	}

	if !r.Time.IsZero() {
		field(slog.TimeKey, r.Time.Format(time.RFC3339))
	}

	field(slog.LevelKey, Level(r.Level).String())

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			field(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line))
		}
	}

	field(slog.MessageKey, r.Message)

	r.Attrs(func(a slog.Attr) bool {
		field(a.Key, a.Value.Any())

		return true
	})

	buf.WriteString("\n}")

	return h.sink.flush(buf)
}

func (h *prettyJSONHandler) WithAttrs([]slog.Attr) slog.Handler {
	clone := *h

	return &clone
}

func (h *prettyJSONHandler) WithGroup(string) slog.Handler {
	clone := *h

	return &clone
}

func (h *prettyJSONHandler) writeValue(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case string:
		buf.WriteString(styleString.Render(val))

	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		buf.WriteString(styleNumber.Render(fmt.Sprint(val)))

	case bool:
		if val {
			buf.WriteString(styleTrue.Render("true"))
		} else {
			buf.WriteString(styleFalse.Render("false"))
		}

	case nil:
		buf.WriteString(styleNull.Render("null"))

	default:
		buf.WriteString(styleString.Render(fmt.Sprint(val)))
	}
}
