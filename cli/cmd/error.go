package cmd

import (
	"log/slog"
	"slices"
)

// Error is a command error that renders itself for both plain output and
// structured logging.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error renders "<msg>: <err>", omitting either part when unset.
func (e *Error) Error() string {
	switch {
	case e.msg == "" && e.err == nil:
		return ""
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	}

	return e.msg + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer, grouping the message, cause, and any
// attached attributes.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of the error with err recorded as its cause. The
// original sentinel is never mutated.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.err = err

	return &clone
}

// With returns a copy of the error carrying additional logging attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	clone := *e
	clone.attrs = append(slices.Clip(e.attrs), attrs...)

	return &clone
}

var (
	ErrConfigMissing = NewError("configuration file not found")
	ErrWriteConfig   = NewError("write configuration file")
	ErrWriteHeader   = NewError("write header file")
	ErrWriteDeps     = NewError("write dependency information")
	ErrJSONMarshal   = NewError("marshal JSON")
	ErrYAMLMarshal   = NewError("marshal YAML")
	ErrBadFilter     = NewError("compile filter expression")
	ErrRunFilter     = NewError("evaluate filter expression")
)
