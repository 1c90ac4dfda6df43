package kconfig

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax          = NewError("syntax error")
	ErrMalformedExpr   = NewError("malformed expression")
	ErrOpenFile        = NewError("could not open file")
	ErrRecursiveSource = NewError("recursive 'source'")
	ErrMissingEndToken = NewError("expected end of block")
	ErrDependencyLoop  = NewError("dependency loop")
	ErrUnknownSymbol   = NewError("unknown symbol")
	ErrLoadConfig      = NewError("could not load configuration")
	ErrWriteConfig     = NewError("could not write configuration")
	ErrInternal        = NewError("internal error")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer for rich structured logging.
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

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// loadError pairs a category sentinel with fully rendered detail text, for
// errors whose message spans several lines, like recursive source chains
// and dependency loops.
type loadError struct {
	err    *Error
	detail string
}

func (e *loadError) Error() string { return e.detail }

func (e *loadError) Unwrap() error { return e.err }

// ParseError reports a syntax error found while reading Kconfig source.
type ParseError struct {
	Err  *Error // category sentinel, usually ErrSyntax
	File string // source file, or "" for string input
	Src  string // offending source line
	Msg  string // what could not be parsed
	Line int    // 1-based line number
	Col  int    // 1-based column, or 0 when unknown
}

// Error implements the error interface. The message leads with the
// file:line location when a file is known, followed by a snippet of the
// offending line with a column marker.
func (e *ParseError) Error() string {
	var buf strings.Builder

	if e.File != "" {
		buf.WriteString(e.File)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Line))
		buf.WriteString(": ")
	}

	buf.WriteString("couldn't parse '")
	buf.WriteString(strings.TrimRightFunc(e.Src, unicode.IsSpace))
	buf.WriteString("': ")
	buf.WriteString(e.Msg)

	if snippet := e.snippet(); snippet != "" {
		buf.WriteByte('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return nil
	}

	return e.Err
}

// snippet renders the offending source line with a marker under the
// error column.
func (e *ParseError) snippet() string {
	line := strings.TrimRight(e.Src, "\n")
	if line == "" {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(e.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)

	if e.Col > 0 {
		src.WriteByte('\n')
		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		src.WriteString(strings.Repeat(" ", len(num)+5+e.Col-1))
		src.WriteByte('^')
	}

	return src.String()
}
