package closure

import (
	"errors"
	"log/slog"
	"strings"
)

// Sentinel errors. Use [errors.Is] to test for them; every error returned
// by this package that derives from a sentinel matches it.
var (
	ErrMalformedClosure = NewError("closure is malformed")
	ErrNotFound         = NewError("closure not found")
	ErrInvalidParam     = NewError("invalid parameter")
	ErrReservedName     = NewError("reserved name")
	ErrCompile          = NewError("closure compilation failed")
	ErrEvaluate         = NewError("closure evaluation failed")
	ErrArgCount         = NewError("argument count mismatch")
)

// Error is an error with an optional cause and structured logging
// attributes. It implements [slog.LogValuer].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	root  *Error // sentinel this error was derived from
}

// NewError returns a new sentinel Error.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// WrapError converts err into an *Error, returning it unchanged if it
// already is one.
func WrapError(err error) *Error {
	if ee := (*Error)(nil); errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface as "<msg>: <cause>", omitting
// whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e.root == nil {
		return false
	}

	return e.root == t.root
}

// LogValue implements [slog.LogValuer].
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

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		root:  e.root,
	}
}

// With returns a copy of e carrying additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: merged,
		root:  e.root,
	}
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}
