package simtemp

import (
	"errors"
	"fmt"

	"github.com/PyCharmGuy123/simtemp/internal/errkind"
)

// Error is the structured error type returned by every public operation,
// carrying the failing Op and the spec's taxonomy Kind.
type Error struct {
	Op    string
	Kind  errkind.Kind
	Msg   string
	Inner error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return fmt.Sprintf("simtemp: %s (op=%s)", msg, e.Op)
	}
	return fmt.Sprintf("simtemp: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Inner }

// Is reports whether target is a sentinel or *Error sharing this error's
// Kind, so callers can use errors.Is(err, simtemp.ErrAgain) etc.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if ke, ok := target.(kindSentinel); ok {
		return e.Kind == ke.kind
	}
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// kindSentinel is a bare error value identifying one taxonomy kind,
// comparable against any *Error carrying the same Kind via Is.
type kindSentinel struct{ kind errkind.Kind }

func (k kindSentinel) Error() string { return k.kind.String() }

// Sentinel errors usable with errors.Is against any *Error of matching
// Kind, mirroring the spec's five-member taxonomy (§7).
var (
	ErrInvalidArgument error = kindSentinel{errkind.InvalidArgument}
	ErrAgain           error = kindSentinel{errkind.Again}
	ErrIoFatal         error = kindSentinel{errkind.IoFatal}
	ErrFault           error = kindSentinel{errkind.Fault}
	ErrNoDevice        error = kindSentinel{errkind.NoDevice}
)

// newError constructs a *Error for the given operation and kind.
func newError(op string, kind errkind.Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// wrapError wraps inner with op context under the given kind; callers
// translating a stream.Error pass its Kind.
func wrapError(op string, kind errkind.Kind, inner error) *Error {
	if inner == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Msg: inner.Error(), Inner: inner}
}

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind errkind.Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
