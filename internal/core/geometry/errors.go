package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Sentinel errors for broad classification. Every error returned by this
// package unwraps to exactly one of them.
var (
	ErrStructural   = errors.New("structural error")
	ErrInvalidRange = errors.New("invalid range")
	ErrDegenerate   = errors.New("degenerate geometry")
)

// Error carries the failing operation and, when one exists, the coordinate
// that caused it (a branching node, a ring, a zero-length fragment).
type Error struct {
	Op   string
	Kind error
	At   *orb.Point
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Msg != "" {
		base += ": " + e.Msg
	}
	if e.At != nil {
		base += fmt.Sprintf(" at (%g, %g)", e.At[0], e.At[1])
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func newErrorAt(op string, kind error, at orb.Point, format string, args ...any) *Error {
	e := newError(op, kind, format, args...)
	e.At = &at
	return e
}

// IsGeometryError reports whether err came out of this package.
func IsGeometryError(err error) bool {
	var ge *Error
	return errors.As(err, &ge)
}
