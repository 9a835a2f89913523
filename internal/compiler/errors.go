package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/syntax"
)

// ErrorKind classifies compile failures.
type ErrorKind int

const (
	// MalformedLiteral: a literal or blank node could not be materialized.
	MalformedLiteral ErrorKind = iota + 1
	// MalformedNodeID: a node id form is missing its IRI.
	MalformedNodeID
	// InvalidRange: negative skip/limit or malformed range bounds.
	InvalidRange
	// UnsupportedOperator: a pipe stage the compiler does not know.
	UnsupportedOperator
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedLiteral:
		return "MalformedLiteral"
	case MalformedNodeID:
		return "MalformedNodeId"
	case InvalidRange:
		return "InvalidRange"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a compile failure with the source position of the offending
// node. Stage names the pipe stage for pipeline errors.
type Error struct {
	Kind    ErrorKind
	Message string
	Stage   string
	Pos     syntax.Pos
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = fmt.Sprintf("stage %q: %s", e.Stage, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind returns true if err is or wraps a compile Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

func errorf(kind ErrorKind, pos syntax.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func wrapError(kind ErrorKind, pos syntax.Pos, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, Err: err}
}
