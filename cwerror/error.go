// Package cwerror gives every layer of colwire-go a common error shape:
// an abstract Kind a caller can branch on for retry policy, wrapping
// whatever lower-level error actually occurred. Adapted from zed's zqe
// package, which does the same thing for a very different set of kinds.
package cwerror

import (
	"bytes"
	"fmt"
)

// Kind classifies an error by what a caller should do about it, per
// spec.md §7. Names are abstract on purpose: a caller branches on the
// Kind, not on a string.
type Kind int

const (
	Other Kind = iota
	Connection
	Io
	Protocol
	Compression
	Validation
	Server
	Unimplemented
)

func (k Kind) String() string {
	switch k {
	case Connection:
		return "connection error"
	case Io:
		return "io error"
	case Protocol:
		return "protocol error"
	case Compression:
		return "compression error"
	case Validation:
		return "validation error"
	case Server:
		return "server error"
	case Unimplemented:
		return "unimplemented"
	}
	return "other error"
}

// ClosesSession reports whether an error of this Kind always ends the
// owning Session, per spec.md §7's propagation policy. Validation never
// closes the session. Server's closure depends on when in the exchange
// it arrived, which only the caller (proto/Session) can know, so Server
// is not reported here as always-closing; callers decide per spec.md §7
// ("recoverable only if it arrived at a stable point").
func (k Kind) ClosesSession() bool {
	switch k {
	case Connection, Io, Protocol, Compression, Unimplemented:
		return true
	default:
		return false
	}
}

// Error pairs a Kind with the underlying cause and, for Server errors,
// the code/name the server reported.
type Error struct {
	Kind       Kind
	Err        error
	ServerCode int32
	ServerName string
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

func (e *Error) Error() string {
	b := &bytes.Buffer{}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.ServerName != "" {
		pad(b, ": ")
		fmt.Fprintf(b, "%s (code %d)", e.ServerName, e.ServerCode)
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns just the wrapped error's text, or the Kind's
// description if there is no wrapped error, letting callers avoid
// repeating the Kind when they already display it separately.
func (e *Error) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != Other {
		return e.Kind.String()
	}
	return "no error"
}

// E builds an *Error from any mix of a Kind, an existing error, and a
// format string with args (in that trailing position, like fmt.Errorf,
// including %w support).
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args to cwerror.E")
	}
	e := &Error{}
	for i, arg := range args {
		switch v := arg.(type) {
		case Kind:
			e.Kind = v
		case error:
			e.Err = v
		case string:
			e.Err = fmt.Errorf(v, args[i+1:]...)
			return e
		default:
			return fmt.Errorf("cwerror.E: unsupported arg type %T", v)
		}
	}
	return e
}
