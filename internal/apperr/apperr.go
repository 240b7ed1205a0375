// Package apperr classifies failures into the small set of kinds the CLI
// knows how to explain to a user.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindCredentials
	KindAccessDenied
	KindTimeout
	KindThrottled
	KindUnavailable
	KindNetwork
	KindService
	KindMalformed
	KindInvalidInput
	KindUnsupported
	KindStorage
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindCredentials:  "credentials",
	KindAccessDenied: "access_denied",
	KindTimeout:      "timeout",
	KindThrottled:    "throttled",
	KindUnavailable:  "service_unavailable",
	KindNetwork:      "network",
	KindService:      "service",
	KindMalformed:    "malformed_response",
	KindInvalidInput: "invalid_input",
	KindUnsupported:  "unsupported",
	KindStorage:      "storage",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Transient reports whether a failure of this kind may succeed on a later attempt.
func (k Kind) Transient() bool {
	switch k {
	case KindTimeout, KindThrottled, KindUnavailable, KindNetwork, KindMalformed:
		return true
	}
	return false
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
