package board

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure into a stable, enumerable category
type Kind int

const (
	// KindValidation means malformed input (length/enum/type violations)
	KindValidation Kind = iota + 1
	// KindNotFound means a referenced entity is absent
	KindNotFound
	// KindForbidden means current state disallows the action
	KindForbidden
	// KindGone means the resource has expired
	KindGone
	// KindConflict means a uniqueness violation race
	KindConflict
	// KindRateLimited means the quota collaborator denied the action
	KindRateLimited
	// KindInternal means a storage or reconciliation failure
	KindInternal
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindGone:
		return "gone"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindInternal:
		return "internal_failure"
	}
	return "unknown"
}

// Error is a kind-tagged operation error with a human-readable reason
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new kind-tagged error
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Ef creates a new kind-tagged error with a formatted message
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and message
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of an error, defaulting to KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
