// Package errs defines the typed failure kinds surfaced by the
// interaction engine. Handlers translate kinds into HTTP status codes;
// the kind distinction must survive wrapping because Forbidden and
// NotFound have different security implications.
package errs

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is the zero value; treated as a store failure.
	KindUnknown Kind = iota
	// KindNotFound - a referenced User/Post/Comment/Notification is absent.
	KindNotFound
	// KindForbidden - the actor is not the owner/author for an operation requiring ownership.
	KindForbidden
	// KindConflict - duplicate non-idempotent action (already liked, already following)
	// or retracting an action that was never applied.
	KindConflict
	// KindValidation - missing required content (empty comment, post with neither
	// description nor attachment).
	KindValidation
	// KindInvalidArgument - structurally invalid request (following yourself, bad id).
	KindInvalidArgument
	// KindContention - the transaction aborted due to concurrent conflicting writes;
	// safe to retry.
	KindContention
	// KindStoreFailure - the underlying store is unavailable or the commit failed
	// for infrastructure reasons.
	KindStoreFailure
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindContention:
		return "contention"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Error is a kinded error with an optional operation name and cause.
type Error struct {
	Kind Kind
	Op   string // logical operation, e.g. "engine.LikePost"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		if e.Op == "" {
			return e.Msg
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds an *Error around a cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from an error chain. Errors that carry no
// kind are reported as KindStoreFailure: an unclassified failure must
// never masquerade as a client error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		if e.Kind == KindUnknown {
			return KindStoreFailure
		}
		return e.Kind
	}
	return KindStoreFailure
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Retryable reports whether the caller may safely retry the operation.
func Retryable(err error) bool {
	return Is(err, KindContention)
}
