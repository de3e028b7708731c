package store

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind string

const (
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindSchemaMismatch   Kind = "SCHEMA_MISMATCH"
	KindStoreIO          Kind = "STORE_IO"
	KindQueryFailed      Kind = "QUERY_FAILED"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidTitle     Kind = "INVALID_TITLE"
	KindUnknown          Kind = "UNKNOWN"
)

// Sentinels for use with errors.Is. Any *Error matches the sentinel of the
// same kind regardless of its operation or cause.
var (
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrSchemaMismatch   = &Error{Kind: KindSchemaMismatch}
	ErrStoreIO          = &Error{Kind: KindStoreIO}
	ErrQueryFailed      = &Error{Kind: KindQueryFailed}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidTitle     = &Error{Kind: KindInvalidTitle}
)

// Error is the error type returned by every Store implementation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Fatal reports whether the failure leaves no usable store, meaning startup
// should abort.
func (e *Error) Fatal() bool {
	if e == nil {
		return false
	}
	return e.Kind == KindStoreUnavailable || e.Kind == KindSchemaMismatch
}

// KindOf returns the kind of err, or KindUnknown when err did not come from
// a Store.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsFatal reports whether err is a gateway failure that should abort startup.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
}
