package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure. The set is closed.
type Kind int

const (
	// KindDatabase wraps any storage failure not otherwise classified
	// (connectivity, syntax, timeout, pool exhaustion).
	KindDatabase Kind = iota + 1
	// KindNotFound means the requested entity does not exist.
	KindNotFound
	// KindValidation means input failed a business rule before reaching storage.
	KindValidation
	// KindDuplicate means a uniqueness invariant was violated.
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrDatabase   = &Error{Kind: KindDatabase}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrDuplicate  = &Error{Kind: KindDuplicate}
)

// Error is the only error type repositories return.
type Error struct {
	Kind Kind

	// Msg is the subject for KindNotFound and the reason for
	// KindValidation and KindDuplicate.
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

// Database wraps a storage failure.
func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Err: err}
}

// NotFound reports that subject (e.g. "User") does not exist.
func NotFound(subject string) *Error {
	return &Error{Kind: KindNotFound, Msg: subject}
}

// Validation reports a rejected input.
func Validation(reason string) *Error {
	return &Error{Kind: KindValidation, Msg: reason}
}

// Duplicate reports a uniqueness violation.
func Duplicate(reason string) *Error {
	return &Error{Kind: KindDuplicate, Msg: reason}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDatabase:
		if e.Err == nil {
			return "database error"
		}
		return fmt.Sprintf("database error: %v", e.Err)
	case KindNotFound:
		return fmt.Sprintf("%s not found", e.Msg)
	case KindValidation:
		return fmt.Sprintf("validation error: %s", e.Msg)
	case KindDuplicate:
		return fmt.Sprintf("duplicate entry: %s", e.Msg)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// KindOf returns the Kind of err, or 0 if err is nil or not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
