// Package apperr classifies failures of the installer so that frontends can
// decide whether to warn, report, or silently continue.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of an error.
type Kind string

const (
	// KindValidation is bad user input: wrong file type, empty rename target.
	KindValidation Kind = "validation"
	// KindNotFound is a missing file or record; callers treat it as a no-op.
	KindNotFound Kind = "not_found"
	// KindProvider is a failure of a single icon source.
	KindProvider Kind = "provider"
	// KindPersistence is a registry read or write failure.
	KindPersistence Kind = "persistence"
	// KindFatal is a failure of the orchestration itself, e.g. a search session
	// that cannot start.
	KindFatal Kind = "fatal"
	// KindUnknown is anything that was not classified.
	KindUnknown Kind = "unknown"
)

// Error is a classified error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// NotFound creates a not-found error.
func NotFound(message string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Cause: cause}
}

// Provider creates an error for a failed icon source.
func Provider(source string, cause error) *Error {
	return &Error{Kind: KindProvider, Message: "provider " + source, Cause: cause}
}

// Persistence creates a registry persistence error.
func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

// Fatal creates an orchestration error that must be shown to the user.
func Fatal(message string, cause error) *Error {
	return &Error{Kind: KindFatal, Message: message, Cause: cause}
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Recoverable reports whether the error should be logged and skipped rather
// than aborting the operation.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindProvider, KindPersistence:
		return true
	}
	return false
}
