package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies application errors so the HTTP boundary can map each
// one to a status code and user-facing message without string matching.
type ErrorKind string

// error kinds
const (
	KindValidation ErrorKind = "validation" // bad or missing input, detected before any external call
	KindAuth       ErrorKind = "auth"       // credential rejection or session problems
	KindStore      ErrorKind = "store"      // profile store failure
	KindGeneration ErrorKind = "generation" // content provider failure or missing credential
)

// Error is a classified application error. Message is safe to show to the
// user; the wrapped cause is for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// NewError makes a classified error with a formatted user-facing message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError makes a classified error wrapping an underlying cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the kind of a classified error anywhere in the chain,
// or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
