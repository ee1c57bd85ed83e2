package errors

import (
	"fmt"
)

// Domain sentinels. Layers wrap these with context; callers test with errors.Is.
var (
	ErrNotFound      = New("not found")
	ErrAlreadyExists = New("already exists")
	ErrInvalidInput  = New("invalid input")
	ErrForbidden     = New("forbidden")
	ErrConflict      = New("conflict")
	ErrUnavailable   = New("dependency unavailable")

	ErrInsufficientCredits = New("insufficient credits")

	ErrMissingConfig = New("configuration is required")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message && t.cause == nil && e.cause == nil
}

// NotFound returns an ErrNotFound wrapped with the item type and identifier.
func NotFound(itemType string, identifier string) error {
	return fmt.Errorf("%s %s: %w", itemType, identifier, ErrNotFound)
}

// AlreadyExists returns an ErrAlreadyExists wrapped with the item type and identifier.
func AlreadyExists(itemType string, identifier string) error {
	return fmt.Errorf("%s %s: %w", itemType, identifier, ErrAlreadyExists)
}

// InvalidField returns an ErrInvalidInput naming the offending field.
func InvalidField(field string, reason string) error {
	return fmt.Errorf("%s is invalid: %s: %w", field, reason, ErrInvalidInput)
}

// RequiredField returns an ErrInvalidInput for a missing field.
func RequiredField(field string) error {
	return fmt.Errorf("%s is required: %w", field, ErrInvalidInput)
}
