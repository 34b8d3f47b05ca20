// Package domain holds error categories shared by every layer.
package domain

import (
	"errors"
	"fmt"
)

// Error categories. Callers test with errors.Is; the HTTP layer maps each
// category to a status code.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream error")
	ErrUnexpected = errors.New("unexpected error")
)

// Validation returns an ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return categorized(ErrValidation, format, args...)
}

// NotFound returns an ErrNotFound with a caller-facing message.
func NotFound(format string, args ...any) error {
	return categorized(ErrNotFound, format, args...)
}

// Conflict returns an ErrConflict with a caller-facing message.
func Conflict(format string, args ...any) error {
	return categorized(ErrConflict, format, args...)
}

// Upstream wraps a store or transport failure.
func Upstream(op string, err error) error {
	return &Error{category: ErrUpstream, message: op, cause: err}
}

// Unexpected wraps a failure that fits no other category.
func Unexpected(op string, err error) error {
	return &Error{category: ErrUnexpected, message: op, cause: err}
}

// Error is a categorized error. Message returns the text safe to show a
// caller; Error includes the cause for logs.
type Error struct {
	category error
	message  string
	cause    error
}

func categorized(category error, format string, args ...any) error {
	return &Error{category: category, message: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.category, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.category, e.message)
}

// Message returns the caller-facing message without the cause.
func (e *Error) Message() string { return e.message }

// Is reports whether target is this error's category.
func (e *Error) Is(target error) bool { return target == e.category }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Category returns the sentinel for err, or ErrUnexpected when err carries
// no known category.
func Category(err error) error {
	for _, c := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUpstream, ErrUnexpected} {
		if errors.Is(err, c) {
			return c
		}
	}
	return ErrUnexpected
}

// PublicMessage returns text that is safe to return to an API caller.
// Upstream and unexpected failures collapse to a generic message.
func PublicMessage(err error) string {
	switch Category(err) {
	case ErrUpstream, ErrUnexpected:
		return "internal error"
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Message()
	}
	return err.Error()
}
