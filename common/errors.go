package common

import (
	"errors"
	"fmt"
)

// Commonly used errors
var (
	ErrReasonTooLong = ErrTooLong("reason")
	ErrTitleTooLong  = ErrTooLong("title")
	ErrNotesTooLong  = ErrTooLong("notes")
	ErrNoPermissions = ErrAccessDenied("insufficient permissions")
)

// StatusError is a simple error with HTTP status code attached
type StatusError struct {
	Err  error
	Code int
}

func (e StatusError) Error() string {
	var prefix string
	switch e.Code {
	case 400:
		prefix = "invalid input"
	case 403:
		prefix = "access denied"
	case 404:
		prefix = "not found"
	case 500:
		prefix = "internal server error"
	}
	return fmt.Sprintf("%s: %s", prefix, e.Err)
}

// ErrTooLong is passed, when a field exceeds the maximum string length for
// that specific field
func ErrTooLong(s string) error {
	return StatusError{errors.New(s + " too long"), 400}
}

// ErrInvalidInput is an error that invalid user input was supplied
func ErrInvalidInput(s string) error {
	return StatusError{errors.New(s), 400}
}

// ErrAccessDenied is an error that user does not have enough access rights
func ErrAccessDenied(s string) error {
	return StatusError{errors.New(s), 403}
}

// ErrNotFound is an error that the target resource does not exist
func ErrNotFound(s string) error {
	return StatusError{errors.New(s), 404}
}

// Enum decoding error
func ErrInvalidEnum(s string) error {
	return StatusError{fmt.Errorf("invalid enum: %s", s), 400}
}
