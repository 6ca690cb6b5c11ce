package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid      = errors.New("invalid argument")
	ErrNotFound     = errors.New("not found")
	ErrIneligible   = errors.New("ineligible")
	ErrReferenced   = errors.New("referenced entity")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// AppError pairs a sentinel with a message that is safe to return to the
// caller. Internal detail stays in Err and is logged server-side only.
type AppError struct {
	Err     error
	Message string
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Invalid(field, message string) *AppError {
	return &AppError{Err: ErrInvalid, Message: message, Field: field}
}

// NotFound covers both a genuinely absent identifier and a row owned by
// another user. Callers must not be able to tell the two apart.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found or access denied", resource),
	}
}

func Ineligible(message string) *AppError {
	return &AppError{Err: ErrIneligible, Message: message}
}

func Referenced(resource string) *AppError {
	return &AppError{
		Err:     ErrReferenced,
		Message: fmt.Sprintf("%s is referenced by existing records and cannot be deleted", resource),
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

// Internal wraps a storage or library failure. The wrapped error is kept for
// logging; the caller only ever sees the generic message.
func Internal(err error) *AppError {
	return &AppError{Err: fmt.Errorf("%w: %w", ErrInternal, err), Message: "internal server error"}
}
