package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for categorization
const (
	// Client errors (4xx)
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeBadRequest      = "BAD_REQUEST"

	// Server errors (5xx)
	ErrCodeInternal = "INTERNAL_ERROR"
	ErrCodeDatabase = "DATABASE_ERROR"
	ErrCodeCapture  = "CAPTURE_FAILED"
)

// AppError is the base error type for all application errors
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is comparison by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewInvalidArgument reports a contract violation: a required argument
// was nil or empty. Callers should not retry these.
func NewInvalidArgument(name string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidArgument,
		Message:    fmt.Sprintf("required argument %q is missing", name),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewValidation creates a validation error
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not-found error
func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInternal creates an internal error
func NewInternal(message string) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabase creates a database error
func NewDatabase(op string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeDatabase,
		Message:    fmt.Sprintf("database operation failed: %s", op),
		HTTPStatus: http.StatusInternalServerError,
		Cause:      err,
	}
}

// NewCapture creates a page capture error
func NewCapture(message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeCapture,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Cause:      err,
	}
}

// AsAppError extracts an AppError from err, or wraps it as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("unexpected error").WithCause(err)
}
