// Package errors defines the application error taxonomy and its HTTP mapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeDeviceUnavailable ErrorType = "DEVICE_UNAVAILABLE"
	ErrorTypeRequestFailed     ErrorType = "REQUEST_FAILED"
	ErrorTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeValidation        ErrorType = "VALIDATION_FAILED"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeInternal          ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewDeviceUnavailable reports that no usable input device could be opened.
func NewDeviceUnavailable(message string, err error) error {
	return &AppError{Type: ErrorTypeDeviceUnavailable, Message: message, Err: err}
}

// NewRequestFailed reports a network or timeout failure talking to the AI service or the store.
func NewRequestFailed(message string, err error) error {
	return &AppError{Type: ErrorTypeRequestFailed, Message: message, Err: err}
}

// NewMalformedResponse reports model output that could not be parsed.
func NewMalformedResponse(message string, err error) error {
	return &AppError{Type: ErrorTypeMalformedResponse, Message: message, Err: err}
}

// NewUnauthorized reports a missing or invalid session.
func NewUnauthorized(message string) error {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the error type, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func is(err error, t ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == t
}

func IsDeviceUnavailable(err error) bool { return is(err, ErrorTypeDeviceUnavailable) }
func IsRequestFailed(err error) bool     { return is(err, ErrorTypeRequestFailed) }
func IsMalformedResponse(err error) bool { return is(err, ErrorTypeMalformedResponse) }
func IsUnauthorized(err error) bool      { return is(err, ErrorTypeUnauthorized) }
func IsValidation(err error) bool        { return is(err, ErrorTypeValidation) }
func IsNotFound(err error) bool          { return is(err, ErrorTypeNotFound) }

// HTTPStatus maps an error to the status code returned to API callers.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API callers.
func PublicMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type != ErrorTypeInternal {
		return appErr.Message
	}
	return "An internal error occurred"
}
