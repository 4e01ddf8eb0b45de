package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// MapHTTPStatus maps a platform HTTP response status to the error taxonomy.
// The platform reports failures as {error:{code,message}}; code and message
// are preserved in the wrapped error text.
func MapHTTPStatus(status int, code, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	detail := message
	if code != "" {
		detail = fmt.Sprintf("%s: %s", code, message)
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", detail, ErrPermissionDenied)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("%s: %w", detail, ErrConflict)
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", detail, ErrTransient)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w", detail, ErrTransient)
	case status >= http.StatusBadRequest:
		return fmt.Errorf("%s: %w", detail, ErrInvalidInput)
	default:
		return fmt.Errorf("unexpected status %d: %s: %w", status, detail, ErrInternal)
	}
}

// IsRetryable determines if an error should trigger another poll attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConflict)
}

// Category returns the taxonomy category name for an error.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrPermissionDenied):
		return "ErrPermissionDenied"
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrConflict):
		return "ErrConflict"
	case errors.Is(err, ErrTransient):
		return "ErrTransient"
	case errors.Is(err, ErrRunFailed):
		return "ErrRunFailed"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NotFound wraps a message as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps a message as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Transient wraps a message as transient
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps a message as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
