package providers

import (
	"errors"
	"fmt"
	"time"
)

// BackendError represents a failed backend invocation: a transport error,
// a non-success HTTP status, or a timeout. It aborts the in-flight request
// and is never retried automatically.
type BackendError struct {
	// Backend is the name of the backend that failed
	Backend string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend %q error (status %d): %s", e.Backend, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %q error: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// IsBackendError reports whether err is (or wraps) a *BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// TimeoutError represents a request that exceeded the configured timeout.
// The router treats a timeout exactly like any other backend failure.
type TimeoutError struct {
	// Backend is the name of the backend where the timeout occurred
	Backend string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend %q request timeout after %s", e.Backend, e.Timeout)
}

// ParseError represents a malformed backend response.
type ParseError struct {
	// Backend is the name of the backend that returned the response
	Backend string

	// RawResponse is the raw payload that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("backend %q response parse error: %v", e.Backend, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid backend configuration.
type ConfigError struct {
	// Backend is the name of the backend being configured
	Backend string

	// Field is the configuration field at fault
	Field string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("backend %q config error (%s): %s", e.Backend, e.Field, e.Message)
}

// StreamError represents a failure while reading an established stream.
type StreamError struct {
	// Backend is the name of the backend serving the stream
	Backend string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("backend %q stream error: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}
