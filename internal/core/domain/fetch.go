package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed backend round trip.
type ErrorKind string

const (
	ErrorKindNetwork    ErrorKind = "NETWORK_ERROR"
	ErrorKindTimeout    ErrorKind = "TIMEOUT_ERROR"
	ErrorKindServer     ErrorKind = "SERVER_ERROR"
	ErrorKindRateLimit  ErrorKind = "RATE_LIMIT_ERROR"
	ErrorKindValidation ErrorKind = "VALIDATION_ERROR"
	ErrorKindAuth       ErrorKind = "AUTH_ERROR"
	ErrorKindForbidden  ErrorKind = "FORBIDDEN_ERROR"
	ErrorKindNotFound   ErrorKind = "NOT_FOUND_ERROR"
	ErrorKindClient     ErrorKind = "CLIENT_ERROR"
	ErrorKindCanceled   ErrorKind = "CANCELED"
	ErrorKindUnknown    ErrorKind = "UNKNOWN_ERROR"
)

// retryableStatus lists the HTTP statuses that are worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryableStatus reports whether an HTTP status code should be retried.
func IsRetryableStatus(code int) bool {
	return retryableStatus[code]
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return ErrorKindValidation
	case code == http.StatusUnauthorized:
		return ErrorKindAuth
	case code == http.StatusForbidden:
		return ErrorKindForbidden
	case code == http.StatusNotFound:
		return ErrorKindNotFound
	case code == http.StatusRequestTimeout:
		return ErrorKindTimeout
	case code == http.StatusTooManyRequests:
		return ErrorKindRateLimit
	case code >= 500:
		return ErrorKindServer
	case code >= 400:
		return ErrorKindClient
	default:
		return ErrorKindUnknown
	}
}

// FetchError describes a failed round trip. It is a value carried inside
// FetchOutcome rather than something callers need to catch.
type FetchError struct {
	// Kind is the error classification.
	Kind ErrorKind

	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int

	// Message is a human-readable description suitable for display.
	Message string

	// Data holds field-level validation details reported by the backend.
	Data map[string]any
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is classified as transient.
func (e *FetchError) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ErrorKindNetwork, ErrorKindTimeout:
		return true
	case ErrorKindCanceled:
		return false
	}
	return IsRetryableStatus(e.StatusCode)
}

// FetchOutcome is the fully resolved result of a fetch.
// Exactly one of Data (when Err is nil) and Err is meaningful; construct it
// with Success or Failure to keep that invariant.
type FetchOutcome[T any] struct {
	Data       T
	Err        *FetchError
	StatusCode int
}

// Success builds a successful outcome.
func Success[T any](data T, status int) FetchOutcome[T] {
	return FetchOutcome[T]{Data: data, StatusCode: status}
}

// Failure builds a failed outcome carrying err.
func Failure[T any](err *FetchError) FetchOutcome[T] {
	var zero T
	return FetchOutcome[T]{Data: zero, Err: err, StatusCode: err.StatusCode}
}

// OK reports whether the outcome is a success.
func (o FetchOutcome[T]) OK() bool {
	return o.Err == nil
}

// ErrorMessage returns the display message of a failed outcome, or "".
func (o FetchOutcome[T]) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	if o.Err.Message != "" {
		return o.Err.Message
	}
	return string(o.Err.Kind)
}
