package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of a failed series fetch.
type ErrorType string

const (
	// ErrorTypeNetwork indicates a transport failure (connection refused, DNS, reset)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout indicates the request context expired before a response arrived
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeRateLimit indicates the provider rejected the request with HTTP 429
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates an HTTP 5xx response
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates an HTTP 4xx response other than 429
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeMalformed indicates a 2xx response whose body is not the expected [metadata, points] array
	ErrorTypeMalformed ErrorType = "malformed"
	// ErrorTypeUnknown indicates any other non-success status
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError records why a fetch produced no data. Retryable marks
// failures a later request may not repeat.
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "request failed",
		Cause:     cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewMalformedError creates an error for a response body that cannot be interpreted
func NewMalformedError(message string, cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeMalformed,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyHTTPError maps a non-success status code to a FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &FetchError{Type: ErrorTypeRateLimit, Retryable: true, StatusCode: statusCode, Message: "rate limit exceeded"}
	case statusCode >= 500:
		return &FetchError{Type: ErrorTypeServer, Retryable: true, StatusCode: statusCode, Message: "server returned an error"}
	case statusCode >= 400:
		return &FetchError{Type: ErrorTypeClient, StatusCode: statusCode, Message: fmt.Sprintf("client error: HTTP %d", statusCode)}
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}

// IsRetryable reports whether err is a FetchError worth trying again later.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable
}
