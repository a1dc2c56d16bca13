package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the closed set of failures a Graph API call can surface
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Graph API error codes that map onto the taxonomy regardless of HTTP status.
const (
	graphCodeAPITooManyCalls  = 4
	graphCodeUserRequestLimit = 17
	graphCodeAPIUserTooMany   = 32
	graphCodeAccessToken      = 190
	graphCodeRateLimitReached = 613
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	// Code is the HTTP status code, 0 for transport failures
	Code int
	// Body is the raw response body, kept for the fatal error printout
	Body string
	// GraphCode is the "code" field of a Graph API error envelope, if any
	GraphCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Code:    code,
	}
}

// TypeForStatus classifies an HTTP status code. Success codes return "".
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return ""
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	case statusCode >= 400:
		return ErrorTypeBadRequest
	default:
		return ErrorTypeUnknown
	}
}

// TypeForGraphCode refines a classification using the Graph API error code.
// Unknown codes keep the status based type.
func TypeForGraphCode(graphCode int, fallback ErrorType) ErrorType {
	switch graphCode {
	case graphCodeAccessToken:
		return ErrorTypeAuth
	case graphCodeAPITooManyCalls, graphCodeUserRequestLimit, graphCodeAPIUserTooMany, graphCodeRateLimitReached:
		return ErrorTypeRateLimit
	default:
		return fallback
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	if statusCode == 0 {
		// Network error
		return true
	}
	return IsRetryable(TypeForStatus(statusCode))
}

// As extracts a typed error from err
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsType reports whether err is a typed error of the given type
func IsType(err error, errorType ErrorType) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Type == errorType
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.Code
	}
	return 0
}
