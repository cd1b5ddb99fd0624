package directus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Directus error codes reported in errors[].extensions.code.
const (
	ErrorCodeForbidden          = "FORBIDDEN"
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeInvalidOTP         = "INVALID_OTP"
	ErrorCodeInvalidToken       = "INVALID_TOKEN"
	ErrorCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrorCodeInvalidPayload     = "INVALID_PAYLOAD"
	ErrorCodeInvalidQuery       = "INVALID_QUERY"
	ErrorCodeRouteNotFound      = "ROUTE_NOT_FOUND"
	ErrorCodeRecordNotUnique    = "RECORD_NOT_UNIQUE"
	ErrorCodeRequestsExceeded   = "REQUESTS_EXCEEDED"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Static errors for err113 compliance.
var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrStaticTokenRefresh = errors.New("static token cannot be refreshed")
	ErrURLRequired        = errors.New("Directus URL is required")
	ErrInvalidURL         = errors.New("invalid Directus URL")
	ErrNoMoreItems        = errors.New("no more items")
	ErrEmptyResponse      = errors.New("empty response body")
	ErrSessionReplaced    = errors.New("session replaced during refresh")
)

// APIError is a single entry of the Directus error envelope.
type APIError struct {
	Message    string             `json:"message"              yaml:"message"`
	Extensions APIErrorExtensions `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// APIErrorExtensions carries the machine-readable error code.
type APIErrorExtensions struct {
	Code   string `json:"code,omitempty"   yaml:"code,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Extensions.Code == "" {
		return e.Message
	}

	return fmt.Sprintf("%s (code: %s)", e.Message, e.Extensions.Code)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int        `json:"-"`
	Errors     []APIError `json:"errors"`
	Body       []byte     `json:"-"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	case 1:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Errors[0].Error())
	default:
		msgs := make([]string, 0, len(e.Errors))
		for i := range e.Errors {
			msgs = append(msgs, e.Errors[i].Error())
		}

		return fmt.Sprintf("HTTP %d: multiple errors: %s", e.StatusCode, strings.Join(msgs, "; "))
	}
}

// FirstError returns the first error or nil.
func (e *HTTPError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// HasCode reports whether any error in the payload carries code.
func (e *HTTPError) HasCode(code string) bool {
	for i := range e.Errors {
		if e.Errors[i].Extensions.Code == code {
			return true
		}
	}

	return false
}

// NetworkError wraps failures that happened before a response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError is returned by login, refresh, logout and static token validation.
type AuthError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid arguments detected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Required returns a ValidationError for an empty required argument.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "must not be empty"}
}

// GraphQLError holds the errors array of a GraphQL response.
type GraphQLError struct {
	Errors []APIError
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	if len(e.Errors) == 0 {
		return "graphql: unknown error"
	}

	return "graphql: " + e.Errors[0].Error()
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound || httpErr.HasCode(ErrorCodeRouteNotFound)
	}

	return false
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized ||
			httpErr.HasCode(ErrorCodeInvalidCredentials) ||
			httpErr.HasCode(ErrorCodeInvalidToken) ||
			httpErr.HasCode(ErrorCodeTokenExpired)
	}

	return false
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusForbidden || httpErr.HasCode(ErrorCodeForbidden)
	}

	return false
}

// IsNetworkError checks if the request never produced a response.
func IsNetworkError(err error) bool {
	netErr := &NetworkError{}

	return errors.As(err, &netErr)
}

// IsAuthError checks if the error came from the auth lifecycle.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsValidationError checks if the error is an argument validation failure.
func IsValidationError(err error) bool {
	valErr := &ValidationError{}

	return errors.As(err, &valErr)
}

// ParseHTTPError builds an HTTPError from a status code and raw response body.
// Bodies that are not a Directus error envelope are kept verbatim in Body.
func ParseHTTPError(statusCode int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: statusCode, Body: body}

	if len(body) == 0 {
		return httpErr
	}

	var envelope struct {
		Errors []APIError `json:"errors"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		httpErr.Errors = envelope.Errors
	}

	return httpErr
}
