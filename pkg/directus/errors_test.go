package directus

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	err := &APIError{Message: "Invalid user credentials.", Extensions: APIErrorExtensions{Code: ErrorCodeInvalidCredentials}}
	assert.Equal(t, "Invalid user credentials. (code: INVALID_CREDENTIALS)", err.Error())

	plain := &APIError{Message: "boom"}
	assert.Equal(t, "boom", plain.Error())
}

func TestHTTPError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name:     "no errors",
			err:      &HTTPError{StatusCode: http.StatusBadGateway},
			expected: "HTTP 502: Bad Gateway",
		},
		{
			name: "single error",
			err: &HTTPError{StatusCode: http.StatusForbidden, Errors: []APIError{
				{Message: "You don't have permission to access this.", Extensions: APIErrorExtensions{Code: ErrorCodeForbidden}},
			}},
			expected: "HTTP 403: You don't have permission to access this. (code: FORBIDDEN)",
		},
		{
			name: "multiple errors",
			err: &HTTPError{StatusCode: http.StatusBadRequest, Errors: []APIError{
				{Message: "first"},
				{Message: "second", Extensions: APIErrorExtensions{Code: ErrorCodeInvalidPayload}},
			}},
			expected: "HTTP 400: multiple errors: first; second (code: INVALID_PAYLOAD)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("envelope", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"errors":[{"message":"Route /nope doesn't exist.","extensions":{"code":"ROUTE_NOT_FOUND"}}]}`)
		err := ParseHTTPError(http.StatusNotFound, body)

		require.Len(t, err.Errors, 1)
		assert.Equal(t, ErrorCodeRouteNotFound, err.FirstError().Extensions.Code)
		assert.True(t, err.HasCode(ErrorCodeRouteNotFound))
		assert.False(t, err.HasCode(ErrorCodeForbidden))
		assert.Equal(t, body, err.Body)
	})

	t.Run("not json", func(t *testing.T) {
		t.Parallel()

		err := ParseHTTPError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
		assert.Empty(t, err.Errors)
		assert.Nil(t, err.FirstError())
		assert.Equal(t, "<html>bad gateway</html>", string(err.Body))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		err := ParseHTTPError(http.StatusServiceUnavailable, nil)
		assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
		assert.Empty(t, err.Errors)
	})
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("reading item: %w", err) }

	tests := []struct {
		name         string
		err          error
		notFound     bool
		unauthorized bool
		forbidden    bool
		network      bool
		auth         bool
		validation   bool
	}{
		{name: "404", err: wrap(&HTTPError{StatusCode: http.StatusNotFound}), notFound: true},
		{
			name:     "route not found code",
			err:      &HTTPError{StatusCode: http.StatusBadRequest, Errors: []APIError{{Extensions: APIErrorExtensions{Code: ErrorCodeRouteNotFound}}}},
			notFound: true,
		},
		{name: "401", err: wrap(&HTTPError{StatusCode: http.StatusUnauthorized}), unauthorized: true},
		{
			name:         "expired token code",
			err:          &HTTPError{StatusCode: http.StatusBadRequest, Errors: []APIError{{Extensions: APIErrorExtensions{Code: ErrorCodeTokenExpired}}}},
			unauthorized: true,
		},
		{name: "403", err: wrap(&HTTPError{StatusCode: http.StatusForbidden}), forbidden: true},
		{name: "network", err: wrap(&NetworkError{Method: "GET", URL: "http://x", Err: errors.New("refused")}), network: true},
		{name: "auth", err: &AuthError{Op: "refresh", Err: ErrNoRefreshToken}, auth: true},
		{name: "validation", err: wrap(Required("id")), validation: true},
		{name: "plain", err: errors.New("plain")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err))
			assert.Equal(t, tt.forbidden, IsForbidden(tt.err))
			assert.Equal(t, tt.network, IsNetworkError(tt.err))
			assert.Equal(t, tt.auth, IsAuthError(tt.err))
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
		})
	}
}

func TestWrappedErrors(t *testing.T) {
	t.Parallel()

	authErr := &AuthError{Op: "refresh", Err: ErrNoRefreshToken}
	assert.Equal(t, "auth refresh: no refresh token available", authErr.Error())
	require.ErrorIs(t, authErr, ErrNoRefreshToken)

	cause := errors.New("connection refused")
	netErr := &NetworkError{Method: http.MethodGet, URL: "http://localhost/items/posts", Err: cause}
	assert.Equal(t, "GET http://localhost/items/posts: connection refused", netErr.Error())
	require.ErrorIs(t, netErr, cause)

	assert.Equal(t, "invalid id: must not be empty", Required("id").Error())

	gqlErr := &GraphQLError{Errors: []APIError{{Message: "Cannot query field"}}}
	assert.Equal(t, "graphql: Cannot query field", gqlErr.Error())
	assert.Equal(t, "graphql: unknown error", (&GraphQLError{}).Error())
}
