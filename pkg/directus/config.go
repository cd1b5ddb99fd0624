package directus

import (
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// AuthConfig configures the authentication lifecycle.
type AuthConfig struct {
	// AutoRefresh schedules a refresh RefreshMargin before every expiry.
	// Without it tokens are refreshed lazily, right before a request.
	AutoRefresh bool

	// RefreshMargin is how long before expiry a token counts as expired.
	// Defaults to 30s.
	RefreshMargin time.Duration

	// StaticToken, when set, is used as a non-expiring access token and
	// disables refresh.
	StaticToken string

	// Clock drives expiry checks and the auto-refresh timer.
	Clock clockwork.Clock

	// Logger receives login/refresh/logout events.
	Logger Logger
}

// TransportConfig configures the HTTP transport.
type TransportConfig struct {
	// Timeout bounds every request. Defaults to 30s.
	Timeout time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Headers are sent with every request unless the request sets them.
	Headers map[string]string

	// RetryMax enables automatic retries. Zero (the default) disables them.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug logs every request and response through Logger.
	Debug  bool
	Logger Logger

	// HTTPClient replaces the underlying *http.Client.
	HTTPClient *http.Client

	// Extra interceptors, run after the built-in ones.
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
}
