package directus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// Request is an outgoing request as seen by interceptors. Interceptors may
// rewrite any field; the transport serializes the request only after the
// whole chain has run.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	// Body is JSON-encoded unless it is nil, a []byte or an io.Reader.
	Body     any
	Metadata map[string]interface{}
}

// Response is a received response as seen by interceptors and handlers.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// CredentialSource reads the current credential record.
type CredentialSource interface {
	Load(ctx context.Context) (*Credentials, error)
}

// HookContext is handed to every request interceptor.
type HookContext struct {
	BaseURL     string
	Credentials CredentialSource
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, hc *HookContext, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors. Interceptors run in the
// order they were added; a failing interceptor aborts the request.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// RequestInterceptors returns the number of registered request interceptors.
func (c *InterceptorChain) RequestInterceptors() int {
	return len(c.requestInterceptors)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, hc *HookContext, req *Request) error {
	if hc == nil {
		hc = &HookContext{}
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, hc, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, hc *HookContext, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests. Headers already present
// on the request are left alone.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, hc *HookContext, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			if req.Headers.Get(key) == "" {
				req.Headers.Set(key, value)
			}
		}

		return nil
	}
}

// RequestIDHeader is the header set by RequestIDInterceptor, in canonical
// form.
const RequestIDHeader = "X-Request-Id"

// RequestIDInterceptor tags each request with a random X-Request-Id unless
// the caller already set one under any spelling of the key.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, hc *HookContext, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if !hasHeader(req.Headers, RequestIDHeader) {
			req.Headers.Set(RequestIDHeader, uuid.NewString())
		}

		return nil
	}
}

// hasHeader also matches keys written into the map without
// canonicalization.
func hasHeader(headers http.Header, key string) bool {
	for k, values := range headers {
		if strings.EqualFold(k, key) && len(values) > 0 && values[0] != "" {
			return true
		}
	}

	return false
}

// StaticTokenInterceptor attaches a fixed bearer token. Useful with a
// hand-built transport that has no Auth behind it.
func StaticTokenInterceptor(token string) RequestInterceptor {
	return func(ctx context.Context, hc *HookContext, req *Request) error {
		SetBearer(req, token)

		return nil
	}
}

// SetBearer sets the Authorization header unless the caller already supplied
// one. Tokens that already carry the "Bearer " prefix are used verbatim.
func SetBearer(req *Request, token string) {
	if token == "" {
		return
	}

	if req.Headers == nil {
		req.Headers = make(http.Header)
	}

	if req.Headers.Get("Authorization") != "" {
		return
	}

	if !strings.HasPrefix(token, constants.BearerPrefix) {
		token = constants.BearerPrefix + token
	}

	req.Headers.Set("Authorization", token)
}

// startTimeKey is the request metadata key used by the metrics interceptors.
const startTimeKey = "start_time"

func requestStart(req *Request) (time.Time, bool) {
	if req.Metadata == nil {
		return time.Time{}, false
	}

	start, ok := req.Metadata[startTimeKey].(time.Time)

	return start, ok
}
