package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// Request and Response are the interceptor-visible request/response types.
type (
	Request  = directus.Request
	Response = directus.Response
)

const defaultUserAgent = "directus-sdk-go/1.0"

// Client is the HTTP transport for the Directus API.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	logger       directus.Logger
	debug        bool
	userAgent    string
	hookContext  *directus.HookContext
	interceptors *directus.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger directus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig enables automatic retries of 5xx and 429 responses and of
// connection errors.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithHeaders sends headers with every request that does not set them.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if len(headers) > 0 {
			c.interceptors.AddRequestInterceptor(directus.HeaderInterceptor(headers))
		}
	}
}

// WithHookContext sets the context handed to request interceptors.
func WithHookContext(hc *directus.HookContext) Option {
	return func(c *Client) {
		c.hookContext = hc
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(interceptor directus.RequestInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(interceptor directus.ResponseInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddResponseInterceptor(interceptor)
	}
}

// NewClient creates a transport for baseURL. Retries are off unless
// WithRetryConfig is given.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	// Hand the final response back unchanged so non-2xx bodies can be parsed.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   retryClient,
		logger:       directus.NopLogger{},
		userAgent:    defaultUserAgent,
		hookContext:  &directus.HookContext{BaseURL: strings.TrimRight(baseURL, "/")},
		interceptors: directus.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug && retryClient.RetryMax > 0 {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	if client.hookContext.BaseURL == "" {
		client.hookContext.BaseURL = client.baseURL
	}

	return client
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Interceptors returns the interceptor chain.
func (c *Client) Interceptors() *directus.InterceptorChain {
	return c.interceptors
}

// HookContext returns the context handed to request interceptors.
func (c *Client) HookContext() *directus.HookContext {
	return c.hookContext
}

// Do runs the interceptor chain, sends the request and reads the response.
// For non-2xx responses both the response and an *directus.HTTPError are
// returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Headers == nil {
		req.Headers = make(http.Header)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, c.hookContext, req)
	if err != nil {
		return nil, err
	}

	fullURL, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, values := range req.Headers {
		httpReq.Header.Del(key)

		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		netErr := &directus.NetworkError{Method: req.Method, URL: fullURL, Err: err}
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, &Response{Error: netErr})

		return nil, netErr
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &directus.NetworkError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Error = directus.ParseHTTPError(resp.StatusCode, respBody)
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, err
	}

	if resp.Error != nil {
		return resp, resp.Error
	}

	return resp, nil
}

// Send builds and sends a request.
func (c *Client) Send(ctx context.Context, method, path string, body any, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Send(ctx, http.MethodGet, path, nil, query)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Send(ctx, http.MethodPost, path, body, nil)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Send(ctx, http.MethodPut, path, body, nil)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Send(ctx, http.MethodPatch, path, body, nil)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Send(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("building URL for %s: %w", path, err)
	}

	if len(query) > 0 {
		existing := u.Query()

		for key, values := range query {
			for _, v := range values {
				existing.Add(key, v)
			}
		}

		u.RawQuery = existing.Encode()
	}

	return u.String(), nil
}

// encodeBody returns the wire body and its content type. Raw bodies carry
// no content type; the caller sets it through request headers.
func encodeBody(body any) (any, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return bytes.NewReader(data), "application/json", nil
	}
}

// leveledLogger adapts directus.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger directus.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
