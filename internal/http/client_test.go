package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directushttp "github.com/fivetwenty-io/directus-sdk/internal/http"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

var errRejected = errors.New("rejected by interceptor")

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/items/posts", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "directus-sdk-go/1.0", request.Header.Get("User-Agent"))
			assert.Empty(t, request.Header.Get("Authorization"))

			_ = json.NewEncoder(writer).Encode(map[string]any{"data": []any{}})
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL + "/")

		resp, err := client.Do(context.Background(), &directushttp.Request{
			Method: http.MethodGet,
			Path:   "/items/posts",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
		assert.Equal(t, server.URL, client.BaseURL())
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "id,title", request.URL.Query().Get("fields"))
			assert.Equal(t, "10", request.URL.Query().Get("limit"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL)

		query := url.Values{}
		query.Set("fields", "id,title")
		query.Set("limit", "10")

		_, err := client.Get(context.Background(), "items/posts", query)
		require.NoError(t, err)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]any
			err := json.NewDecoder(request.Body).Decode(&body)
			assert.NoError(t, err)
			assert.Equal(t, "Hello", body["title"])

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL)

		_, err := client.Post(context.Background(), "/items/posts", map[string]string{"title": "Hello"})
		require.NoError(t, err)
	})

	t.Run("raw body keeps caller content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "text/csv", request.Header.Get("Content-Type"))

			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, "a,b\n1,2\n", string(body))
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &directushttp.Request{
			Method:  http.MethodPost,
			Path:    "/utils/import/posts",
			Body:    []byte("a,b\n1,2\n"),
			Headers: http.Header{"Content-Type": []string{"text/csv"}},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"errors":[{"message":"Token expired.","extensions":{"code":"TOKEN_EXPIRED"}}]}`))
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/users/me", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var httpErr *directus.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "Token expired.", httpErr.FirstError().Message)
		assert.True(t, directus.IsUnauthorized(err))
	})

	t.Run("network error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		baseURL := server.URL
		server.Close()

		client := directushttp.NewClient(baseURL, directushttp.WithTimeout(time.Second))

		_, err := client.Get(context.Background(), "/server/ping", nil)
		require.Error(t, err)
		assert.True(t, directus.IsNetworkError(err))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "custom-agent", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL, directushttp.WithUserAgent("custom-agent"))

		resp, err := client.Do(context.Background(), &directushttp.Request{
			Method:  http.MethodGet,
			Path:    "/server/info",
			Headers: http.Header{"X-Custom-Header": []string{"custom-value"}},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"data": "pong"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := directushttp.NewClient(server.URL, directushttp.WithLogger(logger), directushttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/server/ping", nil)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*directushttp.Client, context.Context) (*directushttp.Response, error)
	}{
		{
			name:   "GET",
			method: http.MethodGet,
			fn: func(c *directushttp.Client, ctx context.Context) (*directushttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: http.MethodPost,
			fn: func(c *directushttp.Client, ctx context.Context) (*directushttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: http.MethodPut,
			fn: func(c *directushttp.Client, ctx context.Context) (*directushttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: http.MethodPatch,
			fn: func(c *directushttp.Client, ctx context.Context) (*directushttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: http.MethodDelete,
			fn: func(c *directushttp.Client, ctx context.Context) (*directushttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := directushttp.NewClient(server.URL)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL, directushttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL, directushttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL, directushttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load()) // Should not retry
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("run in order with the hook context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "first,second", request.Header.Get("X-Order"))
			assert.Equal(t, "Bearer from-store", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		storage := directus.NewMemoryStorage()
		store := directus.NewCredentialStore(storage, "")
		require.NoError(t, store.Save(context.Background(), &directus.Credentials{AccessToken: "from-store"}))

		var seenBaseURL string

		client := directushttp.NewClient(server.URL,
			directushttp.WithHookContext(&directus.HookContext{Credentials: store}),
			directushttp.WithRequestInterceptor(func(ctx context.Context, hc *directus.HookContext, req *directus.Request) error {
				seenBaseURL = hc.BaseURL
				req.Headers.Set("X-Order", "first")

				return nil
			}),
			directushttp.WithRequestInterceptor(func(ctx context.Context, hc *directus.HookContext, req *directus.Request) error {
				req.Headers.Set("X-Order", req.Headers.Get("X-Order")+",second")

				creds, err := hc.Credentials.Load(ctx)
				if err != nil {
					return err
				}

				directus.SetBearer(req, creds.AccessToken)

				return nil
			}),
		)

		_, err := client.Get(context.Background(), "/items/posts", nil)
		require.NoError(t, err)
		assert.Equal(t, server.URL, seenBaseURL)
		assert.Equal(t, 2, client.Interceptors().RequestInterceptors())
	})

	t.Run("request interceptor error stops dispatch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := directushttp.NewClient(server.URL,
			directushttp.WithRequestInterceptor(func(context.Context, *directus.HookContext, *directus.Request) error {
				return errRejected
			}),
		)

		_, err := client.Get(context.Background(), "/items/posts", nil)
		require.ErrorIs(t, err, errRejected)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("response interceptor sees errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		var status int

		client := directushttp.NewClient(server.URL,
			directushttp.WithResponseInterceptor(func(ctx context.Context, req *directus.Request, resp *directus.Response) error {
				status = resp.StatusCode
				assert.Error(t, resp.Error)

				return nil
			}),
		)

		_, err := client.Get(context.Background(), "/items/missing", nil)
		require.Error(t, err)
		assert.True(t, directus.IsNotFound(err))
		assert.Equal(t, http.StatusNotFound, status)
	})
}
