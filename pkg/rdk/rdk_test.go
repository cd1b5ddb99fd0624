package rdk_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus-sdk/internal/mockserver"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
	"github.com/fivetwenty-io/directus-sdk/pkg/rdk"
)

type article struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func noEnv(string) (string, bool) { return "", false }

func TestNew_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected string
		err      error
	}{
		{name: "plain", url: "http://example.com", expected: "http://example.com"},
		{name: "trailing slash", url: "https://cms.example.com/", expected: "https://cms.example.com"},
		{name: "no scheme", url: "cms.example.com", expected: "https://cms.example.com"},
		{name: "sub path", url: "https://example.com/directus/", expected: "https://example.com/directus"},
		{name: "empty", url: "  ", err: directus.ErrURLRequired},
		{name: "no host", url: "https://", err: directus.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sdk, err := rdk.New(tt.url, nil)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, sdk.URL())
		})
	}
}

func TestRDK_StorageSelection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name     string
		config   *directus.StorageConfig
		expected any
	}{
		{
			name:     "no persistent environment",
			config:   &directus.StorageConfig{LookupEnv: noEnv},
			expected: &directus.MemoryStorage{},
		},
		{
			name: "persistent environment",
			config: &directus.StorageConfig{LookupEnv: func(key string) (string, bool) {
				return dir + "/env", key == "DIRECTUS_STORAGE_PATH"
			}},
			expected: &directus.DiskStorage{},
		},
		{
			name:     "explicit path",
			config:   &directus.StorageConfig{Path: dir + "/path", LookupEnv: noEnv},
			expected: &directus.DiskStorage{},
		},
		{
			name:     "memory mode ignores the environment",
			config:   &directus.StorageConfig{Mode: directus.StorageModeMemory, Path: dir + "/ignored"},
			expected: &directus.MemoryStorage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sdk, err := rdk.New("http://example.com", &rdk.Options{StorageConfig: tt.config})
			require.NoError(t, err)

			t.Cleanup(func() { assert.NoError(t, sdk.Close()) })

			assert.IsType(t, tt.expected, sdk.Storage())
			assert.Same(t, sdk.Storage(), sdk.Storage())
		})
	}
}

func TestRDK_StorageFailure(t *testing.T) {
	t.Parallel()

	sdk, err := rdk.New("http://example.com", &rdk.Options{
		StorageConfig: &directus.StorageConfig{Mode: directus.StorageModeNATS},
	})
	require.NoError(t, err)

	_, err = sdk.Storage().Get(context.Background(), "auth_token")
	require.ErrorIs(t, err, directus.ErrNATSConfigRequired)
}

type stubAuth struct {
	directus.Auth
}

func TestRDK_InjectedComponents(t *testing.T) {
	t.Parallel()

	storage := directus.NewMemoryStorage()
	server := mockserver.New(t)

	sdk, err := rdk.New(server.URL(), nil)
	require.NoError(t, err)

	transport := sdk.Transport()
	authManager := &stubAuth{}

	injected, err := rdk.New("http://example.com", &rdk.Options{
		Storage:   storage,
		Transport: transport,
		Auth:      authManager,
	})
	require.NoError(t, err)

	assert.Same(t, storage, injected.Storage())
	assert.Same(t, transport, injected.Transport())
	assert.Same(t, authManager, injected.Auth())
	assert.Same(t, storage, injected.Credentials().Storage())
	require.NoError(t, injected.Close())

	_, err = storage.Get(context.Background(), "auth_token")
	require.ErrorIs(t, err, directus.ErrKeyNotFound)
}

func TestRDK_HandlerMemoization(t *testing.T) {
	t.Parallel()

	sdk, err := rdk.New("http://example.com", nil)
	require.NoError(t, err)

	assert.Same(t, sdk.Fields(), sdk.Fields())
	assert.Same(t, sdk.Users(), sdk.Users())
	assert.Same(t, sdk.Auth(), sdk.Auth())

	assert.Same(t, rdk.Items[article](sdk, "articles"), rdk.Items[article](sdk, "articles"))
	assert.NotSame(t, rdk.Items[article](sdk, "articles"), rdk.Items[article](sdk, "news"))
	assert.NotEqual(t,
		rdk.Items[article](sdk, "articles"),
		rdk.Items[directus.Item](sdk, "articles"),
	)

	assert.Same(t,
		rdk.Singleton[directus.Item](sdk, "homepage"),
		rdk.Singleton[directus.Item](sdk, "homepage"),
	)
}

func TestRDK_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	sdk, err := rdk.New("http://example.com", nil)
	require.NoError(t, err)

	const callers = 8

	clients := make([]directus.ItemsClient[article], callers)

	var wg sync.WaitGroup

	for i := range callers {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			clients[i] = rdk.Items[article](sdk, "articles")
		}(i)
	}

	wg.Wait()

	for _, c := range clients[1:] {
		assert.Same(t, clients[0], c)
	}
}

// The fields handler issues exactly one PATCH with the patch as body.
func TestRDK_FieldsUpdateOne(t *testing.T) {
	t.Parallel()

	server := mockserver.New(t)
	server.Expect(http.MethodPatch, "/fields/posts/title").
		WithJSONBody(map[string]any{"meta": map[string]any{"required": true}}).
		Reply(http.StatusOK, map[string]any{})

	sdk, err := rdk.New(server.URL(), &rdk.Options{
		StorageConfig: &directus.StorageConfig{LookupEnv: noEnv},
	})
	require.NoError(t, err)

	_, err = sdk.Fields().UpdateOne(context.Background(), "posts", "title", map[string]any{
		"meta": map[string]any{"required": true},
	})
	require.NoError(t, err)

	server.AssertDone(t)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRDK_Bearer(t *testing.T) {
	t.Parallel()

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("login then authenticated request", func(t *testing.T) {
		t.Parallel()

		server := mockserver.New(t)
		server.Expect(http.MethodPost, "/auth/login").
			WithHeader("Authorization", "").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"expires":       900000,
			}})
		server.Expect(http.MethodGet, "/items/articles").
			WithHeader("Authorization", "Bearer access-1").
			Reply(http.StatusOK, map[string]any{"data": []map[string]any{{"id": 1, "title": "Hello"}}})

		sdk, err := rdk.New(server.URL(), &rdk.Options{
			StorageConfig: &directus.StorageConfig{LookupEnv: noEnv},
			AuthConfig:    &directus.AuthConfig{Clock: clockwork.NewFakeClockAt(epoch)},
		})
		require.NoError(t, err)

		ctx := context.Background()

		_, err = sdk.Auth().Login(ctx, directus.LoginRequest{Email: "admin@example.com", Password: "secret"})
		require.NoError(t, err)

		result, err := rdk.Items[article](sdk, "articles").ReadByQuery(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hello", result.Data[0].Title)
		server.AssertDone(t)
	})

	t.Run("expired token is refreshed first", func(t *testing.T) {
		t.Parallel()

		clock := clockwork.NewFakeClockAt(epoch)
		storage := directus.NewMemoryStorage()
		store := directus.NewCredentialStore(storage, "")

		require.NoError(t, store.Save(context.Background(), &directus.Credentials{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			ExpiresAt:    epoch.Add(10 * time.Second),
		}))

		server := mockserver.New(t)
		server.Expect(http.MethodPost, "/auth/refresh").
			WithJSONBody(map[string]any{"refresh_token": "refresh-1", "mode": "json"}).
			WithHeader("Authorization", "").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{
				"access_token":  "fresh",
				"refresh_token": "refresh-2",
				"expires":       900000,
			}})
		server.Expect(http.MethodGet, "/users/me").
			WithHeader("Authorization", "Bearer fresh").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "email": "admin@example.com"}})

		sdk, err := rdk.New(server.URL(), &rdk.Options{
			Storage:    storage,
			AuthConfig: &directus.AuthConfig{Clock: clock},
		})
		require.NoError(t, err)

		me, err := sdk.Users().Me().Read(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", me.Email)

		creds, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "refresh-2", creds.RefreshToken)
		server.AssertDone(t)
	})

	t.Run("caller header wins", func(t *testing.T) {
		t.Parallel()

		storage := directus.NewMemoryStorage()
		require.NoError(t, directus.NewCredentialStore(storage, "").Save(context.Background(), &directus.Credentials{
			AccessToken: "static-token",
		}))

		server := mockserver.New(t)
		server.Expect(http.MethodGet, "/server/ping").
			WithHeader("Authorization", "Bearer caller").
			ReplyText(http.StatusOK, "pong")

		sdk, err := rdk.New(server.URL(), &rdk.Options{
			Storage:         storage,
			TransportConfig: &directus.TransportConfig{Headers: map[string]string{"Authorization": "Bearer caller"}},
		})
		require.NoError(t, err)

		pong, err := sdk.Server().Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "pong", pong)
		server.AssertDone(t)
	})

	t.Run("no token sends no header", func(t *testing.T) {
		t.Parallel()

		server := mockserver.New(t)
		server.Expect(http.MethodGet, "/server/ping").
			WithHeader("Authorization", "").
			ReplyText(http.StatusOK, "pong")

		sdk, err := rdk.New(server.URL(), &rdk.Options{
			StorageConfig: &directus.StorageConfig{LookupEnv: noEnv},
		})
		require.NoError(t, err)

		_, err = sdk.Server().Ping(context.Background())
		require.NoError(t, err)
		server.AssertDone(t)
	})
}

func TestRDK_Close(t *testing.T) {
	t.Parallel()

	sdk, err := rdk.New("http://example.com", &rdk.Options{
		StorageConfig: &directus.StorageConfig{Path: t.TempDir()},
	})
	require.NoError(t, err)

	require.NoError(t, sdk.Close())

	_ = sdk.Auth()
	_ = sdk.Storage()

	require.NoError(t, sdk.Close())
}
