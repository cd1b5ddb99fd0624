package rdk

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/fivetwenty-io/directus-sdk/internal/auth"
	"github.com/fivetwenty-io/directus-sdk/internal/client"
	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	directushttp "github.com/fivetwenty-io/directus-sdk/internal/http"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// Options configures an RDK. For each of Storage, Transport and Auth either
// a ready instance or a configuration may be given; an instance is used
// as-is and its configuration is ignored.
type Options struct {
	Storage   directus.Storage
	Transport directus.Transport
	Auth      directus.Auth

	StorageConfig   *directus.StorageConfig
	TransportConfig *directus.TransportConfig
	AuthConfig      *directus.AuthConfig

	// Logger is used by the transport and auth when their configurations
	// do not name one.
	Logger directus.Logger
}

// RDK is the entry point to a Directus instance. Storage, transport, auth
// and every handler are created on first use and then reused.
type RDK struct {
	url     string
	options Options

	storageOnce sync.Once
	storage     directus.Storage
	credentials *directus.CredentialStore

	transportOnce sync.Once
	transport     directus.Transport

	authOnce sync.Once
	auth     directus.Auth
	ownAuth  *auth.Auth

	mu           sync.Mutex
	handlers     map[string]any
	ownedStorage directus.Storage
}

// New validates rawURL and returns an RDK. Nothing is connected or
// allocated until a component is first used.
func New(rawURL string, options *Options) (*RDK, error) {
	baseURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	r := &RDK{
		url:      baseURL,
		handlers: make(map[string]any),
	}

	if options != nil {
		r.options = *options
	}

	if r.options.Logger == nil {
		r.options.Logger = directus.NopLogger{}
	}

	return r, nil
}

func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", directus.ErrURLRequired
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", directus.ErrInvalidURL, err)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: %s", directus.ErrInvalidURL, rawURL)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// URL returns the normalized base URL.
func (r *RDK) URL() string {
	return r.url
}

// Storage returns the credential storage.
func (r *RDK) Storage() directus.Storage {
	r.storageOnce.Do(r.initStorage)

	return r.storage
}

// Credentials returns the typed view of the credential keys in Storage.
func (r *RDK) Credentials() *directus.CredentialStore {
	r.storageOnce.Do(r.initStorage)

	return r.credentials
}

func (r *RDK) initStorage() {
	prefix := ""
	if r.options.StorageConfig != nil {
		prefix = r.options.StorageConfig.Prefix
	}

	if r.options.Storage != nil {
		r.storage = r.options.Storage
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ShortHTTPTimeout)
		defer cancel()

		storage, err := directus.NewStorageFromConfig(ctx, r.options.StorageConfig)
		if err != nil {
			r.options.Logger.Error("Failed to create storage", map[string]interface{}{"error": err.Error()})
			storage = &failedStorage{err: fmt.Errorf("creating storage: %w", err)}
		}

		r.storage = storage

		r.mu.Lock()
		r.ownedStorage = storage
		r.mu.Unlock()
	}

	r.credentials = directus.NewCredentialStore(r.storage, prefix)
}

// Transport returns the HTTP transport.
func (r *RDK) Transport() directus.Transport {
	r.transportOnce.Do(func() {
		if r.options.Transport != nil {
			r.transport = r.options.Transport

			return
		}

		r.transport = r.buildTransport()
	})

	return r.transport
}

func (r *RDK) buildTransport() directus.Transport {
	config := r.options.TransportConfig
	if config == nil {
		config = &directus.TransportConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = r.options.Logger
	}

	opts := []directushttp.Option{
		directushttp.WithLogger(logger),
		directushttp.WithDebug(config.Debug),
		directushttp.WithHookContext(&directus.HookContext{BaseURL: r.url, Credentials: r.Credentials()}),
		directushttp.WithHeaders(config.Headers),
		directushttp.WithRequestInterceptor((&bearerInterceptor{rdk: r}).Intercept),
		directushttp.WithHTTPClient(config.HTTPClient),
	}

	if config.Timeout > 0 {
		opts = append(opts, directushttp.WithTimeout(config.Timeout))
	}

	if config.UserAgent != "" {
		opts = append(opts, directushttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		waitMin, waitMax := config.RetryWaitMin, config.RetryWaitMax
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, directushttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	for _, interceptor := range config.RequestInterceptors {
		opts = append(opts, directushttp.WithRequestInterceptor(interceptor))
	}

	for _, interceptor := range config.ResponseInterceptors {
		opts = append(opts, directushttp.WithResponseInterceptor(interceptor))
	}

	return directushttp.NewClient(r.url, opts...)
}

// Auth returns the authentication manager.
func (r *RDK) Auth() directus.Auth {
	r.authOnce.Do(func() {
		if r.options.Auth != nil {
			r.auth = r.options.Auth

			return
		}

		config := directus.AuthConfig{}
		if r.options.AuthConfig != nil {
			config = *r.options.AuthConfig
		}

		if config.Logger == nil {
			config.Logger = r.options.Logger
		}

		a := auth.New(r.Transport(), r.Credentials(), &config)

		r.mu.Lock()
		r.ownAuth = a
		r.mu.Unlock()

		r.auth = a
	})

	return r.auth
}

// Close stops background refreshes and releases storage created by the
// RDK. Injected components are left untouched.
func (r *RDK) Close() error {
	r.mu.Lock()
	ownAuth, storage := r.ownAuth, r.ownedStorage
	r.mu.Unlock()

	if ownAuth != nil {
		ownAuth.Close()
	}

	if storage != nil {
		return directus.CloseStorage(storage)
	}

	return nil
}

// Activity returns the activity handler.
func (r *RDK) Activity() directus.ActivityClient {
	return handler(r, "activity", client.NewActivityClient)
}

// Collections returns the collections handler.
func (r *RDK) Collections() directus.CollectionsClient {
	return handler(r, "collections", client.NewCollectionsClient)
}

// Fields returns the fields handler.
func (r *RDK) Fields() directus.FieldsClient {
	return handler(r, "fields", client.NewFieldsClient)
}

// Files returns the files handler.
func (r *RDK) Files() directus.FilesClient {
	return handler(r, "files", client.NewFilesClient)
}

// Folders returns the folders handler.
func (r *RDK) Folders() directus.ItemsClient[directus.Folder] {
	return handler(r, "folders", client.NewFoldersClient)
}

// Permissions returns the permissions handler.
func (r *RDK) Permissions() directus.ItemsClient[directus.Permission] {
	return handler(r, "permissions", client.NewPermissionsClient)
}

// Presets returns the presets handler.
func (r *RDK) Presets() directus.ItemsClient[directus.Preset] {
	return handler(r, "presets", client.NewPresetsClient)
}

// Relations returns the relations handler.
func (r *RDK) Relations() directus.RelationsClient {
	return handler(r, "relations", client.NewRelationsClient)
}

// Revisions returns the revisions handler.
func (r *RDK) Revisions() directus.ItemsClient[directus.Revision] {
	return handler(r, "revisions", client.NewRevisionsClient)
}

// Roles returns the roles handler.
func (r *RDK) Roles() directus.ItemsClient[directus.Role] {
	return handler(r, "roles", client.NewRolesClient)
}

// Users returns the users handler.
func (r *RDK) Users() directus.UsersClient {
	return handler(r, "users", client.NewUsersClient)
}

// Settings returns the settings handler.
func (r *RDK) Settings() directus.SingletonClient[directus.Settings] {
	return handler(r, "settings", client.NewSettingsClient)
}

// Server returns the server handler.
func (r *RDK) Server() directus.ServerClient {
	return handler(r, "server", client.NewServerClient)
}

// Utils returns the utils handler.
func (r *RDK) Utils() directus.UtilsClient {
	return handler(r, "utils", client.NewUtilsClient)
}

// GraphQL returns the GraphQL handler.
func (r *RDK) GraphQL() directus.GraphQLClient {
	return handler(r, "graphql", client.NewGraphQLClient)
}

// Items returns the handler for collection, decoding items into T. The
// same handler is returned for the same collection and type.
func Items[T any](r *RDK, collection string) directus.ItemsClient[T] {
	key := fmt.Sprintf("items:%s:%s", collection, reflect.TypeFor[T]())

	return handler(r, key, func(transport directus.Transport) *client.ItemsClient[T] {
		return client.NewItemsClient[T](transport, collection)
	})
}

// Singleton returns the handler for the single-item collection, decoding
// it into T.
func Singleton[T any](r *RDK, collection string) directus.SingletonClient[T] {
	key := fmt.Sprintf("singleton:%s:%s", collection, reflect.TypeFor[T]())

	return handler(r, key, func(transport directus.Transport) *client.SingletonClient[T] {
		return client.NewSingletonClient[T](transport, collection)
	})
}

func handler[H any](r *RDK, key string, build func(directus.Transport) H) H {
	transport := r.Transport()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.handlers[key].(H); ok {
		return existing
	}

	h := build(transport)
	r.handlers[key] = h

	return h
}

// failedStorage reports a storage construction error on every call.
type failedStorage struct {
	err error
}

func (s *failedStorage) Get(context.Context, string) (string, error) { return "", s.err }
func (s *failedStorage) Set(context.Context, string, string) error   { return s.err }
func (s *failedStorage) Delete(context.Context, string) error        { return s.err }
