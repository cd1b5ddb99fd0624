package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as ping.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry settings. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Authentication.
const (
	// TokenExpirationBuffer is the margin before expiry at which a token is refreshed.
	TokenExpirationBuffer = 30 * time.Second

	// AuthModeJSON asks the server to return the refresh token in the response body.
	AuthModeJSON = "json"

	// BearerPrefix is prepended to access tokens in the Authorization header.
	BearerPrefix = "Bearer "

	// TokenPartsCount is the expected number of parts in a JWT token.
	TokenPartsCount = 3
)

// Credential storage keys.
const (
	// StorageKeyToken holds the access token.
	StorageKeyToken = "auth_token"

	// StorageKeyExpires holds the absolute expiry in Unix milliseconds.
	StorageKeyExpires = "auth_expires"

	// StorageKeyRefreshToken holds the refresh token.
	StorageKeyRefreshToken = "auth_refresh_token"

	// EnvStoragePath selects persistent storage when set.
	EnvStoragePath = "DIRECTUS_STORAGE_PATH"

	// DefaultNATSBucket is the JetStream key/value bucket used for credentials.
	DefaultNATSBucket = "directus_credentials"

	// DiskCacheSizeMax bounds the in-memory read cache of the disk store.
	DiskCacheSizeMax = 64 * 1024
)

// API paths.
const (
	PathAuthLogin           = "/auth/login"
	PathAuthRefresh         = "/auth/refresh"
	PathAuthLogout          = "/auth/logout"
	PathAuthPasswordRequest = "/auth/password/request"
	PathAuthPasswordReset   = "/auth/password/reset"
	PathUsersMe             = "/users/me"
	PathGraphQL             = "/graphql"
	PathGraphQLSystem       = "/graphql/system"
)

// SystemCollectionPrefix marks collections that are served from their own root path.
const SystemCollectionPrefix = "directus_"

// Concurrency and pagination limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 100

	// DefaultPrimaryKey is the primary key field assumed for item collections.
	DefaultPrimaryKey = "id"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 60
)
