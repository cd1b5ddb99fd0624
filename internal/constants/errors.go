package constants

import "errors"

// Configuration errors.
var (
	ErrNoURLConfigured  = errors.New("no Directus URL configured, use 'directus config set url <url>' or --url")
	ErrNotLoggedIn      = errors.New("not logged in, use 'directus login' first")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
)

// Argument errors.
var (
	ErrInvalidJSONInput  = errors.New("invalid JSON input")
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrPasswordRequired  = errors.New("password is required")
	ErrEmailRequired     = errors.New("email is required")
)
