package auth

import "context"

type contextKey string

const requestModeKey contextKey = "directus-auth-request-mode"

type requestMode int

const (
	modeDefault requestMode = iota
	// modeNoRefresh sends the current bearer but never triggers a refresh.
	modeNoRefresh
	// modeAnonymous sends no bearer at all.
	modeAnonymous
)

// WithoutRefresh marks requests issued with ctx so the bearer interceptor
// does not try to refresh the session before sending them.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestModeKey, modeNoRefresh)
}

// Anonymous marks requests issued with ctx as carrying no bearer token.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestModeKey, modeAnonymous)
}

// SkipsRefresh reports whether ctx forbids refreshing the session.
func SkipsRefresh(ctx context.Context) bool {
	mode, _ := ctx.Value(requestModeKey).(requestMode)

	return mode != modeDefault
}

// IsAnonymous reports whether ctx forbids attaching a bearer token.
func IsAnonymous(ctx context.Context) bool {
	mode, _ := ctx.Value(requestModeKey).(requestMode)

	return mode == modeAnonymous
}
