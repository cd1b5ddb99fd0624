package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const refreshFlight = "refresh"

// Auth implements directus.Auth over a Transport and a CredentialStore. It
// is the only writer of the credential record.
type Auth struct {
	transport   directus.Transport
	store       *directus.CredentialStore
	clock       clockwork.Clock
	margin      time.Duration
	autoRefresh bool
	logger      directus.Logger

	flight singleflight.Group

	// refreshing holds the single slot shared by a running refresh and
	// logout.
	refreshing chan struct{}

	// sessionMu serializes credential writes. generation counts session
	// replacements; a refresh started under an older generation is dropped.
	sessionMu  sync.Mutex
	generation uint64

	mu          sync.Mutex
	staticToken string
	seeded      bool
	timer       clockwork.Timer
}

var _ directus.Auth = (*Auth)(nil)

// New creates an Auth. A nil config uses the defaults: lazy refresh with a
// 30s margin on the real clock.
func New(transport directus.Transport, store *directus.CredentialStore, config *directus.AuthConfig) *Auth {
	if config == nil {
		config = &directus.AuthConfig{}
	}

	a := &Auth{
		transport:   transport,
		store:       store,
		clock:       config.Clock,
		margin:      config.RefreshMargin,
		autoRefresh: config.AutoRefresh,
		logger:      config.Logger,
		staticToken: config.StaticToken,
		refreshing:  make(chan struct{}, 1),
	}

	if a.clock == nil {
		a.clock = clockwork.NewRealClock()
	}

	if a.margin <= 0 {
		a.margin = constants.TokenExpirationBuffer
	}

	if a.logger == nil {
		a.logger = directus.NopLogger{}
	}

	return a
}

// Login authenticates with email and password and stores the issued tokens.
func (a *Auth) Login(ctx context.Context, credentials directus.LoginRequest) (*directus.AuthResult, error) {
	if credentials.Email == "" {
		return nil, &directus.AuthError{Op: "login", Err: directus.Required("email")}
	}

	if credentials.Password == "" {
		return nil, &directus.AuthError{Op: "login", Err: directus.Required("password")}
	}

	body := map[string]any{
		"email":    credentials.Email,
		"password": credentials.Password,
		"mode":     constants.AuthModeJSON,
	}

	if credentials.OTP != "" {
		body["otp"] = credentials.OTP
	}

	resp, err := a.transport.Send(Anonymous(ctx), http.MethodPost, constants.PathAuthLogin, body, nil)
	if err != nil {
		return nil, &directus.AuthError{Op: "login", Err: err}
	}

	creds, err := parseTokenResponse(resp.Body, a.clock.Now())
	if err != nil {
		return nil, &directus.AuthError{Op: "login", Err: err}
	}

	if err := a.replace(ctx, creds); err != nil {
		return nil, &directus.AuthError{Op: "login", Err: err}
	}

	a.logger.Debug("Logged in", map[string]interface{}{
		"email":      credentials.Email,
		"expires_at": creds.ExpiresAt,
	})

	return toResult(creds), nil
}

// Refresh exchanges the stored refresh token for a new token set.
func (a *Auth) Refresh(ctx context.Context) (*directus.AuthResult, error) {
	if err := a.seed(ctx); err != nil {
		return nil, &directus.AuthError{Op: "refresh", Err: err}
	}

	return a.coalescedRefresh(ctx, true)
}

// RefreshIfExpired refreshes the session only when the access token is
// within the refresh margin of its expiry. Sessions without a token or
// without an expiry (static tokens) are left alone.
func (a *Auth) RefreshIfExpired(ctx context.Context) error {
	if err := a.seed(ctx); err != nil {
		return &directus.AuthError{Op: "refresh", Err: err}
	}

	creds, err := a.store.Load(ctx)
	if err != nil {
		return &directus.AuthError{Op: "refresh", Err: err}
	}

	if creds.AccessToken == "" || !creds.Expired(a.clock.Now(), a.margin) {
		return nil
	}

	_, err = a.coalescedRefresh(ctx, false)

	return err
}

// coalescedRefresh joins the in-flight refresh, or starts one. The shared
// refresh is detached from the caller's cancellation so one caller giving up
// does not fail the others.
func (a *Auth) coalescedRefresh(ctx context.Context, force bool) (*directus.AuthResult, error) {
	ch := a.flight.DoChan(refreshFlight, func() (interface{}, error) {
		return a.doRefresh(context.WithoutCancel(ctx), force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		result, _ := res.Val.(*directus.AuthResult)

		return result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	}
}

func (a *Auth) doRefresh(ctx context.Context, force bool) (*directus.AuthResult, error) {
	a.refreshing <- struct{}{}
	defer func() { <-a.refreshing }()

	gen := a.currentGeneration()

	creds, err := a.store.Load(ctx)
	if err != nil {
		return nil, &directus.AuthError{Op: "refresh", Err: err}
	}

	// A refresh that finished just before this flight started already
	// replaced the token.
	if !force && creds.AccessToken != "" && !creds.Expired(a.clock.Now(), a.margin) {
		return toResult(creds), nil
	}

	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, &directus.AuthError{Op: "refresh", Err: directus.ErrNotAuthenticated}
	}

	if creds.AccessToken != "" && creds.ExpiresAt.IsZero() && creds.RefreshToken == "" {
		return nil, &directus.AuthError{Op: "refresh", Err: directus.ErrStaticTokenRefresh}
	}

	if creds.RefreshToken == "" {
		a.invalidate(ctx, gen)

		return nil, &directus.AuthError{Op: "refresh", Err: directus.ErrNoRefreshToken}
	}

	body := map[string]any{
		"refresh_token": creds.RefreshToken,
		"mode":          constants.AuthModeJSON,
	}

	resp, err := a.transport.Send(Anonymous(ctx), http.MethodPost, constants.PathAuthRefresh, body, nil)
	if err != nil {
		a.logger.Warn("Token refresh failed", map[string]interface{}{"error": err.Error()})
		a.invalidate(ctx, gen)

		return nil, &directus.AuthError{Op: "refresh", Err: err}
	}

	next, err := parseTokenResponse(resp.Body, a.clock.Now())
	if err != nil {
		a.invalidate(ctx, gen)

		return nil, &directus.AuthError{Op: "refresh", Err: err}
	}

	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}

	committed, err := a.commit(ctx, gen, next)
	if err != nil {
		return nil, &directus.AuthError{Op: "refresh", Err: err}
	}

	if !committed {
		a.logger.Debug("Dropped refresh result for a replaced session", nil)

		// A login or static token that replaced the session is still usable.
		if current, err := a.store.Load(ctx); err == nil && current.AccessToken != "" {
			return toResult(current), nil
		}

		return nil, &directus.AuthError{Op: "refresh", Err: directus.ErrSessionReplaced}
	}

	a.logger.Debug("Token refreshed", map[string]interface{}{"expires_at": next.ExpiresAt})

	return toResult(next), nil
}

// Logout invalidates the remote session and always clears local
// credentials. The remote error, if any, is returned after the local clear.
func (a *Auth) Logout(ctx context.Context) error {
	a.stopTimer()

	// Wait for a running refresh so the remote logout uses the latest
	// refresh token, and keep new refreshes out until the clear is done.
	select {
	case a.refreshing <- struct{}{}:
		defer func() { <-a.refreshing }()
	case <-ctx.Done():
	}

	creds, loadErr := a.store.Load(ctx)

	var remoteErr error

	if loadErr == nil && creds.RefreshToken != "" {
		body := map[string]any{"refresh_token": creds.RefreshToken}
		_, remoteErr = a.transport.Send(WithoutRefresh(ctx), http.MethodPost, constants.PathAuthLogout, body, nil)
	}

	a.mu.Lock()
	a.staticToken = ""
	a.seeded = true
	a.mu.Unlock()

	a.sessionMu.Lock()
	a.generation++
	err := a.store.Clear(ctx)
	a.sessionMu.Unlock()

	if err != nil {
		return &directus.AuthError{Op: "logout", Err: err}
	}

	a.logger.Debug("Logged out", nil)

	if remoteErr != nil {
		return &directus.AuthError{Op: "logout", Err: remoteErr}
	}

	if loadErr != nil {
		return &directus.AuthError{Op: "logout", Err: loadErr}
	}

	return nil
}

// Static validates token against /users/me and stores it as a
// non-expiring access token with no refresh token.
func (a *Auth) Static(ctx context.Context, token string) error {
	if token == "" {
		return &directus.AuthError{Op: "static", Err: directus.Required("token")}
	}

	query := url.Values{"access_token": []string{token}}

	_, err := a.transport.Send(Anonymous(ctx), http.MethodGet, constants.PathUsersMe, nil, query)
	if err != nil {
		return &directus.AuthError{Op: "static", Err: err}
	}

	a.stopTimer()

	if err := a.replace(ctx, &directus.Credentials{AccessToken: token}); err != nil {
		return &directus.AuthError{Op: "static", Err: err}
	}

	return nil
}

// Token returns the current access token, or "" when there is no session.
func (a *Auth) Token(ctx context.Context) (string, error) {
	if err := a.seed(ctx); err != nil {
		return "", err
	}

	creds, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}

	return creds.AccessToken, nil
}

// State reports where the session is in its lifecycle.
func (a *Auth) State(ctx context.Context) (directus.AuthState, error) {
	if err := a.seed(ctx); err != nil {
		return "", err
	}

	creds, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}

	switch {
	case creds.AccessToken == "":
		return directus.AuthStateNoSession, nil
	case creds.ExpiresAt.IsZero():
		return directus.AuthStateStatic, nil
	case creds.Expired(a.clock.Now(), 0):
		return directus.AuthStateExpired, nil
	default:
		return directus.AuthStateAuthenticated, nil
	}
}

// RequestPasswordReset emails a reset link pointing at resetURL.
func (a *Auth) RequestPasswordReset(ctx context.Context, email, resetURL string) error {
	if email == "" {
		return &directus.AuthError{Op: "password request", Err: directus.Required("email")}
	}

	body := map[string]any{"email": email}
	if resetURL != "" {
		body["reset_url"] = resetURL
	}

	_, err := a.transport.Send(Anonymous(ctx), http.MethodPost, constants.PathAuthPasswordRequest, body, nil)
	if err != nil {
		return &directus.AuthError{Op: "password request", Err: err}
	}

	return nil
}

// ResetPassword sets a new password using the token from the reset email.
func (a *Auth) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return &directus.AuthError{Op: "password reset", Err: directus.Required("token")}
	}

	body := map[string]any{"token": token, "password": password}

	_, err := a.transport.Send(Anonymous(ctx), http.MethodPost, constants.PathAuthPasswordReset, body, nil)
	if err != nil {
		return &directus.AuthError{Op: "password reset", Err: err}
	}

	return nil
}

// Close stops the auto-refresh timer.
func (a *Auth) Close() {
	a.stopTimer()
}

// seed writes the configured static token on first use. Construction does
// no I/O, so the write is deferred until a session is first needed.
func (a *Auth) seed(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seeded || a.staticToken == "" {
		return nil
	}

	if err := a.store.Save(ctx, &directus.Credentials{AccessToken: a.staticToken}); err != nil {
		return fmt.Errorf("storing static token: %w", err)
	}

	a.seeded = true

	return nil
}

func (a *Auth) currentGeneration() uint64 {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	return a.generation
}

// replace stores creds as a new session, superseding any refresh in flight.
func (a *Auth) replace(ctx context.Context, creds *directus.Credentials) error {
	a.sessionMu.Lock()
	a.generation++
	err := a.store.Save(ctx, creds)
	a.sessionMu.Unlock()

	if err != nil {
		return err
	}

	a.stored(creds)

	return nil
}

// commit stores refreshed creds unless the session changed since gen.
func (a *Auth) commit(ctx context.Context, gen uint64, creds *directus.Credentials) (bool, error) {
	a.sessionMu.Lock()

	if a.generation != gen {
		a.sessionMu.Unlock()

		return false, nil
	}

	err := a.store.Save(ctx, creds)
	a.sessionMu.Unlock()

	if err != nil {
		return false, err
	}

	a.stored(creds)

	return true, nil
}

func (a *Auth) stored(creds *directus.Credentials) {
	a.mu.Lock()
	a.staticToken = ""
	a.seeded = true
	a.mu.Unlock()

	a.scheduleRefresh(creds)
}

// invalidate drops the session after a failed refresh, unless a newer
// session replaced it meanwhile.
func (a *Auth) invalidate(ctx context.Context, gen uint64) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.generation != gen {
		return
	}

	a.generation++
	a.stopTimer()

	if err := a.store.Clear(ctx); err != nil {
		a.logger.Error("Failed to clear credentials", map[string]interface{}{"error": err.Error()})
	}
}

func (a *Auth) scheduleRefresh(creds *directus.Credentials) {
	if !a.autoRefresh || creds.ExpiresAt.IsZero() || creds.RefreshToken == "" {
		return
	}

	delay := creds.ExpiresAt.Sub(a.clock.Now()) - a.margin
	if delay < 0 {
		delay = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}

	a.timer = a.clock.AfterFunc(delay, func() {
		go a.runScheduledRefresh()
	})
}

func (a *Auth) runScheduledRefresh() {
	_, err := a.coalescedRefresh(context.Background(), true)
	if err != nil && !errors.Is(err, context.Canceled) &&
		!errors.Is(err, directus.ErrNotAuthenticated) && !errors.Is(err, directus.ErrSessionReplaced) {
		a.logger.Warn("Automatic token refresh failed", map[string]interface{}{"error": err.Error()})
	}
}

func (a *Auth) stopTimer() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func toResult(creds *directus.Credentials) *directus.AuthResult {
	return &directus.AuthResult{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
	}
}
