package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// tokenResponse is the payload of /auth/login and /auth/refresh.
type tokenResponse struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		// Expires is the token lifetime in milliseconds.
		Expires int64 `json:"expires"`
	} `json:"data"`
}

// parseTokenResponse decodes a token payload into credentials. When the
// server omits the lifetime, the JWT exp claim is used instead.
func parseTokenResponse(body []byte, now time.Time) (*directus.Credentials, error) {
	var resp tokenResponse

	err := json.Unmarshal(body, &resp)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	if resp.Data.AccessToken == "" {
		return nil, fmt.Errorf("parsing token response: %w", directus.ErrEmptyResponse)
	}

	creds := &directus.Credentials{
		AccessToken:  resp.Data.AccessToken,
		RefreshToken: resp.Data.RefreshToken,
	}

	if resp.Data.Expires > 0 {
		creds.ExpiresAt = now.Add(time.Duration(resp.Data.Expires) * time.Millisecond)

		return creds, nil
	}

	if expiresAt, err := ExpiryFromJWT(resp.Data.AccessToken); err == nil {
		creds.ExpiresAt = expiresAt
	}

	return creds, nil
}

// ExpiryFromJWT reads the exp claim of a JWT without verifying its signature.
func ExpiryFromJWT(token string) (time.Time, error) {
	token = strings.TrimPrefix(token, constants.BearerPrefix)

	if strings.Count(token, ".") != constants.TokenPartsCount-1 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing JWT: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}
