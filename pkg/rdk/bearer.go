package rdk

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/directus-sdk/internal/auth"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// bearerInterceptor refreshes an expiring session and attaches the access
// token to every request sent through a transport built by the RDK.
type bearerInterceptor struct {
	rdk *RDK
}

// Intercept implements directus.RequestInterceptor.
func (b *bearerInterceptor) Intercept(ctx context.Context, hc *directus.HookContext, req *directus.Request) error {
	if auth.IsAnonymous(ctx) {
		return nil
	}

	if !auth.SkipsRefresh(ctx) {
		err := b.rdk.Auth().RefreshIfExpired(ctx)
		if err != nil {
			return err
		}
	}

	if hc == nil || hc.Credentials == nil {
		return nil
	}

	creds, err := hc.Credentials.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	directus.SetBearer(req, creds.AccessToken)

	return nil
}
