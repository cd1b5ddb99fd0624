// Package rdk is the entry point of the Directus SDK.
//
// An RDK ties a credential Storage, an HTTP Transport and an Auth manager to
// one Directus instance and hands out typed handlers for its endpoints.
// Every component is built on first use and reused afterwards.
//
// Quick start
//
//	sdk, err := rdk.New("https://cms.example.com", nil)
//	if err != nil { log.Fatal(err) }
//	defer sdk.Close()
//
//	_, err = sdk.Auth().Login(ctx, directus.LoginRequest{Email: "admin@example.com", Password: "secret"})
//	if err != nil { log.Fatal(err) }
//
//	posts := rdk.Items[Post](sdk, "posts")
//	page, err := posts.ReadByQuery(ctx, directus.NewQuery().WithLimit(10))
//
// # Components
//
// Options accepts either ready instances (Storage, Transport, Auth) or
// configurations (StorageConfig, TransportConfig, AuthConfig). Instances are
// used exactly as given. When the RDK builds the transport itself it installs
// an interceptor that refreshes an expiring session and sets the
// Authorization header; an injected transport gets no such interceptor.
//
// Without a storage mode, credentials are kept on disk when
// StorageConfig.Path or DIRECTUS_STORAGE_PATH names a directory, and in
// memory otherwise.
package rdk
