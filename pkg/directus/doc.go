// Package directus provides types, interfaces, and helpers for working with
// the Directus REST and GraphQL APIs.
//
// # Overview
//
// The directus package defines the domain types (Collection, Field, File,
// User, ...), the query builder, the error taxonomy, and the interfaces for
// resource handlers (ItemsClient, FieldsClient, UsersClient, ...). Concrete
// implementations are wired by the rdk package, which constructs storage,
// transport and authentication lazily and memoizes every handler.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/directus-sdk/pkg/directus"
//	  "github.com/fivetwenty-io/directus-sdk/pkg/rdk"
//	)
//
//	type Post struct {
//	  ID    int    `json:"id,omitempty"`
//	  Title string `json:"title,omitempty"`
//	}
//
//	func example() {
//	  ctx := context.Background()
//	  sdk, err := rdk.New("https://cms.example.com", nil)
//	  if err != nil { log.Fatal(err) }
//
//	  _, err = sdk.Auth().Login(ctx, directus.LoginRequest{Email: "admin@example.com", Password: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  posts, err := rdk.Items[Post](sdk, "posts").ReadByQuery(ctx,
//	    directus.NewQuery().WithFields("id", "title").WithLimit(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = posts
//	}
//
// # Storage
//
// Credentials live in a Storage: MemoryStorage, DiskStorage (persistent) or
// NATSKVStorage. NewStorageFromConfig selects one; an explicit mode wins,
// otherwise a configured path or DIRECTUS_STORAGE_PATH selects persistent
// storage and anything else falls back to memory.
//
// # Errors
//
// Non-2xx responses are returned as *HTTPError carrying the parsed Directus
// error payload. Helpers such as IsNotFound, IsUnauthorized and IsForbidden
// branch on common cases; IsNetworkError, IsAuthError and IsValidationError
// cover the rest of the taxonomy.
//
// # Interceptors
//
// Request interceptors receive a HookContext (base URL and a credential
// reader) and may rewrite headers, body and query before the request is sent.
// RequestIDInterceptor, HeaderInterceptor, LoggingInterceptor and the
// metrics interceptors are provided.
package directus
