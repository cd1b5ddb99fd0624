package client_test

import (
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus-sdk/internal/client"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

func TestFieldsClient_UpdateOne(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodPatch, "/fields/posts/title").
		WithJSONBody(map[string]any{"meta": map[string]any{"required": true}}).
		Reply(http.StatusOK, map[string]any{})

	fields := client.NewFieldsClient(transport)

	_, err := fields.UpdateOne(context.Background(), "posts", "title", map[string]any{
		"meta": map[string]any{"required": true},
	})
	require.NoError(t, err)
	server.AssertDone(t)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSchemaClients(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fields", func(t *testing.T) {
		t.Parallel()

		server, transport := newServer(t)
		server.Expect(http.MethodGet, "/fields").
			Reply(http.StatusOK, map[string]any{"data": []map[string]any{{"collection": "posts", "field": "id"}}})
		server.Expect(http.MethodGet, "/fields/posts").
			Reply(http.StatusOK, map[string]any{"data": []map[string]any{{"field": "id"}, {"field": "title"}}})
		server.Expect(http.MethodGet, "/fields/posts/title").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"field": "title", "type": "string"}})
		server.Expect(http.MethodPost, "/fields/posts").
			WithJSONBody(map[string]any{"field": "body", "type": "text"}).
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"field": "body", "type": "text"}})
		server.Expect(http.MethodDelete, "/fields/posts/body").Reply(http.StatusNoContent, nil)

		fields := client.NewFieldsClient(transport)

		all, err := fields.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		some, err := fields.ReadMany(ctx, "posts")
		require.NoError(t, err)
		assert.Len(t, some, 2)

		field, err := fields.ReadOne(ctx, "posts", "title")
		require.NoError(t, err)
		assert.Equal(t, "string", field.Type)

		created, err := fields.CreateOne(ctx, "posts", &directus.Field{Field: "body", Type: "text"})
		require.NoError(t, err)
		assert.Equal(t, "body", created.Field)

		require.NoError(t, fields.DeleteOne(ctx, "posts", "body"))

		_, err = fields.UpdateOne(ctx, "posts", "", nil)
		assert.True(t, directus.IsValidationError(err))

		server.AssertDone(t)
	})

	t.Run("collections", func(t *testing.T) {
		t.Parallel()

		server, transport := newServer(t)
		server.Expect(http.MethodGet, "/collections").
			Reply(http.StatusOK, map[string]any{"data": []map[string]any{{"collection": "posts"}}})
		server.Expect(http.MethodGet, "/collections/posts").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"collection": "posts"}})
		server.Expect(http.MethodPost, "/collections").
			WithJSONBody(map[string]any{"collection": "pages"}).
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"collection": "pages"}})
		server.Expect(http.MethodPatch, "/collections/pages").
			WithJSONBody(map[string]any{"meta": map[string]any{"hidden": true}}).
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"collection": "pages"}})
		server.Expect(http.MethodDelete, "/collections/pages").Reply(http.StatusNoContent, nil)

		collections := client.NewCollectionsClient(transport)

		all, err := collections.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "posts", all[0].Collection)

		_, err = collections.ReadOne(ctx, "posts")
		require.NoError(t, err)

		_, err = collections.CreateOne(ctx, &directus.Collection{Collection: "pages"})
		require.NoError(t, err)

		_, err = collections.UpdateOne(ctx, "pages", map[string]any{"meta": map[string]any{"hidden": true}})
		require.NoError(t, err)

		require.NoError(t, collections.DeleteOne(ctx, "pages"))
		server.AssertDone(t)
	})

	t.Run("relations", func(t *testing.T) {
		t.Parallel()

		server, transport := newServer(t)
		server.Expect(http.MethodGet, "/relations/posts/author").
			Reply(http.StatusOK, map[string]any{"data": map[string]any{
				"collection": "posts", "field": "author", "related_collection": "directus_users",
			}})
		server.Expect(http.MethodPost, "/relations").
			WithJSONBody(map[string]any{"collection": "posts", "field": "editor", "related_collection": "directus_users"}).
			Reply(http.StatusOK, map[string]any{"data": map[string]any{"collection": "posts", "field": "editor"}})
		server.Expect(http.MethodDelete, "/relations/posts/editor").Reply(http.StatusNoContent, nil)

		relations := client.NewRelationsClient(transport)

		relation, err := relations.ReadOne(ctx, "posts", "author")
		require.NoError(t, err)
		assert.Equal(t, "directus_users", relation.RelatedCollection)

		_, err = relations.CreateOne(ctx, &directus.Relation{
			Collection:        "posts",
			Field:             "editor",
			RelatedCollection: "directus_users",
		})
		require.NoError(t, err)

		require.NoError(t, relations.DeleteOne(ctx, "posts", "editor"))
		server.AssertDone(t)
	})
}

func TestActivityClient_Comments(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodPost, "/activity/comment").
		WithJSONBody(map[string]any{"collection": "posts", "item": "1", "comment": "Nice"}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": 10, "action": "comment"}})
	server.Expect(http.MethodPatch, "/activity/comment/10").
		WithJSONBody(map[string]any{"comment": "Nicer"}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": 10}})
	server.Expect(http.MethodDelete, "/activity/comment/10").Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodGet, "/activity").
		Reply(http.StatusOK, map[string]any{"data": []map[string]any{{"id": 10}}})

	ctx := context.Background()
	activity := client.NewActivityClient(transport)

	created, err := activity.CreateComment(ctx, &directus.Comment{Collection: "posts", Item: "1", Comment: "Nice"})
	require.NoError(t, err)
	assert.Equal(t, "comment", created.Action)

	_, err = activity.UpdateComment(ctx, "10", "Nicer")
	require.NoError(t, err)

	require.NoError(t, activity.DeleteComment(ctx, "10"))

	list, err := activity.ReadByQuery(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	server.AssertDone(t)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestUsersClient(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodGet, "/users/me").
		WithQuery("fields", "id,email").
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "email": "me@example.com"}})
	server.Expect(http.MethodPatch, "/users/me").
		WithJSONBody(map[string]any{"first_name": "Ada"}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "first_name": "Ada"}})
	server.Expect(http.MethodPost, "/users/invite").
		WithJSONBody(map[string]any{
			"email":      []string{"a@example.com", "b@example.com"},
			"role":       "role-1",
			"invite_url": "https://app.example.com/accept",
		}).
		Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodPost, "/users/invite/accept").
		WithJSONBody(map[string]any{"token": "invite-token", "password": "pw"}).
		Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodPost, "/users/me/tfa/generate").
		WithJSONBody(map[string]any{"password": "pw"}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"secret": "S3CR3T", "otpauth_url": "otpauth://totp/x"}})
	server.Expect(http.MethodPost, "/users/me/tfa/enable").
		WithJSONBody(map[string]any{"secret": "S3CR3T", "otp": "123456"}).
		Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodPost, "/users/me/tfa/disable").
		WithJSONBody(map[string]any{"otp": "654321"}).
		Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodGet, "/users/u2").
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "u2"}})

	ctx := context.Background()
	users := client.NewUsersClient(transport)

	me, err := users.Me().Read(ctx, directus.NewQuery().WithFields("id", "email"))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)

	me, err = users.Me().Update(ctx, map[string]any{"first_name": "Ada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.FirstName)

	require.NoError(t, users.Invites().Send(ctx, []string{"a@example.com", "b@example.com"}, "role-1", "https://app.example.com/accept"))
	require.NoError(t, users.Invites().Accept(ctx, "invite-token", "pw"))

	secret, err := users.Me().TFA().Generate(ctx, "pw")
	require.NoError(t, err)
	assert.Equal(t, "S3CR3T", secret.Secret)
	assert.Equal(t, "otpauth://totp/x", secret.OTPAuthURL)

	require.NoError(t, users.Me().TFA().Enable(ctx, "S3CR3T", "123456"))
	require.NoError(t, users.Me().TFA().Disable(ctx, "654321"))

	other, err := users.ReadOne(ctx, "u2", nil)
	require.NoError(t, err)
	assert.Equal(t, "u2", other.ID)

	server.AssertDone(t)
}

func TestFilesClient(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodPost, "/files/import").
		WithJSONBody(map[string]any{"url": "https://example.com/a.png", "data": map[string]any{"title": "A"}}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "f1", "title": "A"}})
	upload := server.Expect(http.MethodPost, "/files").
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"id": "f2", "filename_download": "notes.txt"}})

	ctx := context.Background()
	files := client.NewFilesClient(transport)

	imported, err := files.Import(ctx, &directus.FileImport{URL: "https://example.com/a.png", Data: map[string]any{"title": "A"}})
	require.NoError(t, err)
	assert.Equal(t, "f1", imported.ID)

	uploaded, err := files.Upload(ctx, &directus.FileUpload{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Content:     strings.NewReader("hello"),
		Fields:      map[string]string{"title": "Notes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "f2", uploaded.ID)

	requests := upload.Requests()
	require.Len(t, requests, 1)

	mediaType, params, err := mime.ParseMediaType(requests[0].Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(strings.NewReader(string(requests[0].Body)), params["boundary"])

	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, form.Value["title"])
	require.Len(t, form.File["file"], 1)
	assert.Equal(t, "notes.txt", form.File["file"][0].Filename)
	assert.Equal(t, "text/plain", form.File["file"][0].Header.Get("Content-Type"))

	_, err = files.Upload(ctx, &directus.FileUpload{Filename: "empty"})
	assert.True(t, directus.IsValidationError(err))

	server.AssertDone(t)
}

func TestServerClient(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodGet, "/server/ping").ReplyText(http.StatusOK, "pong")
	server.Expect(http.MethodGet, "/server/info").
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"project": map[string]any{"project_name": "Blog"}}})
	server.Expect(http.MethodGet, "/server/health").
		Reply(http.StatusServiceUnavailable, map[string]any{"status": "error", "releaseId": "10.0.0"})
	server.Expect(http.MethodGet, "/server/specs/oas").
		Reply(http.StatusOK, map[string]any{"openapi": "3.0.1", "info": map[string]any{"title": "Dynamic API"}})

	ctx := context.Background()
	srv := client.NewServerClient(transport)

	pong, err := srv.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)

	info, err := srv.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Blog", info.Project["project_name"])

	health, err := srv.Health(ctx)
	require.Error(t, err)
	require.NotNil(t, health)
	assert.Equal(t, "error", health.Status)
	assert.Equal(t, "10.0.0", health.ReleaseID)

	oas, err := srv.OAS(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.0.1", oas["openapi"])

	server.AssertDone(t)
}

func TestUtilsClient(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodGet, "/utils/random/string").
		WithQuery("length", "16").
		Reply(http.StatusOK, map[string]any{"data": "abcdefghijklmnop"})
	server.Expect(http.MethodPost, "/utils/hash/generate").
		WithJSONBody(map[string]any{"string": "secret"}).
		Reply(http.StatusOK, map[string]any{"data": "$argon2id$hash"})
	server.Expect(http.MethodPost, "/utils/hash/verify").
		WithJSONBody(map[string]any{"string": "secret", "hash": "$argon2id$hash"}).
		Reply(http.StatusOK, map[string]any{"data": true})
	server.Expect(http.MethodPost, "/utils/sort/posts").
		WithJSONBody(map[string]any{"item": "3", "to": "1"}).
		Reply(http.StatusNoContent, nil)
	server.Expect(http.MethodPost, "/utils/revert/42").Reply(http.StatusNoContent, nil)

	ctx := context.Background()
	utils := client.NewUtilsClient(transport)

	random, err := utils.RandomString(ctx, 16)
	require.NoError(t, err)
	assert.Len(t, random, 16)

	hash, err := utils.GenerateHash(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$hash", hash)

	ok, err := utils.VerifyHash(ctx, "secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, utils.Sort(ctx, "posts", "3", "1"))
	require.NoError(t, utils.Revert(ctx, "42"))

	server.AssertDone(t)
}

func TestGraphQLClient(t *testing.T) {
	t.Parallel()

	server, transport := newServer(t)
	server.Expect(http.MethodPost, "/graphql").
		WithJSONBody(map[string]any{
			"query":     "query($id: ID!) { posts_by_id(id: $id) { title } }",
			"variables": map[string]any{"id": "1"},
		}).
		Reply(http.StatusOK, map[string]any{"data": map[string]any{"posts_by_id": map[string]any{"title": "Hello"}}})
	server.Expect(http.MethodPost, "/graphql/system").
		Reply(http.StatusOK, map[string]any{
			"data":   nil,
			"errors": []map[string]any{{"message": "Cannot query field", "extensions": map[string]any{"code": "GRAPHQL_VALIDATION"}}},
		})

	ctx := context.Background()
	graphql := client.NewGraphQLClient(transport)

	resp, err := graphql.Items(ctx, "query($id: ID!) { posts_by_id(id: $id) { title } }", map[string]any{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Get("posts_by_id.title").String())

	resp, err = graphql.System(ctx, "{ nope }", nil)
	require.Error(t, err)
	require.NotNil(t, resp)

	var gqlErr *directus.GraphQLError
	require.ErrorAs(t, err, &gqlErr)
	assert.Equal(t, "GRAPHQL_VALIDATION", gqlErr.Errors[0].Extensions.Code)

	server.AssertDone(t)
}
