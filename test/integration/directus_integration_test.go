//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
	"github.com/fivetwenty-io/directus-sdk/pkg/rdk"
)

// DirectusIntegrationTestSuite runs against a live Directus instance.
type DirectusIntegrationTestSuite struct {
	suite.Suite

	config *TestConfig
	sdk    *rdk.RDK
	ctx    context.Context
}

// SetupSuite logs in once for the whole suite.
func (s *DirectusIntegrationTestSuite) SetupSuite() {
	s.config = LoadTestConfig()
	if s.config.URL == "" {
		s.T().Skip("DIRECTUS_URL environment variable not set, skipping integration tests")
	}

	if s.config.AdminEmail == "" || s.config.Password == "" {
		s.T().Skip("DIRECTUS_ADMIN_EMAIL or DIRECTUS_ADMIN_PASSWORD not set, skipping integration tests")
	}

	s.ctx = context.Background()
	s.sdk = newSDK(s.T(), s.config)

	_, err := s.sdk.Auth().Login(s.ctx, directus.LoginRequest{
		Email:    s.config.AdminEmail,
		Password: s.config.Password,
	})
	s.Require().NoError(err)

	_, err = s.sdk.Collections().ReadOne(s.ctx, s.config.Collection)
	if directus.IsNotFound(err) || directus.IsForbidden(err) {
		_, err = s.sdk.Collections().CreateOne(s.ctx, &directus.Collection{
			Collection: s.config.Collection,
			Schema:     map[string]any{"name": s.config.Collection},
		})
	}

	s.Require().NoError(err)

	_, err = s.sdk.Fields().ReadOne(s.ctx, s.config.Collection, "title")
	if err != nil {
		_, err = s.sdk.Fields().CreateOne(s.ctx, s.config.Collection, &directus.Field{
			Field: "title",
			Type:  "string",
		})
	}

	s.Require().NoError(err)
}

// TearDownSuite removes the test collection.
func (s *DirectusIntegrationTestSuite) TearDownSuite() {
	if s.sdk == nil {
		return
	}

	_ = s.sdk.Collections().DeleteOne(s.ctx, s.config.Collection)
	_ = s.sdk.Auth().Logout(s.ctx)
}

func (s *DirectusIntegrationTestSuite) TestServer() {
	pong, err := s.sdk.Server().Ping(s.ctx)
	s.Require().NoError(err)
	s.Equal("pong", pong)

	info, err := s.sdk.Server().Info(s.ctx)
	s.Require().NoError(err)
	s.NotNil(info)
}

func (s *DirectusIntegrationTestSuite) TestCurrentUser() {
	me, err := s.sdk.Users().Me().Read(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(s.config.AdminEmail, me.Email)
}

func (s *DirectusIntegrationTestSuite) TestItemLifecycle() {
	items := rdk.Items[directus.Item](s.sdk, s.config.Collection)
	title := fmt.Sprintf("integration-%d", time.Now().UnixNano())

	created, err := items.CreateOne(s.ctx, &directus.Item{"title": title}, nil)
	s.Require().NoError(err)

	id := fmt.Sprint((*created)["id"])

	read, err := items.ReadOne(s.ctx, id, directus.NewQuery().WithFields("id", "title"))
	s.Require().NoError(err)
	s.Equal(title, (*read)["title"])

	updated, err := items.UpdateOne(s.ctx, id, map[string]any{"title": title + "-updated"}, nil)
	s.Require().NoError(err)
	s.Equal(title+"-updated", (*updated)["title"])

	s.Require().NoError(items.DeleteOne(s.ctx, id))

	_, err = items.ReadOne(s.ctx, id, nil)
	s.Error(err)
}

func (s *DirectusIntegrationTestSuite) TestPagination() {
	items := rdk.Items[directus.Item](s.sdk, s.config.Collection)

	ops := make([]directus.BatchOperation, 0, 5)
	for i := range 5 {
		ops = append(ops, directus.BatchOperation{
			ID: fmt.Sprint(i),
			Do: func(ctx context.Context) (any, error) {
				return items.CreateOne(ctx, &directus.Item{"title": fmt.Sprintf("page-%d", i)}, nil)
			},
		})
	}

	summary := directus.RunBatch(s.ctx, ops, 3)
	s.Require().Zero(summary.Failed, summary.Errors())

	all, err := directus.FetchAllItems(s.ctx, items, directus.NewQuery().WithSort("id"), 2)
	s.Require().NoError(err)
	s.GreaterOrEqual(len(all), 5)

	ids := make([]string, 0, len(all))
	for _, item := range all {
		ids = append(ids, fmt.Sprint(item["id"]))
	}

	s.Require().NoError(items.DeleteMany(s.ctx, ids))
}

func (s *DirectusIntegrationTestSuite) TestRefresh() {
	result, err := s.sdk.Auth().Refresh(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(result.AccessToken)
	s.True(result.ExpiresAt.After(time.Now()))

	state, err := s.sdk.Auth().State(s.ctx)
	s.Require().NoError(err)
	s.Equal(directus.AuthStateAuthenticated, state)
}

func (s *DirectusIntegrationTestSuite) TestSharedNATSCredentials() {
	if s.config.NATSURL == "" {
		s.T().Skip("NATS_URL not set")
	}

	storageConfig := &directus.StorageConfig{
		Mode: directus.StorageModeNATS,
		NATS: &directus.NATSConfig{URL: s.config.NATSURL, Bucket: "directus_integration"},
	}

	first, err := rdk.New(s.config.URL, &rdk.Options{StorageConfig: storageConfig})
	s.Require().NoError(err)

	defer func() { _ = first.Close() }()

	_, err = first.Auth().Login(s.ctx, directus.LoginRequest{Email: s.config.AdminEmail, Password: s.config.Password})
	s.Require().NoError(err)

	second, err := rdk.New(s.config.URL, &rdk.Options{StorageConfig: storageConfig})
	s.Require().NoError(err)

	defer func() { _ = second.Close() }()

	me, err := second.Users().Me().Read(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(s.config.AdminEmail, me.Email)
}

func TestDirectusIntegration(t *testing.T) {
	suite.Run(t, new(DirectusIntegrationTestSuite))
}
