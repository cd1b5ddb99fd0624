//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
	"github.com/fivetwenty-io/directus-sdk/pkg/rdk"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL        string
	AdminEmail string
	Password   string
	Collection string
	NATSURL    string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	config := &TestConfig{
		URL:        os.Getenv("DIRECTUS_URL"),
		AdminEmail: os.Getenv("DIRECTUS_ADMIN_EMAIL"),
		Password:   os.Getenv("DIRECTUS_ADMIN_PASSWORD"),
		Collection: os.Getenv("DIRECTUS_TEST_COLLECTION"),
		NATSURL:    os.Getenv("NATS_URL"),
	}

	if config.Collection == "" {
		config.Collection = "integration_posts"
	}

	return config
}

// newSDK creates an RDK with in-memory credentials for config.
func newSDK(t *testing.T, config *TestConfig) *rdk.RDK {
	t.Helper()

	sdk, err := rdk.New(config.URL, &rdk.Options{
		StorageConfig: &directus.StorageConfig{Mode: directus.StorageModeMemory},
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sdk.Close() })

	return sdk
}
