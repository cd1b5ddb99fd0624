package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
	"github.com/fivetwenty-io/directus-sdk/pkg/rdk"
)

// userAgent is sent with every CLI request.
const userAgent = "directus-cli"

// newLogger returns a logrus logger on stderr whose level follows --verbose.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func storagePath() (string, error) {
	if path := viper.GetString("storage_path"); path != "" {
		return path, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "credentials"), nil
}

// newSDK creates an RDK for the configured URL with credentials persisted on
// disk.
func newSDK() (*rdk.RDK, error) {
	url := viper.GetString("url")
	if url == "" {
		return nil, constants.ErrNoURLConfigured
	}

	path, err := storagePath()
	if err != nil {
		return nil, err
	}

	logger := directus.NewLogrusLogger(newLogger())

	sdk, err := rdk.New(url, &rdk.Options{
		StorageConfig: &directus.StorageConfig{
			Mode: directus.StorageModePersistent,
			Path: path,
		},
		TransportConfig: &directus.TransportConfig{
			UserAgent:           userAgent,
			Debug:               viper.GetBool("verbose"),
			RequestInterceptors: []directus.RequestInterceptor{directus.RequestIDInterceptor()},
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return sdk, nil
}
