package directus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// StorageMode selects a storage backend.
type StorageMode string

const (
	// StorageModeAuto picks persistent storage when a persistent environment
	// is available and memory storage otherwise.
	StorageModeAuto StorageMode = ""

	// StorageModeMemory keeps credentials for the process lifetime.
	StorageModeMemory StorageMode = "memory"

	// StorageModePersistent keeps credentials on disk.
	StorageModePersistent StorageMode = "persistent"

	// StorageModeNATS keeps credentials in a JetStream key/value bucket.
	StorageModeNATS StorageMode = "nats"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired     = errors.New("NATS configuration required for NATS storage")
	ErrStoragePathRequired    = errors.New("storage path required for persistent storage")
	ErrUnsupportedStorageMode = errors.New("unsupported storage mode")
)

// StorageConfig configures the storage backend.
type StorageConfig struct {
	// Mode forces a backend. The zero value selects automatically.
	Mode StorageMode

	// Prefix is prepended to every credential key.
	Prefix string

	// Path is the directory used by persistent storage. Setting it also marks
	// the environment as persistent for automatic selection.
	Path string

	// NATS configures the NATS backend.
	NATS *NATSConfig

	// LookupEnv reads environment variables; defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// DefaultStorageConfig returns the automatic-selection configuration.
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{Mode: StorageModeAuto}
}

// PersistentPath reports the persistent storage directory, if the
// environment provides one.
func (c *StorageConfig) PersistentPath() (string, bool) {
	if c.Path != "" {
		return c.Path, true
	}

	lookup := c.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if path, ok := lookup(constants.EnvStoragePath); ok && path != "" {
		return path, true
	}

	return "", false
}

// SelectStorageMode resolves the backend for config. An explicit mode always
// wins; otherwise persistent storage is chosen when a persistent path is
// available, and memory storage in every other case.
func SelectStorageMode(config *StorageConfig) StorageMode {
	if config == nil {
		config = DefaultStorageConfig()
	}

	if config.Mode != StorageModeAuto {
		return config.Mode
	}

	if _, ok := config.PersistentPath(); ok {
		return StorageModePersistent
	}

	return StorageModeMemory
}

// NewStorageFromConfig creates a storage backend from configuration. The
// returned storage may implement io.Closer.
func NewStorageFromConfig(ctx context.Context, config *StorageConfig) (Storage, error) {
	if config == nil {
		config = DefaultStorageConfig()
	}

	switch mode := SelectStorageMode(config); mode {
	case StorageModeMemory:
		return NewMemoryStorage(), nil

	case StorageModePersistent:
		path, ok := config.PersistentPath()
		if !ok {
			return nil, ErrStoragePathRequired
		}

		return NewDiskStorage(path)

	case StorageModeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVStorage(ctx, config.NATS)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStorageMode, mode)
	}
}

// CloseStorage closes storage when the backend holds resources.
func CloseStorage(storage Storage) error {
	if closer, ok := storage.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// StorageBuilder helps build storage configurations.
type StorageBuilder struct {
	config *StorageConfig
}

// NewStorageBuilder creates a new storage builder.
func NewStorageBuilder() *StorageBuilder {
	return &StorageBuilder{config: DefaultStorageConfig()}
}

// WithMode sets the storage mode.
func (b *StorageBuilder) WithMode(mode StorageMode) *StorageBuilder {
	b.config.Mode = mode

	return b
}

// WithPrefix sets the credential key prefix.
func (b *StorageBuilder) WithPrefix(prefix string) *StorageBuilder {
	b.config.Prefix = prefix

	return b
}

// WithPath sets the persistent storage directory.
func (b *StorageBuilder) WithPath(path string) *StorageBuilder {
	b.config.Path = path

	return b
}

// WithNATSConfig sets the NATS backend configuration.
func (b *StorageBuilder) WithNATSConfig(config *NATSConfig) *StorageBuilder {
	b.config.NATS = config

	return b
}

// Config returns the built configuration.
func (b *StorageBuilder) Config() *StorageConfig {
	return b.config
}

// Build creates the storage from the configuration.
func (b *StorageBuilder) Build(ctx context.Context) (Storage, error) {
	return NewStorageFromConfig(ctx, b.config)
}
