package directus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// Storage is a string key/value store for credentials. Implementations must
// be safe for concurrent use.
type Storage interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		values: make(map[string]string),
	}
}

// Get implements Storage.Get.
func (s *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}

	return value, nil
}

// Set implements Storage.Set.
func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

// Delete implements Storage.Delete.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

// Credentials is the persisted authentication record.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is zero for tokens that never expire (static tokens).
	ExpiresAt time.Time
}

// Expired reports whether the access token is due for refresh at now, given
// the safety margin.
func (c *Credentials) Expired(now time.Time, margin time.Duration) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}

	return !now.Add(margin).Before(c.ExpiresAt)
}

// CredentialStore is a typed view of the credential keys in a Storage.
type CredentialStore struct {
	storage Storage
	prefix  string
}

// NewCredentialStore binds a credential view to storage. All keys are
// prefixed with prefix.
func NewCredentialStore(storage Storage, prefix string) *CredentialStore {
	return &CredentialStore{storage: storage, prefix: prefix}
}

// Storage returns the underlying storage.
func (c *CredentialStore) Storage() Storage {
	return c.storage
}

// Key returns the prefixed storage key for name.
func (c *CredentialStore) Key(name string) string {
	return c.prefix + name
}

// Load reads the credential record. An empty record (no token) is returned
// as a zero Credentials, not an error.
func (c *CredentialStore) Load(ctx context.Context) (*Credentials, error) {
	creds := &Credentials{}

	token, err := c.get(ctx, constants.StorageKeyToken)
	if err != nil {
		return nil, err
	}

	creds.AccessToken = token

	refresh, err := c.get(ctx, constants.StorageKeyRefreshToken)
	if err != nil {
		return nil, err
	}

	creds.RefreshToken = refresh

	expires, err := c.get(ctx, constants.StorageKeyExpires)
	if err != nil {
		return nil, err
	}

	if expires != "" {
		ms, err := strconv.ParseInt(expires, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", c.Key(constants.StorageKeyExpires), err)
		}

		creds.ExpiresAt = time.UnixMilli(ms)
	}

	return creds, nil
}

// Save writes the whole credential record. Empty fields are deleted so that
// stale values from a previous session never survive.
func (c *CredentialStore) Save(ctx context.Context, creds *Credentials) error {
	if err := c.put(ctx, constants.StorageKeyToken, creds.AccessToken); err != nil {
		return err
	}

	expires := ""
	if !creds.ExpiresAt.IsZero() {
		expires = strconv.FormatInt(creds.ExpiresAt.UnixMilli(), 10)
	}

	if err := c.put(ctx, constants.StorageKeyExpires, expires); err != nil {
		return err
	}

	return c.put(ctx, constants.StorageKeyRefreshToken, creds.RefreshToken)
}

// Clear removes every credential key.
func (c *CredentialStore) Clear(ctx context.Context) error {
	var errs []error

	for _, key := range []string{constants.StorageKeyToken, constants.StorageKeyExpires, constants.StorageKeyRefreshToken} {
		if err := c.storage.Delete(ctx, c.Key(key)); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", c.Key(key), err))
		}
	}

	return errors.Join(errs...)
}

func (c *CredentialStore) get(ctx context.Context, name string) (string, error) {
	value, err := c.storage.Get(ctx, c.Key(name))
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", c.Key(name), err)
	}

	return value, nil
}

func (c *CredentialStore) put(ctx context.Context, name, value string) error {
	if value == "" {
		if err := c.storage.Delete(ctx, c.Key(name)); err != nil {
			return fmt.Errorf("deleting %s: %w", c.Key(name), err)
		}

		return nil
	}

	if err := c.storage.Set(ctx, c.Key(name), value); err != nil {
		return fmt.Errorf("writing %s: %w", c.Key(name), err)
	}

	return nil
}
