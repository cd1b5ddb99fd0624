package directus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/peterbourgon/diskv/v3"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// DiskStorage persists values as files in a directory, one file per key.
// Values survive process restarts until deleted.
type DiskStorage struct {
	dv *diskv.Diskv
}

// NewDiskStorage opens (creating if needed) a storage directory at path.
func NewDiskStorage(path string) (*DiskStorage, error) {
	if path == "" {
		return nil, ErrStoragePathRequired
	}

	if err := os.MkdirAll(path, constants.ConfigDirPerm); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	// All keys live directly in the base directory.
	flatTransform := func(s string) []string { return []string{} }

	dv := diskv.New(diskv.Options{
		BasePath:     path,
		Transform:    flatTransform,
		CacheSizeMax: constants.DiskCacheSizeMax,
		FilePerm:     constants.ConfigFilePerm,
		PathPerm:     constants.ConfigDirPerm,
	})

	return &DiskStorage{dv: dv}, nil
}

// Get implements Storage.Get.
func (s *DiskStorage) Get(ctx context.Context, key string) (string, error) {
	if !s.dv.Has(key) {
		return "", ErrKeyNotFound
	}

	b, err := s.dv.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	return string(b), nil
}

// Set implements Storage.Set.
func (s *DiskStorage) Set(ctx context.Context, key, value string) error {
	if err := s.dv.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// Delete implements Storage.Delete.
func (s *DiskStorage) Delete(ctx context.Context, key string) error {
	if !s.dv.Has(key) {
		return nil
	}

	err := s.dv.Erase(key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("erasing %s: %w", key, err)
	}

	return nil
}

// Path returns the storage directory.
func (s *DiskStorage) Path() string {
	return s.dv.BasePath
}
