package directus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// NATSConfig configures the JetStream key/value storage backend.
type NATSConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string

	// Conn is an existing connection. The storage does not close it.
	Conn *nats.Conn

	// Bucket is the key/value bucket; defaults to "directus_credentials".
	Bucket string

	// Replicas for the bucket when it has to be created.
	Replicas int
}

// NATSKVStorage keeps credentials in a JetStream key/value bucket so several
// processes can share one session.
type NATSKVStorage struct {
	conn       *nats.Conn
	ownsConn   bool
	kv         jetstream.KeyValue
	bucketName string
}

// NewNATSKVStorage connects (if needed) and creates or binds the bucket.
func NewNATSKVStorage(ctx context.Context, config *NATSConfig) (*NATSKVStorage, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("directus-sdk"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Directus SDK credentials",
		Replicas:    config.Replicas,
	})
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, fmt.Errorf("binding key/value bucket %s: %w", bucket, err)
	}

	return &NATSKVStorage{conn: conn, ownsConn: ownsConn, kv: kv, bucketName: bucket}, nil
}

// NATS keys may not contain characters outside [-/_=.a-zA-Z0-9].
var natsKeyReplacer = strings.NewReplacer(" ", "_", ":", "_", "*", "_", ">", "_")

func natsKey(key string) string {
	return natsKeyReplacer.Replace(key)
}

// Get implements Storage.Get.
func (s *NATSKVStorage) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.kv.Get(ctx, natsKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	return string(entry.Value()), nil
}

// Set implements Storage.Set.
func (s *NATSKVStorage) Set(ctx context.Context, key, value string) error {
	if _, err := s.kv.Put(ctx, natsKey(key), []byte(value)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// Delete implements Storage.Delete.
func (s *NATSKVStorage) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

// Bucket returns the bucket name.
func (s *NATSKVStorage) Bucket() string {
	return s.bucketName
}

// Close closes the NATS connection if the storage opened it.
func (s *NATSKVStorage) Close() error {
	if s.ownsConn {
		s.conn.Close()
	}

	return nil
}
