package persist

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// DefaultValkeyKeyPrefix is prepended to every key when none is configured.
const DefaultValkeyKeyPrefix = "chatcal:"

// ValkeyConfig holds configuration for the Valkey backend.
type ValkeyConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379")
	URL string

	// Password is the optional password for Valkey authentication
	Password string

	// TLSEnabled enables TLS for Valkey connections
	TLSEnabled bool

	// KeyPrefix is the prefix for all Valkey keys (default: "chatcal:")
	KeyPrefix string

	// DB is the Valkey database number (default: 0)
	DB int
}

// ValkeyStore keeps values as plain string keys in Valkey.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// OpenValkeyStore connects to the configured Valkey server.
func OpenValkeyStore(_ context.Context, cfg ValkeyConfig) (*ValkeyStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("valkey URL is empty")
	}

	opt := valkey.ClientOption{
		InitAddress: []string{cfg.URL},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	}
	if cfg.TLSEnabled {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return newValkeyStore(client, cfg.KeyPrefix), nil
}

func newValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = DefaultValkeyKeyPrefix
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) key(k string) string {
	return s.prefix + k
}

// Get implements Store.
func (s *ValkeyStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, nil
}

// Set implements Store with a single MSET so the batch is applied atomically.
func (s *ValkeyStore) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	cmd := s.client.B().Mset().KeyValue()
	for k, v := range values {
		cmd = cmd.KeyValue(s.key(k), v)
	}

	if err := s.client.Do(ctx, cmd.Build()).Error(); err != nil {
		return fmt.Errorf("failed to store values: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
