package persist

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is the persistence contract used by the bot.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes all values in one operation. Keys not present in values are
	// left untouched.
	Set(ctx context.Context, values map[string]string) error

	// Close releases the backend's resources.
	Close() error
}

// Backend types accepted by Open.
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeValkey = "valkey"
)

// Config selects and configures a backend.
type Config struct {
	// Type is the backend type (default: "file").
	Type string

	// Path is the YAML file (file) or database file (sqlite).
	Path string

	// Valkey configuration (used when Type is "valkey")
	Valkey ValkeyConfig
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemoryStore(), nil
	case "", TypeFile:
		return NewFileStore(cfg.Path)
	case TypeSQLite:
		return OpenSQLiteStore(ctx, cfg.Path)
	case TypeValkey:
		return OpenValkeyStore(ctx, cfg.Valkey)
	default:
		return nil, fmt.Errorf("unsupported persistence type %q, must be one of: memory, file, sqlite, valkey", cfg.Type)
	}
}
