package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behavior every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, s.Set(ctx, map[string]string{"b": "3"}))

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v, "keys not in the batch are untouched")

	v, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	require.NoError(t, s.Set(ctx, map[string]string{"empty": ""}))
	v, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, "", v, "empty values are stored, not treated as missing")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	storeContract(t, s)
	assert.Equal(t, 3, s.Writes())
	assert.NoError(t, s.Close())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	storeContract(t, s)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Values survive reopening.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, err := reopened.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStore_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	storeContract(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: TypeMemory}, false},
		{"default is file", Config{Path: filepath.Join(dir, "a.yaml")}, false},
		{"file", Config{Type: TypeFile, Path: filepath.Join(dir, "b.yaml")}, false},
		{"sqlite", Config{Type: TypeSQLite, Path: filepath.Join(dir, "c.db")}, false},
		{"valkey without url", Config{Type: TypeValkey}, true},
		{"unknown", Config{Type: "etcd"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}

func TestValkeyStore_KeyPrefix(t *testing.T) {
	s := newValkeyStore(nil, "")
	assert.Equal(t, "chatcal:googleAccessToken", s.key(KeyAccessToken))

	s = newValkeyStore(nil, "bot:")
	assert.Equal(t, "bot:googleAccessToken", s.key(KeyAccessToken))
}
