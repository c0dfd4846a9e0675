package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chatcal/internal/google"
)

func TestSaveAndLoadCredentials(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	expiry := time.UnixMilli(1704214800123)
	creds := google.CredentialSet{
		ClientID:     "id",
		ClientSecret: "secret",
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}

	require.NoError(t, SaveCredentials(ctx, s, creds))
	assert.Equal(t, 1, s.Writes(), "credentials are written in one batch")

	_, err := s.Get(ctx, "googleSecret")
	assert.ErrorIs(t, err, ErrNotFound, "client secret is not persisted")

	loaded, err := LoadCredentials(ctx, s, google.CredentialSet{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, creds.AccessToken, loaded.AccessToken)
	assert.Equal(t, creds.TokenType, loaded.TokenType)
	assert.Equal(t, creds.RefreshToken, loaded.RefreshToken)
	assert.True(t, expiry.Equal(loaded.Expiry))
	assert.Equal(t, "secret", loaded.ClientSecret)
}

func TestLoadCredentials_KeepsBaseWhenNothingPersisted(t *testing.T) {
	base := google.CredentialSet{
		ClientID:     "id",
		ClientSecret: "secret",
		AccessToken:  "from-config",
		RefreshToken: "refresh-from-config",
	}

	loaded, err := LoadCredentials(context.Background(), NewMemoryStore(), base)
	require.NoError(t, err)
	assert.Equal(t, base, loaded)
}

func TestLoadCredentials_InvalidExpiry(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), map[string]string{KeyExpiryDate: "tomorrow"}))

	_, err := LoadCredentials(context.Background(), s, google.CredentialSet{})
	assert.Error(t, err)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("backend down")
}

func (f *failingStore) Set(context.Context, map[string]string) error {
	return errors.New("backend down")
}

func TestCredentials_BackendErrors(t *testing.T) {
	s := &failingStore{}

	err := SaveCredentials(context.Background(), s, google.CredentialSet{})
	assert.Error(t, err)

	base := google.CredentialSet{AccessToken: "keep"}
	loaded, err := LoadCredentials(context.Background(), s, base)
	assert.Error(t, err)
	assert.Equal(t, base, loaded)
}

func TestParseExpiry(t *testing.T) {
	zero, err := ParseExpiry("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	ts, err := ParseExpiry("1000")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ts.UnixMilli())

	_, err = ParseExpiry("abc")
	assert.Error(t, err)
}
