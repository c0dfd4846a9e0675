package persist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/teemow/chatcal/internal/google"
)

// Keys under which the credential set is persisted.
const (
	KeyAccessToken  = "googleAccessToken"
	KeyTokenType    = "googleTokenType"
	KeyRefreshToken = "googleRefreshToken"
	KeyExpiryDate   = "googleExpiryDate"
)

// SaveCredentials writes the token fields of creds in a single Set. The
// client id and secret are static configuration and are not written.
func SaveCredentials(ctx context.Context, s Store, creds google.CredentialSet) error {
	expiry := ""
	if !creds.Expiry.IsZero() {
		expiry = strconv.FormatInt(creds.Expiry.UnixMilli(), 10)
	}

	values := map[string]string{
		KeyAccessToken:  creds.AccessToken,
		KeyTokenType:    creds.TokenType,
		KeyRefreshToken: creds.RefreshToken,
		KeyExpiryDate:   expiry,
	}

	if err := s.Set(ctx, values); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

// LoadCredentials overlays the persisted token fields on base. Keys that were
// never written keep base's value, so tokens from static configuration are
// used until the first exchange or refresh.
func LoadCredentials(ctx context.Context, s Store, base google.CredentialSet) (google.CredentialSet, error) {
	creds := base

	fields := []struct {
		key string
		dst *string
	}{
		{KeyAccessToken, &creds.AccessToken},
		{KeyTokenType, &creds.TokenType},
		{KeyRefreshToken, &creds.RefreshToken},
	}
	for _, f := range fields {
		v, err := s.Get(ctx, f.key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return base, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		*f.dst = v
	}

	raw, err := s.Get(ctx, KeyExpiryDate)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return base, fmt.Errorf("failed to read %s: %w", KeyExpiryDate, err)
	default:
		expiry, err := ParseExpiry(raw)
		if err != nil {
			return base, err
		}
		creds.Expiry = expiry
	}

	return creds, nil
}

// ParseExpiry parses an expiry stored as unix milliseconds. An empty string
// means the token has no known expiry.
func ParseExpiry(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry %q: %w", raw, err)
	}
	return time.UnixMilli(ms), nil
}
