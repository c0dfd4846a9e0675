package google

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/chatcal/internal/logging"
)

// storeTokenSource re-reads the store for every request so a token obtained
// by a concurrent exchange or refresh is picked up immediately.
type storeTokenSource struct {
	ctx   context.Context
	store *CredentialStore
}

// Token implements oauth2.TokenSource.
func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	s := ts.store

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	current := s.Current().Token()
	if current.Valid() {
		return current, nil
	}

	if current.RefreshToken == "" {
		s.record(ts.ctx, true, resultExpired)
		return nil, ErrNoRefreshToken
	}

	fresh, err := s.config.TokenSource(s.clientContext(ts.ctx), current).Token()
	if err != nil {
		s.record(ts.ctx, true, resultFailure)
		s.logger.Warn("token refresh failed", logging.Err(err))
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	updated := s.replace(fresh)
	s.record(ts.ctx, true, resultSuccess)
	s.logger.Debug("access token refreshed",
		slog.String("access_token", logging.SanitizeToken(updated.AccessToken)),
		slog.Time("expiry", updated.Expiry))

	if s.onRefresh != nil {
		s.onRefresh(ts.ctx, updated)
	}

	return updated.Token(), nil
}
