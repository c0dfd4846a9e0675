package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/chatcal/internal/logging"
)

// DefaultTokenType is used when the provider omits token_type.
const DefaultTokenType = "Bearer"

// OAuth result values passed to the AuthRecorder.
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultExpired = "expired"
)

// CredentialSet is the OAuth2 state needed to call Google Calendar on the
// linked user's behalf. AccessToken and Expiry are only meaningful
// together.
type CredentialSet struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	TokenType    string
	RefreshToken string
	Expiry       time.Time
}

// Token returns the token part of the set.
func (c CredentialSet) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Linked reports whether the set carries any token at all.
func (c CredentialSet) Linked() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// RefreshHook is called after the token source obtained a new token set.
type RefreshHook func(ctx context.Context, creds CredentialSet)

// AuthRecorder records OAuth exchange and refresh outcomes.
// *instrumentation.Metrics implements it.
type AuthRecorder interface {
	RecordOAuthAuth(ctx context.Context, result string)
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// CredentialStore owns the live CredentialSet. All writes go through
// replace; reads return copies.
type CredentialStore struct {
	mu    sync.RWMutex
	creds CredentialSet

	// refreshMu serializes refreshes across all token sources.
	refreshMu sync.Mutex

	config     *oauth2.Config
	httpClient *http.Client
	onRefresh  RefreshHook
	recorder   AuthRecorder
	logger     *slog.Logger
}

// Option configures a CredentialStore.
type Option func(*CredentialStore)

// WithHTTPClient sets the HTTP client used to talk to the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(s *CredentialStore) {
		s.httpClient = c
	}
}

// WithRefreshHook registers a hook that runs after every successful refresh.
func WithRefreshHook(hook RefreshHook) Option {
	return func(s *CredentialStore) {
		s.onRefresh = hook
	}
}

// WithRecorder sets the recorder for OAuth metrics.
func WithRecorder(r AuthRecorder) Option {
	return func(s *CredentialStore) {
		s.recorder = r
	}
}

// WithLogger sets a custom logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *CredentialStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCredentialStore creates a store holding initial. The OAuth client
// settings are taken from oauthCfg; initial only contributes tokens.
func NewCredentialStore(oauthCfg OAuthConfig, initial CredentialSet, opts ...Option) (*CredentialStore, error) {
	if oauthCfg.ClientID == "" {
		return nil, fmt.Errorf("client id cannot be empty")
	}
	if oauthCfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret cannot be empty")
	}

	initial.ClientID = oauthCfg.ClientID
	initial.ClientSecret = oauthCfg.ClientSecret
	if initial.TokenType == "" {
		initial.TokenType = DefaultTokenType
	}

	s := &CredentialStore{
		creds:  initial,
		config: newOAuth2Config(oauthCfg),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithService(s.logger, "google_oauth")

	return s, nil
}

// Current returns a copy of the live credential set. A refresh may replace
// it right after the call returns.
func (s *CredentialStore) Current() CredentialSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// AuthCodeURL returns the consent URL for calendar access. Offline access
// and forced approval make Google issue a refresh token.
func (s *CredentialStore) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ApplyExchange trades a one-time authorization code for a new token set.
// On success the token fields are replaced together and the new set is
// returned for persistence by the caller. On failure nothing changes and
// the error matches ErrExchangeFailed.
func (s *CredentialStore) ApplyExchange(ctx context.Context, code string) (CredentialSet, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		s.record(ctx, false, resultFailure)
		return CredentialSet{}, &AuthError{Code: "invalid_request", Description: "authorization code is empty"}
	}

	tok, err := s.config.Exchange(s.clientContext(ctx), code)
	if err != nil {
		s.record(ctx, false, resultFailure)
		authErr := newExchangeError(err)
		s.logger.Warn("authorization code exchange failed", logging.Err(authErr))
		return CredentialSet{}, authErr
	}

	updated := s.replace(tok)
	s.record(ctx, false, resultSuccess)
	s.logger.Info("authorization code exchanged",
		slog.Time("expiry", updated.Expiry),
		slog.Bool("has_refresh_token", updated.RefreshToken != ""))

	return updated, nil
}

// TokenSource returns a token source that reads the store on every call and
// refreshes through the token endpoint when the access token has expired.
// ctx is used for refresh requests and passed to the refresh hook.
func (s *CredentialStore) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

// replace is the single writer of the token fields.
func (s *CredentialStore) replace(tok *oauth2.Token) CredentialSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.AccessToken = tok.AccessToken
	s.creds.TokenType = tok.TokenType
	if s.creds.TokenType == "" {
		s.creds.TokenType = DefaultTokenType
	}
	// Google omits the refresh token on refresh responses.
	if tok.RefreshToken != "" {
		s.creds.RefreshToken = tok.RefreshToken
	}
	s.creds.Expiry = tok.Expiry

	return s.creds
}

func (s *CredentialStore) clientContext(ctx context.Context) context.Context {
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func (s *CredentialStore) record(ctx context.Context, refresh bool, result string) {
	if s.recorder == nil {
		return
	}
	if refresh {
		s.recorder.RecordOAuthTokenRefresh(ctx, result)
		return
	}
	s.recorder.RecordOAuthAuth(ctx, result)
}
