package google

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig describes the OAuth client registered for the bot.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string

	// RedirectURL defaults to OOBRedirectURL when empty.
	RedirectURL string

	// Scopes defaults to DefaultOAuthScopes when empty.
	Scopes []string

	// Endpoint defaults to google.Endpoint when its TokenURL is empty.
	// Tests point it at an httptest server.
	Endpoint oauth2.Endpoint
}

// newOAuth2Config returns the oauth2.Config for the calendar account.
func newOAuth2Config(c OAuthConfig) *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = OOBRedirectURL
	}

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}

	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirect,
		Scopes:       scopes,
	}
}

// NewHTTPClient returns an HTTP client that authenticates every request with
// a token from ts. Outgoing requests are traced with otelhttp.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func NewHTTPClient(ts oauth2.TokenSource) *http.Client {
	base := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   otelhttp.NewTransport(base),
		},
	}
}
