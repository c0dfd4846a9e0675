package google

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrExchangeFailed is matched by every error returned from a failed
// authorization code exchange.
var ErrExchangeFailed = errors.New("authorization code exchange failed")

// ErrNoRefreshToken is returned by the token source when the access token
// has expired and there is nothing to refresh it with.
var ErrNoRefreshToken = errors.New("no refresh token available")

// AuthError describes a failed exchange at the Google token endpoint.
type AuthError struct {
	Code        string // OAuth error code from the provider (e.g. "invalid_grant")
	Description string // Provider supplied description, may be empty
	Err         error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("%s: %s: %s", ErrExchangeFailed, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("%s: %s", ErrExchangeFailed, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrExchangeFailed, e.Err)
	}
	return ErrExchangeFailed.Error()
}

// Unwrap returns the underlying transport or oauth2 error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExchangeFailed.
func (e *AuthError) Is(target error) bool {
	return target == ErrExchangeFailed
}

// newExchangeError converts an oauth2 exchange error into an AuthError,
// keeping the provider's error code and description when available.
func newExchangeError(err error) *AuthError {
	authErr := &AuthError{Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr.Code = retrieveErr.ErrorCode
		authErr.Description = retrieveErr.ErrorDescription
	}

	return authErr
}
