package calendar

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrProvider is matched by every error returned from a Calendar API call.
var ErrProvider = errors.New("calendar provider error")

// ProviderError wraps a failed Calendar API call.
type ProviderError struct {
	Op         string // "quick_add" or "list"
	StatusCode int    // HTTP status when the API answered, 0 otherwise
	Message    string // Provider message suitable for showing to the user
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying googleapi or transport error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// newProviderError builds a ProviderError, preferring the message from a
// googleapi.Error when the API returned one.
func newProviderError(op string, err error) *ProviderError {
	pe := &ProviderError{Op: op, Message: err.Error(), Err: err}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.Code
		if apiErr.Message != "" {
			pe.Message = apiErr.Message
		}
	}

	return pe
}
