package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required setting is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidValue is returned when a setting has an unsupported value.
	ErrInvalidValue = errors.New("invalid value")
)

// ConfigError reports which setting failed validation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func missing(field string) *ConfigError {
	return &ConfigError{Field: field, Err: ErrMissingField}
}

func invalid(field string, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))}
}
