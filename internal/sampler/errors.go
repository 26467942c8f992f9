package sampler

import (
	"errors"
	"fmt"
)

// ConfigError represents an invalid sampler configuration.
//
// Configuration errors are deterministic caller mistakes - they are detected
// before the chain loop runs, surfaced immediately, and never silently
// corrected or retried.
type ConfigError struct {
	// Field names the offending configuration field (e.g. "steps", "start").
	Field string

	// Message is a human-readable description including the violated bound.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid sampler config: %s: %s", e.Field, e.Message)
}

// IsConfigError returns true if the error is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
