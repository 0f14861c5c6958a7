package codegen

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel every ConfigError satisfies.
var ErrInvalidConfig = errors.New("codegen: invalid configuration")

// ConfigError reports a bad functional-option value, caught once while
// building a Config rather than accumulated alongside schema/query
// errors: option misuse is a programmer error, not generation output.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("codegen: invalid option %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("codegen: invalid option %q: %s", e.Option, e.Message)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
