package gen

import (
	"errors"
	"fmt"

	"github.com/syssam/frank"
)

var (
	// ErrMissingConfig is matched by invalid generator options.
	ErrMissingConfig = errors.New("gen: invalid configuration")
	// ErrGenerationFailed is matched by errors raised while rendering or
	// writing a file.
	ErrGenerationFailed = errors.New("gen: generation failed")
)

// ConfigError reports an invalid generator option. It also matches
// frank.ErrConfiguration.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// NewConfigError returns a ConfigError of option.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("gen: option %s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("gen: option %s=%v: %s", e.Option, e.Value, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig || target == frank.ErrConfiguration
}

// GenerationError reports the record type and file a generation failed on.
type GenerationError struct {
	Type  string
	File  string // empty before the output path is known
	Cause error
}

func (e *GenerationError) Error() string {
	msg := "gen: " + e.Type
	if e.File != "" {
		msg += " (" + e.File + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }
