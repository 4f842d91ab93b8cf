package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the full configuration. All violations are
// collected so the user sees everything at once; configuration errors
// are startup failures, never runtime faults.
func Validate(c *Config) error {
	var errs ValidationErrors

	if c.Capture.WidthSec <= 0 {
		errs = append(errs, ValidationError{
			Field:   "capture.width_sec",
			Message: fmt.Sprintf("must be a positive integer, got %d", c.Capture.WidthSec),
		})
	}
	if c.Capture.HopSec <= 0 {
		errs = append(errs, ValidationError{
			Field:   "capture.hop_sec",
			Message: fmt.Sprintf("must be a positive integer, got %d", c.Capture.HopSec),
		})
	}
	switch c.Capture.Pairing {
	case "", "sequential", "per_key":
	default:
		errs = append(errs, ValidationError{
			Field:   "capture.pairing",
			Message: fmt.Sprintf("must be \"sequential\" or \"per_key\", got %q", c.Capture.Pairing),
		})
	}

	switch c.Output.Sink {
	case "", "csv", "sqlite":
	default:
		errs = append(errs, ValidationError{
			Field:   "output.sink",
			Message: fmt.Sprintf("must be \"csv\" or \"sqlite\", got %q", c.Output.Sink),
		})
	}
	if c.Output.Sink == "sqlite" && c.Output.SQLitePath == "" {
		errs = append(errs, ValidationError{
			Field:   "output.sqlite_path",
			Message: "required when output.sink is \"sqlite\"",
		})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}
	switch strings.ToLower(c.Logging.Output) {
	case "", "stdout", "stderr", "file", "both":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", c.Logging.Output),
		})
	}
	if out := strings.ToLower(c.Logging.Output); (out == "file" || out == "both") && c.Logging.FilePath == "" {
		errs = append(errs, ValidationError{
			Field:   "logging.file_path",
			Message: fmt.Sprintf("required when logging.output is %q", out),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
