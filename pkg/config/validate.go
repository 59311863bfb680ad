package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateBackend(&cfg.Backends.Primary, "backends.primary")...)
	errs = append(errs, validateBackend(&cfg.Backends.Secondary, "backends.secondary")...)
	errs = append(errs, validateConversation(&cfg.Conversation)...)
	errs = append(errs, validateAdaptation(&cfg.Adaptation)...)
	errs = append(errs, validateRetrieval(&cfg.Retrieval)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateBackend validates one backend configuration.
func validateBackend(cfg *BackendConfig, field string) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   field + ".base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   field + ".base_url",
			Message: fmt.Sprintf("invalid URL: %q", cfg.BaseURL),
		})
	}
	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   field + ".model",
			Message: "model is required",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   field + ".timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateConversation validates session history configuration.
func validateConversation(cfg *ConversationConfig) []FieldError {
	var errs []FieldError

	if cfg.LastNRounds < 1 {
		errs = append(errs, FieldError{
			Field:   "conversation.last_n_rounds",
			Message: "must be at least 1",
		})
	}
	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "conversation.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateAdaptation validates prompt adaptation configuration.
func validateAdaptation(cfg *AdaptationConfig) []FieldError {
	var errs []FieldError

	if cfg.MinCommentLength < 0 {
		errs = append(errs, FieldError{
			Field:   "adaptation.min_comment_length",
			Message: "must not be negative",
		})
	}
	if cfg.MinPromptLength < 1 {
		errs = append(errs, FieldError{
			Field:   "adaptation.min_prompt_length",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxPromptLength <= cfg.MinPromptLength {
		errs = append(errs, FieldError{
			Field:   "adaptation.max_prompt_length",
			Message: "must be greater than min_prompt_length",
		})
	}

	return errs
}

// validateRetrieval validates knowledge retrieval configuration.
func validateRetrieval(cfg *RetrievalConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled {
		if cfg.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   "retrieval.base_url",
				Message: "base URL is required when retrieval is enabled",
			})
		} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "retrieval.base_url",
				Message: fmt.Sprintf("invalid URL: %q", cfg.BaseURL),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level: %q", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format: %q", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}
