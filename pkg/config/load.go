package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention AURACALL_SECTION_FIELD (e.g., AURACALL_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("AURACALL_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("AURACALL_SERVER_AUTH_TOKEN"); val != "" {
		cfg.Server.AuthToken = val
	}
	if val := os.Getenv("AURACALL_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}

	// Backend overrides
	applyBackendEnvOverrides(&cfg.Backends.Primary, "AURACALL_BACKENDS_PRIMARY_")
	applyBackendEnvOverrides(&cfg.Backends.Secondary, "AURACALL_BACKENDS_SECONDARY_")

	// Conversation overrides
	if val := os.Getenv("AURACALL_CONVERSATION_LAST_N_ROUNDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Conversation.LastNRounds = i
		}
	}
	if val := os.Getenv("AURACALL_CONVERSATION_SWEEP_SCHEDULE"); val != "" {
		cfg.Conversation.SweepSchedule = val
	}

	// Adaptation overrides
	if val := os.Getenv("AURACALL_ADAPTATION_TEMPLATE_PATH"); val != "" {
		cfg.Adaptation.TemplatePath = val
	}
	if val := os.Getenv("AURACALL_ADAPTATION_MIN_COMMENT_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Adaptation.MinCommentLength = i
		}
	}

	// Retrieval overrides
	if val := os.Getenv("AURACALL_RETRIEVAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retrieval.Enabled = b
		}
	}
	if val := os.Getenv("AURACALL_RETRIEVAL_BASE_URL"); val != "" {
		cfg.Retrieval.BaseURL = val
	}
	if val := os.Getenv("AURACALL_RETRIEVAL_API_KEY"); val != "" {
		cfg.Retrieval.APIKey = val
	}

	// Feedback overrides
	if val := os.Getenv("AURACALL_FEEDBACK_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Feedback.Enabled = b
		}
	}
	if val := os.Getenv("AURACALL_FEEDBACK_PATH"); val != "" {
		cfg.Feedback.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("AURACALL_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("AURACALL_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("AURACALL_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

// applyBackendEnvOverrides applies environment variable overrides for one backend.
func applyBackendEnvOverrides(cfg *BackendConfig, prefix string) {
	if val := os.Getenv(prefix + "NAME"); val != "" {
		cfg.Name = val
	}
	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		cfg.BaseURL = val
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		cfg.APIKey = val
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		cfg.Model = val
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timeout = d
		}
	}
}
