package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	// Server configures the HTTP front end.
	Server ServerConfig `yaml:"server"`

	// Backends configures the primary and secondary completion backends.
	Backends BackendsConfig `yaml:"backends"`

	// Conversation configures session history handling and sweeping.
	Conversation ConversationConfig `yaml:"conversation"`

	// Adaptation configures the prompt adaptation engine.
	Adaptation AdaptationConfig `yaml:"adaptation"`

	// Retrieval configures the optional knowledge retrieval service.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Feedback configures the feedback audit store.
	Feedback FeedbackConfig `yaml:"feedback"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// ListenAddress is the address the server binds to (e.g., ":8080").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response. Zero
	// disables it; streaming responses need that.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum duration to wait for the next request on
	// a kept-alive connection.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds non-streaming request handling.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AuthToken, when set, is required in the X-Auth-Token request header.
	AuthToken string `yaml:"auth_token"`

	// CORSAllowOrigins lists allowed CORS origins. "*" allows any.
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

// BackendConfig contains configuration for one completion backend.
type BackendConfig struct {
	// Name identifies the backend in logs, metrics, and reports.
	Name string `yaml:"name"`

	// BaseURL is the backend's API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token for the backend.
	APIKey string `yaml:"api_key"`

	// Model is the default model requested from this backend.
	Model string `yaml:"model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// BackendsConfig pairs the primary backend with its failover target.
type BackendsConfig struct {
	// Primary is the preferred backend.
	Primary BackendConfig `yaml:"primary"`

	// Secondary is the failover backend.
	Secondary BackendConfig `yaml:"secondary"`
}

// ConversationConfig contains session history configuration.
type ConversationConfig struct {
	// LastNRounds is the number of user/assistant rounds retained when a
	// long history is truncated.
	LastNRounds int `yaml:"last_n_rounds"`

	// SweepSchedule is the cron expression for the session sweeper.
	SweepSchedule string `yaml:"sweep_schedule"`

	// ClosedTTL is how long closed sessions are retained before sweeping.
	ClosedTTL time.Duration `yaml:"closed_ttl"`

	// IdleTTL is how long idle open sessions are retained before sweeping.
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// AdaptationConfig contains prompt adaptation configuration.
type AdaptationConfig struct {
	// TemplatePath is the base prompt template file. Empty uses the
	// built-in template; a configured file is hot-reloaded on change.
	TemplatePath string `yaml:"template_path"`

	// MinCommentLength is the minimum feedback comment length, in runes,
	// that qualifies for an LLM-assisted rewrite.
	MinCommentLength int `yaml:"min_comment_length"`

	// MinPromptLength is the minimum accepted rewritten prompt length in runes.
	MinPromptLength int `yaml:"min_prompt_length"`

	// MaxPromptLength is the maximum accepted rewritten prompt length in runes.
	MaxPromptLength int `yaml:"max_prompt_length"`

	// RequiredMarkers are substrings a rewritten prompt must retain.
	RequiredMarkers []string `yaml:"required_markers"`

	// HistoryCap bounds the in-memory optimization history.
	HistoryCap int `yaml:"history_cap"`
}

// RetrievalConfig contains knowledge retrieval configuration.
type RetrievalConfig struct {
	// Enabled toggles retrieval calls.
	Enabled bool `yaml:"enabled"`

	// BaseURL is the retrieval service base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token for the retrieval service.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-call timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// FeedbackConfig contains feedback audit store configuration.
type FeedbackConfig struct {
	// Enabled toggles the SQLite audit trail.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled toggles Prometheus metrics.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}

// TelemetryConfig groups observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}
