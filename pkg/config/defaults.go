package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultBackendTimeout = 120 * time.Second

	DefaultLastNRounds   = 5
	DefaultSweepSchedule = "*/10 * * * *"
	DefaultClosedTTL     = 30 * time.Minute
	DefaultIdleTTL       = 12 * time.Hour

	DefaultMinCommentLength = 10
	DefaultMinPromptLength  = 100
	DefaultMaxPromptLength  = 6000
	DefaultHistoryCap       = 500

	DefaultRetrievalTimeout = 10 * time.Second

	DefaultFeedbackPath = "data/feedback.db"

	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	// WriteTimeout intentionally defaults to zero: a server-side write
	// deadline would cut off long token streams.
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.Server.CORSAllowOrigins) == 0 {
		cfg.Server.CORSAllowOrigins = []string{"*"}
	}

	// Backend defaults
	applyBackendDefaults(&cfg.Backends.Primary, "primary")
	applyBackendDefaults(&cfg.Backends.Secondary, "secondary")

	// Conversation defaults
	if cfg.Conversation.LastNRounds == 0 {
		cfg.Conversation.LastNRounds = DefaultLastNRounds
	}
	if cfg.Conversation.SweepSchedule == "" {
		cfg.Conversation.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Conversation.ClosedTTL == 0 {
		cfg.Conversation.ClosedTTL = DefaultClosedTTL
	}
	if cfg.Conversation.IdleTTL == 0 {
		cfg.Conversation.IdleTTL = DefaultIdleTTL
	}

	// Adaptation defaults
	if cfg.Adaptation.MinCommentLength == 0 {
		cfg.Adaptation.MinCommentLength = DefaultMinCommentLength
	}
	if cfg.Adaptation.MinPromptLength == 0 {
		cfg.Adaptation.MinPromptLength = DefaultMinPromptLength
	}
	if cfg.Adaptation.MaxPromptLength == 0 {
		cfg.Adaptation.MaxPromptLength = DefaultMaxPromptLength
	}
	if len(cfg.Adaptation.RequiredMarkers) == 0 {
		cfg.Adaptation.RequiredMarkers = []string{"角色", "回答要求", "医疗"}
	}
	if cfg.Adaptation.HistoryCap == 0 {
		cfg.Adaptation.HistoryCap = DefaultHistoryCap
	}

	// Retrieval defaults
	if cfg.Retrieval.Timeout == 0 {
		cfg.Retrieval.Timeout = DefaultRetrievalTimeout
	}

	// Feedback defaults
	if cfg.Feedback.Path == "" {
		cfg.Feedback.Path = DefaultFeedbackPath
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// applyBackendDefaults fills in defaults for one backend.
func applyBackendDefaults(cfg *BackendConfig, name string) {
	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultBackendTimeout
	}
}
