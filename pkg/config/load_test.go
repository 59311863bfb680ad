package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// minimalYAML is the smallest configuration that passes validation.
const minimalYAML = `
backends:
  primary:
    name: local
    base_url: http://127.0.0.1:8000/v1
    model: qwen2.5-7b
  secondary:
    name: large
    base_url: https://api.example.com/v1
    api_key: sk-test
    model: deepseek-v3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("write timeout = %v, want 0 (streaming must not be cut off)", cfg.Server.WriteTimeout)
	}
	if cfg.Conversation.LastNRounds != DefaultLastNRounds {
		t.Errorf("last_n_rounds = %d, want %d", cfg.Conversation.LastNRounds, DefaultLastNRounds)
	}
	if cfg.Conversation.SweepSchedule != DefaultSweepSchedule {
		t.Errorf("sweep schedule = %q, want default", cfg.Conversation.SweepSchedule)
	}
	if cfg.Adaptation.MinCommentLength != DefaultMinCommentLength {
		t.Errorf("min_comment_length = %d, want %d", cfg.Adaptation.MinCommentLength, DefaultMinCommentLength)
	}
	if cfg.Adaptation.MinPromptLength != DefaultMinPromptLength ||
		cfg.Adaptation.MaxPromptLength != DefaultMaxPromptLength {
		t.Errorf("prompt bounds = %d/%d, want %d/%d",
			cfg.Adaptation.MinPromptLength, cfg.Adaptation.MaxPromptLength,
			DefaultMinPromptLength, DefaultMaxPromptLength)
	}
	if len(cfg.Adaptation.RequiredMarkers) == 0 {
		t.Error("required markers not defaulted")
	}
	if cfg.Backends.Primary.Timeout != DefaultBackendTimeout {
		t.Errorf("backend timeout = %v, want default", cfg.Backends.Primary.Timeout)
	}
	if cfg.Feedback.Path != DefaultFeedbackPath {
		t.Errorf("feedback path = %q, want default", cfg.Feedback.Path)
	}
}

func TestLoadConfigFileValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML+`
server:
  listen_address: ":9090"
  request_timeout: 45s
conversation:
  last_n_rounds: 3
  sweep_schedule: "*/5 * * * *"
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.RequestTimeout != 45*time.Second {
		t.Errorf("request timeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Conversation.LastNRounds != 3 {
		t.Errorf("last_n_rounds = %d", cfg.Conversation.LastNRounds)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name      string
		yaml      string
		wantField string
	}{
		{
			"missing backend url",
			`
backends:
  primary:
    model: m
  secondary:
    base_url: https://api.example.com/v1
    model: m
`,
			"backends.primary.base_url",
		},
		{
			"bad backend url",
			strings.Replace(minimalYAML, "http://127.0.0.1:8000/v1", "not-a-url", 1),
			"backends.primary.base_url",
		},
		{
			"missing model",
			strings.Replace(minimalYAML, "model: qwen2.5-7b", "", 1),
			"backends.primary.model",
		},
		{
			"bad sweep schedule",
			minimalYAML + "\nconversation:\n  sweep_schedule: \"往复\"\n",
			"conversation.sweep_schedule",
		},
		{
			"bad log level",
			minimalYAML + "\ntelemetry:\n  logging:\n    level: noisy\n",
			"telemetry.logging.level",
		},
		{
			"retrieval enabled without url",
			minimalYAML + "\nretrieval:\n  enabled: true\n",
			"retrieval.base_url",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("invalid configuration accepted")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err type = %T, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tc.wantField, verr.Errors)
			}
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("AURACALL_SERVER_LISTEN_ADDRESS", ":7070")
	t.Setenv("AURACALL_BACKENDS_PRIMARY_MODEL", "qwen2.5-14b")
	t.Setenv("AURACALL_BACKENDS_SECONDARY_API_KEY", "sk-override")
	t.Setenv("AURACALL_CONVERSATION_LAST_N_ROUNDS", "7")
	t.Setenv("AURACALL_RETRIEVAL_ENABLED", "true")
	t.Setenv("AURACALL_RETRIEVAL_BASE_URL", "http://kb.internal:9000")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Server.ListenAddress != ":7070" {
		t.Errorf("listen address = %q, want env override", cfg.Server.ListenAddress)
	}
	if cfg.Backends.Primary.Model != "qwen2.5-14b" {
		t.Errorf("primary model = %q, want env override", cfg.Backends.Primary.Model)
	}
	if cfg.Backends.Secondary.APIKey != "sk-override" {
		t.Errorf("secondary api key = %q, want env override", cfg.Backends.Secondary.APIKey)
	}
	if cfg.Conversation.LastNRounds != 7 {
		t.Errorf("last_n_rounds = %d, want 7", cfg.Conversation.LastNRounds)
	}
	if !cfg.Retrieval.Enabled || cfg.Retrieval.BaseURL != "http://kb.internal:9000" {
		t.Errorf("retrieval = %+v, want env-enabled", cfg.Retrieval)
	}
}

func TestLoadConfigEnvOverridesRevalidate(t *testing.T) {
	// Enabling retrieval via env without a URL must fail the second
	// validation pass.
	t.Setenv("AURACALL_RETRIEVAL_ENABLED", "true")

	if _, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalYAML)); err == nil {
		t.Error("invalid env-overridden configuration accepted")
	}
}
