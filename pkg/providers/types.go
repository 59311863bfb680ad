package providers

import "time"

// Message roles used throughout the gateway.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
// It is provider-agnostic and transformed to provider-specific wire formats
// by each adapter.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// CompletionRequest represents a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "deepseek-v3")
	Model string `json:"model"`

	// Messages is the full ordered message list, system instruction first
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stream indicates whether to stream the response
	Stream bool `json:"stream,omitempty"`
}

// CompletionResponse represents a provider-agnostic non-streaming response.
type CompletionResponse struct {
	// ID is the upstream response identifier
	ID string `json:"id"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the generated text
	Content string `json:"content"`

	// FinishReason indicates why generation stopped (stop, length, ...)
	FinishReason string `json:"finish_reason"`

	// Created is the Unix timestamp of the response
	Created int64 `json:"created"`
}

// StreamChunk is one incremental piece of a streaming response.
//
// A stream is a finite, non-restartable sequence of chunks. The producing
// goroutine closes the channel when the upstream stream ends; a chunk with
// Err set is always the last chunk delivered.
type StreamChunk struct {
	// Delta is the incremental text content of this chunk
	Delta string

	// FinishReason is set on the final content chunk (stop, length, ...)
	FinishReason string

	// Err reports a mid-stream failure. When non-nil the stream is dead.
	Err error
}

// Config contains the settings required to reach one backend endpoint.
type Config struct {
	// Name is the backend's configured name (e.g., "local", "large")
	Name string `yaml:"name"`

	// BaseURL is the API base URL (e.g., "https://api.deepseek.com/v1")
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer credential for the endpoint
	APIKey string `yaml:"api_key"`

	// Model is the default model identifier for this backend
	Model string `yaml:"model"`

	// Timeout bounds every request to the backend. A timeout is reported
	// as a backend failure, never as a hang.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns configures the HTTP connection pool
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost configures the HTTP connection pool
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout configures the HTTP connection pool
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}
