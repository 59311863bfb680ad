package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Error reports a failed knowledge lookup. Callers treat it as a soft
// failure and continue without knowledge.
type Error struct {
	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("knowledge retrieval failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("knowledge retrieval failed: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Config contains the settings for the retrieval service.
type Config struct {
	// Enabled toggles knowledge retrieval globally.
	Enabled bool `yaml:"enabled"`

	// BaseURL is the service address.
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer credential.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each lookup.
	Timeout time.Duration `yaml:"timeout"`
}

// Client queries the knowledge-retrieval service.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a retrieval client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "retrieval.client"),
	}
}

// Enabled reports whether lookups are configured.
func (c *Client) Enabled() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}

// retrieveRequest is the lookup payload.
type retrieveRequest struct {
	Query string `json:"query"`
}

// retrieveResponse is the service's answer envelope.
type retrieveResponse struct {
	Msg     string `json:"msg"`
	Content string `json:"content"`
}

// Retrieve queries the knowledge base and returns the snippet text.
func (c *Client) Retrieve(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(retrieveRequest{Query: query})
	if err != nil {
		return "", &Error{Message: "failed to marshal request", Cause: err}
	}

	url := c.config.BaseURL + "/v1/knowledge/retrieve"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &Error{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &Error{StatusCode: resp.StatusCode, Message: string(payload)}
	}

	var parsed retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{Message: "failed to decode response", Cause: err}
	}

	c.logger.DebugContext(ctx, "knowledge retrieved",
		"query_runes", len([]rune(query)),
		"snippet_runes", len([]rune(parsed.Content)),
	)
	return parsed.Content, nil
}
