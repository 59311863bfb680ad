package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sophonine/auracall/pkg/providers"
)

// Provider is the adapter for OpenAI-compatible chat completion APIs.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new OpenAI-compatible provider instance.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Backend: "openai",
			Field:   "name",
			Message: "backend name is required",
		}
	}
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Backend: config.Name,
			Field:   "base_url",
			Message: "base URL is required",
		}
	}

	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Info("backend initialized",
		"backend", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return p, nil
}

// SendCompletion sends a non-streaming completion request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	wireReq := transformRequest(req)
	wireReq.Stream = false

	bodyBytes, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.Config().BaseURL)
	resp, err := p.DoRequest(ctx, "POST", url, bodyBytes, p.AuthHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.BackendError{
			Backend: p.Name(),
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	var wireResp chatResponse
	if err := json.Unmarshal(payload, &wireResp); err != nil {
		return nil, &providers.ParseError{
			Backend:     p.Name(),
			RawResponse: string(payload),
			Cause:       err,
		}
	}

	result, err := transformResponse(&wireResp)
	if err != nil {
		return nil, &providers.ParseError{
			Backend: p.Name(),
			Cause:   err,
		}
	}

	slog.DebugContext(ctx, "completion request succeeded",
		"backend", p.Name(),
		"model", result.Model,
	)

	return result, nil
}

// StreamCompletion sends a streaming completion request. The returned
// channel is closed when the upstream stream ends; a mid-stream failure is
// delivered as a final chunk with Err set.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	wireReq := transformRequest(req)
	wireReq.Stream = true

	url := fmt.Sprintf("%s/chat/completions", p.Config().BaseURL)
	headers := p.AuthHeaders()
	headers["Accept"] = "text/event-stream"

	stream, err := newStreamReader(ctx, p.HTTPProvider, url, wireReq, headers)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *providers.StreamChunk, 64)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := stream.Read(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				select {
				case chunks <- &providers.StreamChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

// validateRequest checks the minimal request shape before hitting the wire.
func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if req.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	return nil
}
