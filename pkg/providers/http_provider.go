package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HTTPProvider is the base implementation for HTTP-based backend adapters.
// It provides connection pooling and bounded timeouts. Concrete adapters
// (the OpenAI-compatible one in openai/) embed this struct.
//
// Unlike a general-purpose gateway client, HTTPProvider performs no
// automatic retries: a failed call is surfaced once and the caller decides
// what to do with it. The orchestration layer reports such failures to the
// router, whose consecutive-error accounting drives backend failover.
type HTTPProvider struct {
	// config contains the backend configuration
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config Config) *HTTPProvider {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	return &HTTPProvider{
		config: config,
		client: client,
	}
}

// Name returns the backend's configured name.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// Model returns the backend's default model identifier.
func (p *HTTPProvider) Model() string {
	return p.config.Model
}

// Config returns the backend configuration.
func (p *HTTPProvider) Config() Config {
	return p.config
}

// DoRequest performs a single HTTP request with timeout handling.
// Timeouts and context deadline expiry are normalized to *TimeoutError so
// the caller can treat them uniformly as backend failures.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending request to backend",
		"backend", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return nil, &TimeoutError{
				Backend: p.config.Name,
				Timeout: p.config.Timeout,
			}
		}
		return nil, &BackendError{
			Backend: p.config.Name,
			Message: "request failed",
			Cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded slice of the body for diagnostics.
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &BackendError{
			Backend:    p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    string(payload),
		}
	}

	return resp, nil
}

// Close releases idle connections held by the underlying transport.
func (p *HTTPProvider) Close() error {
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// isClientTimeout reports whether err is a net-level timeout from the
// http.Client's overall request timeout.
func isClientTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// AuthHeaders returns the standard bearer-token headers for the backend.
func (p *HTTPProvider) AuthHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.config.APIKey,
		"Content-Type":  "application/json",
	}
}
