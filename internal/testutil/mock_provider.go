// Package testutil provides shared test doubles for the backend boundary.
package testutil

import (
	"context"
	"sync"

	"sophonine/auracall/pkg/providers"
)

// MockProvider is a scriptable implementation of the Provider interface.
// Responses are configured per-call; by default every call streams the
// chunks in Chunks and answers completions with Response.
type MockProvider struct {
	mu sync.Mutex

	// BackendName is returned by Name.
	BackendName string

	// DefaultModel is returned by Model.
	DefaultModel string

	// Chunks is the scripted stream content, yielded in order.
	Chunks []string

	// StreamErr, when set, is delivered as the final chunk's Err after
	// the scripted chunks.
	StreamErr error

	// OpenErr, when set, fails StreamCompletion and SendCompletion
	// before any content is produced.
	OpenErr error

	// Response is the scripted non-streaming completion content.
	Response string

	// Calls counts stream and completion requests.
	Calls int

	// LastRequest records the most recent request for assertions.
	LastRequest *providers.CompletionRequest
}

// NewMockProvider creates a mock backend with the given name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		BackendName:  name,
		DefaultModel: "mock-model",
		Response:     "mock response",
	}
}

// SendCompletion returns the scripted Response.
func (m *MockProvider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	m.mu.Lock()
	m.Calls++
	m.LastRequest = req
	openErr := m.OpenErr
	content := m.Response
	m.mu.Unlock()

	if openErr != nil {
		return nil, openErr
	}
	return &providers.CompletionResponse{
		Model:        m.DefaultModel,
		Content:      content,
		FinishReason: "stop",
	}, nil
}

// StreamCompletion yields the scripted Chunks, then StreamErr if set.
func (m *MockProvider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	m.mu.Lock()
	m.Calls++
	m.LastRequest = req
	openErr := m.OpenErr
	chunks := append([]string(nil), m.Chunks...)
	streamErr := m.StreamErr
	m.mu.Unlock()

	if openErr != nil {
		return nil, openErr
	}

	out := make(chan *providers.StreamChunk, len(chunks)+1)
	go func() {
		defer close(out)
		for _, delta := range chunks {
			select {
			case out <- &providers.StreamChunk{Delta: delta}:
			case <-ctx.Done():
				return
			}
		}
		if streamErr != nil {
			select {
			case out <- &providers.StreamChunk{Err: streamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// Name returns the configured backend name.
func (m *MockProvider) Name() string { return m.BackendName }

// Model returns the configured default model.
func (m *MockProvider) Model() string { return m.DefaultModel }

// Close is a no-op.
func (m *MockProvider) Close() error { return nil }
