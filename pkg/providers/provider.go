package providers

import "context"

// Provider is the interface implemented by all LLM backend adapters.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return promptly when
// the context is cancelled.
type Provider interface {
	// SendCompletion sends a blocking, non-streaming completion request.
	// Returns an error if the request fails, times out, or the backend
	// returns a non-success status. No automatic retry is performed.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamCompletion sends a streaming completion request and returns a
	// channel yielding incremental chunks as they arrive.
	//
	// The caller must drain the channel until it closes. A mid-stream
	// failure is delivered as a final chunk with Err set. Cancelling the
	// context closes the upstream stream and ends the channel.
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan *StreamChunk, error)

	// Name returns the backend's configured name (e.g., "local", "large").
	Name() string

	// Model returns the backend's default model identifier.
	Model() string

	// Close releases held resources (HTTP connections). The provider must
	// not be used after Close.
	Close() error
}
