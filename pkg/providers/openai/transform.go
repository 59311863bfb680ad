package openai

import (
	"fmt"

	"sophonine/auracall/pkg/providers"
)

// Wire types for the OpenAI-compatible chat completions API.

// chatRequest is the request payload for /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	N           int           `json:"n,omitempty"`
}

// chatMessage is one message on the wire.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is a non-streaming response payload.
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// chatChoice is one completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// streamResponse is one chunk of the SSE stream.
type streamResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
}

// streamChoice is one choice inside a stream chunk.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// streamDelta is the incremental content of a stream chunk.
type streamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// transformRequest converts a provider-agnostic request to the wire format.
func transformRequest(req *providers.CompletionRequest) *chatRequest {
	out := &chatRequest{
		Model:       req.Model,
		Messages:    make([]chatMessage, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
		N:           1,
	}
	for i, msg := range req.Messages {
		out.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}
	return out
}

// transformResponse converts a wire response to provider-agnostic format.
func transformResponse(resp *chatResponse) (*providers.CompletionResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	// We always request N=1, so the first choice is the only one.
	choice := resp.Choices[0]

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Created:      resp.Created,
	}, nil
}

// transformStreamChunk converts a wire stream chunk to provider-agnostic
// format. Chunks without choices (keep-alives) yield nil.
func transformStreamChunk(chunk *streamResponse) *providers.StreamChunk {
	if len(chunk.Choices) == 0 {
		return nil
	}

	choice := chunk.Choices[0]
	return &providers.StreamChunk{
		Delta:        choice.Delta.Content,
		FinishReason: choice.FinishReason,
	}
}
