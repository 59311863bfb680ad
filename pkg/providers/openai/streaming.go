package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sophonine/auracall/pkg/providers"
)

// streamReader reads Server-Sent Events from the backend's streaming API.
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool
}

// newStreamReader opens the streaming request and wraps its body.
func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *chatRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := provider.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	return &streamReader{
		provider: provider,
		resp:     resp.Body,
		scanner:  bufio.NewScanner(resp.Body),
	}, nil
}

// Read reads the next chunk from the stream.
// Returns nil, io.EOF when the stream ends normally.
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &providers.StreamError{
					Backend: s.provider.Name(),
					Message: "failed to read stream",
					Cause:   err,
				}
			}
			return nil, io.EOF
		}

		line := s.scanner.Text()
		if line == "" {
			continue
		}

		// Only data lines carry chunks; comments and event names are skipped.
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil, io.EOF
		}

		var wireChunk streamResponse
		if err := json.Unmarshal([]byte(data), &wireChunk); err != nil {
			return nil, &providers.ParseError{
				Backend:     s.provider.Name(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		chunk := transformStreamChunk(&wireChunk)
		if chunk == nil {
			continue
		}
		return chunk, nil
	}
}

// Close closes the stream and releases the response body.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
