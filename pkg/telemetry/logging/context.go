package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionIDKey is the context key for session identifiers.
	SessionIDKey contextKey = "session_id"

	// BackendKey is the context key for backend names.
	BackendKey contextKey = "backend"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSessionID adds a session identifier to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionID retrieves the session identifier from the context.
func GetSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

// WithBackend adds a backend name to the context.
func WithBackend(ctx context.Context, backend string) context.Context {
	return context.WithValue(ctx, BackendKey, backend)
}

// GetBackend retrieves the backend name from the context.
func GetBackend(ctx context.Context) string {
	if backend, ok := ctx.Value(BackendKey).(string); ok {
		return backend
	}
	return ""
}

// contextHandler decorates records logged through the *Context slog
// methods with the request-scoped fields stored in the context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID := GetRequestID(ctx); requestID != "" {
		record.AddAttrs(slog.String("request_id", requestID))
	}
	if sessionID := GetSessionID(ctx); sessionID != "" {
		record.AddAttrs(slog.String("session_id", sessionID))
	}
	if backend := GetBackend(ctx); backend != "" {
		record.AddAttrs(slog.String("backend", backend))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
