package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sophonine/auracall/pkg/telemetry/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		header     string
		method     string
		wantStatus int
	}{
		{"disabled when unconfigured", "", "", http.MethodPost, http.StatusOK},
		{"valid token", "secret", "secret", http.MethodPost, http.StatusOK},
		{"missing token", "secret", "", http.MethodPost, http.StatusUnauthorized},
		{"wrong token", "secret", "nope", http.MethodPost, http.StatusForbidden},
		{"preflight bypasses auth", "secret", "", http.MethodOptions, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthMiddleware(tc.token)(okHandler())
			req := httptest.NewRequest(tc.method, "/chat", nil)
			if tc.header != "" {
				req.Header.Set(AuthTokenHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequestIDMiddlewareGenerates(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Error("no request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header id = %q, context id = %q", got, seen)
	}
}

func TestRequestIDMiddlewareHonorsClientID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "client-supplied-id" {
		t.Errorf("request id = %q, want the client-supplied one", seen)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	handler := CORSMiddleware(DefaultCORSConfig())(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://voice.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://voice.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight missing allow-methods")
	}
}

func TestCORSMiddlewareRestrictedOrigin(t *testing.T) {
	config := &CORSConfig{
		AllowedOrigins: []string{"https://trusted.example.com"},
		AllowedMethods: []string{"POST"},
	}
	handler := CORSMiddleware(config)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q for a disallowed origin, want empty", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "internal server error") {
		t.Errorf("body = %q, want generic error message", body)
	}
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	var deadlineSet bool
	handler := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !deadlineSet {
		t.Error("no deadline on request context")
	}
}

func TestTimeoutMiddlewareZeroDisabled(t *testing.T) {
	var deadlineSet bool
	handler := TimeoutMiddleware(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if deadlineSet {
		t.Error("deadline set with timeout disabled")
	}
}

func TestTimeoutMiddlewareExpires(t *testing.T) {
	var err error
	handler := TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			err = r.Context().Err()
		case <-time.After(2 * time.Second):
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if err != context.DeadlineExceeded {
		t.Errorf("ctx err = %v, want DeadlineExceeded", err)
	}
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the handler's status", rec.Code)
	}
}

func TestResponseWriterFlushPassthrough(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	if _, ok := interface{}(rw).(http.Flusher); !ok {
		t.Fatal("wrapped writer does not implement http.Flusher")
	}
	rw.Flush()
	if !rec.Flushed {
		t.Error("Flush not forwarded to the underlying writer")
	}
}
