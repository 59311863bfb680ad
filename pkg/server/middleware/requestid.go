package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"sophonine/auracall/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with a unique ID, honoring a
// client-supplied X-Request-ID when present. The ID is stored in the
// request context and echoed in the response headers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from a request's context.
func GetRequestID(r *http.Request) string {
	return logging.GetRequestID(r.Context())
}
