package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware attaches a deadline to the request context. Handlers
// observe it through ctx.Done() and their outbound calls. Not applied to
// streaming routes, whose lifetime is bounded by the backend stream.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
