package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

// AuthTokenHeader is the HTTP header carrying the shared auth token.
const AuthTokenHeader = "X-Auth-Token"

// AuthMiddleware checks the shared-token header on every request except
// CORS preflights. Missing token ⇒ 401, wrong token ⇒ 403. An empty
// configured token disables the check.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(AuthTokenHeader)
			if got == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing auth token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				slog.WarnContext(r.Context(), "rejected request with invalid auth token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusForbidden, "invalid auth token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
