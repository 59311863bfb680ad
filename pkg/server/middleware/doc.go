// Package middleware provides the HTTP middleware chain for the service:
// panic recovery, request ID propagation, request logging, CORS, auth
// token checking, and per-request timeouts.
package middleware
