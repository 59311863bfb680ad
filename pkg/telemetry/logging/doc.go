// Package logging configures structured logging for the service on top of
// log/slog, and carries common request-scoped fields (request ID, session
// ID, backend) through context.Context so every layer logs them without
// plumbing.
package logging
