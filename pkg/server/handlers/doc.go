// Package handlers implements the HTTP request handlers: the SSE chat
// endpoint, session history, feedback ingestion, prompt report/reset, and
// health. Loosely-typed client JSON (string-or-bool, string-or-int
// fields) is normalized here, at the boundary, so the rest of the service
// only sees canonical types.
package handlers
