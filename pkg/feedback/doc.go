// Package feedback persists user feedback records to a SQLite audit log.
//
// The in-memory adaptation engine is the authority for prompt state; this
// package is a durable trail behind it. Writes are best-effort from the
// caller's point of view: a failed insert is logged and the request that
// carried the feedback still succeeds.
package feedback
