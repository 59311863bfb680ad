package orchestrator

import "errors"

var (
	// ErrUnknownSession is returned for a non-empty session id the store
	// has never seen. Client-input error; no side effects.
	ErrUnknownSession = errors.New("unknown session id")

	// ErrSessionClosed is returned for a session the turn-ending
	// classifier already closed. Client-input error; no side effects.
	ErrSessionClosed = errors.New("session already closed")

	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query must not be empty")
)
