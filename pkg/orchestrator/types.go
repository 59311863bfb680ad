package orchestrator

// Mode selects whether a request participates in a multi-turn session.
type Mode string

const (
	// ModeSingle answers one query with no conversation state.
	ModeSingle Mode = "single"
	// ModeMulti threads the query through the session's history.
	ModeMulti Mode = "multi"
)

// Request is one submitted user query.
type Request struct {
	// SessionID is the caller-supplied session key. Empty in multi-turn
	// mode means "start a new session".
	SessionID string

	// Query is the user utterance.
	Query string

	// Mode is single- or multi-turn.
	Mode Mode

	// DomainHint is the caller's dialog type; "knowledge" enables the
	// knowledge-retrieval step.
	DomainHint string

	// Model optionally overrides the active backend's default model.
	Model string
}

// WantsKnowledge reports whether the request asks for knowledge retrieval.
func (r Request) WantsKnowledge() bool {
	return r.DomainHint == "knowledge"
}

// Fragment is one incrementally-delivered unit of the response stream.
// Fragments arrive in upstream order; the terminal fragment has empty
// Text, Final set, and the definitive SessionFinished flag.
type Fragment struct {
	// RequestID is the stable per-request identifier tagging every
	// fragment of one stream.
	RequestID string

	// SessionID is the session the stream belongs to (empty for
	// single-turn requests with no allocated session).
	SessionID string

	// Text is the incremental text content; empty on the terminal
	// fragment.
	Text string

	// Final marks the terminal fragment.
	Final bool

	// SessionFinished reports, on the terminal fragment, whether the
	// session was closed by this turn.
	SessionFinished bool
}

// Stream is the caller's handle on one in-flight response.
type Stream struct {
	// RequestID tags all fragments of this stream.
	RequestID string

	// SessionID is the resolved (possibly newly allocated) session id.
	SessionID string

	// NewSession reports whether the session id was allocated by this
	// request.
	NewSession bool

	fragments chan Fragment
	done      chan struct{}
	err       error
}

// Fragments returns the ordered fragment channel. It is closed when the
// stream ends, successfully or not; call Err afterwards to distinguish.
func (s *Stream) Fragments() <-chan Fragment {
	return s.fragments
}

// Err reports the terminal failure of the stream, if any. Valid after the
// fragment channel has closed.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// finish records the outcome and closes the stream exactly once.
func (s *Stream) finish(err error) {
	s.err = err
	close(s.fragments)
	close(s.done)
}
