package adaptation

import "time"

// Category classifies a feedback record.
type Category string

const (
	// CategoryPositive records a "helpful" signal; no prompt change.
	CategoryPositive Category = "positive"
	// CategoryStandard records a standardized-adjustment trigger.
	CategoryStandard Category = "standard"
	// CategoryCustom records substantive free text that may drive an
	// LLM-assisted rewrite.
	CategoryCustom Category = "custom"
)

// Feedback is the canonical internal representation of one user feedback
// event. The HTTP boundary normalizes its loosely-typed payload into this
// shape before it reaches the engine.
type Feedback struct {
	// ID is the generated feedback identifier
	ID string `json:"id"`

	// SessionID is the session the feedback belongs to
	SessionID string `json:"session_id"`

	// Category is the normalized feedback category
	Category Category `json:"category"`

	// Kind is the adjustment kind for standard feedback, empty otherwise
	Kind Adjustment `json:"kind,omitempty"`

	// Comment is the optional free-text comment
	Comment string `json:"comment,omitempty"`

	// UserQuery is the triggering user query
	UserQuery string `json:"user_query"`

	// AssistantResponse is the triggering assistant response
	AssistantResponse string `json:"assistant_response"`

	// Rating is the normalized numeric rating (0 when absent)
	Rating int `json:"rating"`

	// ProblemSolved is the normalized resolution flag
	ProblemSolved bool `json:"problem_solved"`

	// Timestamp is when the feedback was received
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry is one record in the process-wide optimization history.
type HistoryEntry struct {
	// SessionID is the session the optimization applied to
	SessionID string `json:"session_id"`

	// Kind describes the optimization ("standard" or "custom")
	Kind Category `json:"kind"`

	// Adjustment is the adjustment kind for standard optimizations
	Adjustment Adjustment `json:"adjustment,omitempty"`

	// Outcome is "applied", "noop" (already present), or "rejected"
	Outcome string `json:"outcome"`

	// Timestamp is when the optimization ran
	Timestamp time.Time `json:"timestamp"`
}
