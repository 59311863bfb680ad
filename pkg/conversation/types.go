package conversation

import (
	"time"

	"sophonine/auracall/pkg/providers"
)

// Turn is one message in a conversation, immutable once appended.
type Turn struct {
	// Role is the sender: user, assistant, or system
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Message converts the turn to the provider wire shape.
func (t Turn) Message() providers.Message {
	return providers.Message{Role: t.Role, Content: t.Content}
}

// Status is the session lifecycle state.
type Status string

const (
	// StatusOpen means the session accepts further queries.
	StatusOpen Status = "open"
	// StatusClosed means the turn-ending classifier judged the call over;
	// further queries against the session are rejected.
	StatusClosed Status = "closed"
)

// session is the store's internal per-session record.
type session struct {
	turns      []Turn
	status     Status
	createdAt  time.Time
	lastActive time.Time
}
