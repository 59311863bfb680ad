package conversation

import (
	"fmt"

	"sophonine/auracall/pkg/providers"
)

// DefaultLastNRounds is the number of user/assistant rounds retained ahead
// of the pending query when a long history is truncated.
const DefaultLastNRounds = 5

// TruncateThreshold is the history length beyond which truncation applies.
const TruncateThreshold = 10

// Truncate returns the most recent lastNRounds user/assistant rounds plus
// the pending user turn. The input history must start with a user turn and
// end with a user turn (the pending query is already the last element);
// histories at or below the threshold are returned unchanged.
//
// The retained slice always starts and ends with a user turn and has
// length 2*lastNRounds+1. A history that violates the user-bounded shape
// is a programming error upstream and panics rather than being papered
// over.
func Truncate(history []providers.Message, lastNRounds int) []providers.Message {
	if len(history) <= TruncateThreshold {
		return history
	}

	assertRole(history[0], providers.RoleUser, "first")
	assertRole(history[len(history)-1], providers.RoleUser, "last")

	keep := 2*lastNRounds + 1
	if keep >= len(history) {
		return history
	}

	out := history[len(history)-keep:]
	assertRole(out[0], providers.RoleUser, "first retained")
	return out
}

// assertRole panics when a turn does not carry the expected role.
func assertRole(m providers.Message, role, position string) {
	if m.Role != role {
		panic(fmt.Sprintf("conversation: %s turn has role %q, want %q", position, m.Role, role))
	}
}
