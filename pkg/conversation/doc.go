// Package conversation holds the in-memory per-session conversation state:
// ordered turn history, open/closed lifecycle, and history truncation.
//
// All state lives in process memory with no crash-recovery guarantee.
// The store guards its session map with a RWMutex and gives every session
// its own mutex so concurrent requests racing on one session id cannot
// interleave appends; callers that need read-modify-write sequences on a
// single session should serialize at the request level.
//
// The package also contains the turn-ending classifier, a pure function
// that recognizes call-closing utterances, and a cron-driven sweeper that
// prunes closed or long-idle sessions.
package conversation
