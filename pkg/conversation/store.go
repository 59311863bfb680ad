package conversation

import (
	"sync"
	"time"

	"sophonine/auracall/pkg/providers"
)

// Store keeps per-session conversation state keyed by session id.
//
// Map-level operations are individually race-free. Mutations to one
// session's history are serialized through a per-session mutex so two
// requests racing on the same id cannot interleave their appends.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	locks    map[string]*sync.Mutex

	now func() time.Time
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// Create registers an empty open session under the given id.
// Creating an id that already exists is a no-op.
func (s *Store) Create(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return
	}
	now := s.now()
	s.sessions[id] = &session{
		status:     StatusOpen,
		createdAt:  now,
		lastActive: now,
	}
	s.locks[id] = &sync.Mutex{}
}

// Exists reports whether the session id is known.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Lock returns the per-session mutex, creating the session if absent.
// Callers hold it across a full append-stream-finalize cycle when they
// need the session's history to stay consistent.
func (s *Store) Lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[id]; !ok {
		now := s.now()
		s.sessions[id] = &session{status: StatusOpen, createdAt: now, lastActive: now}
		s.locks[id] = &sync.Mutex{}
	}
	return s.locks[id]
}

// AppendUserTurn appends a user turn, creating the session if absent.
func (s *Store) AppendUserTurn(id, text string) {
	s.append(id, Turn{Role: providers.RoleUser, Content: text})
}

// AppendAssistantTurn appends an assistant turn. Safe no-op when text is
// empty: an aborted stream that produced nothing leaves no partial record.
func (s *Store) AppendAssistantTurn(id, text string) {
	if text == "" {
		return
	}
	s.append(id, Turn{Role: providers.RoleAssistant, Content: text})
}

// append adds the turn, creating the session on first user turn.
func (s *Store) append(id string, t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		now := s.now()
		sess = &session{status: StatusOpen, createdAt: now, lastActive: now}
		s.sessions[id] = sess
		s.locks[id] = &sync.Mutex{}
	}
	sess.turns = append(sess.turns, t)
	sess.lastActive = s.now()
}

// History returns a copy of the session's ordered turn history.
// Unknown sessions yield an empty slice.
func (s *Store) History(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// MarkClosed transitions the session to closed. Unknown ids are ignored.
func (s *Store) MarkClosed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.status = StatusClosed
		sess.lastActive = s.now()
	}
}

// IsClosed reports whether the session has been closed.
// Unknown sessions report false.
func (s *Store) IsClosed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return ok && sess.status == StatusClosed
}

// Delete removes a session and its lock.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.locks, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions eligible for pruning: closed sessions idle longer
// than closedTTL and open sessions idle longer than idleTTL. A zero TTL
// disables that criterion. Returns the number of sessions removed.
func (s *Store) Sweep(closedTTL, idleTTL time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		idle := now.Sub(sess.lastActive)
		prune := (sess.status == StatusClosed && closedTTL > 0 && idle > closedTTL) ||
			(sess.status == StatusOpen && idleTTL > 0 && idle > idleTTL)
		if prune {
			delete(s.sessions, id)
			delete(s.locks, id)
			removed++
		}
	}
	return removed
}
