package chat

import (
	"sync"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/jonboulle/clockwork"
)

// DefaultSessionID is used when a caller does not name a session.
const DefaultSessionID = "default"

// History is the ordered transcript of a session. It is not safe for
// concurrent use; callers hold the owning Session's lock.
type History struct {
	turns []domain.Turn
}

// Append adds a turn to the end of the history.
func (h *History) Append(t domain.Turn) { h.turns = append(h.turns, t) }

// Len returns the number of stored turns.
func (h *History) Len() int { return len(h.turns) }

// Turns returns a copy of the stored turns.
func (h *History) Turns() []domain.Turn {
	out := make([]domain.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Recent returns a copy of the last n turns, or all of them when n <= 0.
func (h *History) Recent(n int) []domain.Turn {
	if n <= 0 || n >= len(h.turns) {
		return h.Turns()
	}
	out := make([]domain.Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Rollback truncates the history back to length n, discarding turns appended
// since. It is a no-op when the history is not longer than n.
func (h *History) Rollback(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(h.turns) {
		return
	}
	clear(h.turns[n:])
	h.turns = h.turns[:n]
}

// Clear empties the history.
func (h *History) Clear() { h.turns = nil }

// Session is one conversation. Its lock serializes turns and resets.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	history History

	// Guarded by SessionStore.mu.
	refs     int
	lastUsed time.Time
}

// SessionStore holds every live session in memory. Sessions nobody holds
// that have been idle for longer than idleTTL are dropped.
type SessionStore struct {
	clock   clockwork.Clock
	idleTTL time.Duration

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

// NewSessionStore creates an empty store. A nil clock uses real time; a
// zero idleTTL keeps sessions forever.
func NewSessionStore(clock clockwork.Clock, idleTTL time.Duration) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		clock:     clock,
		idleTTL:   idleTTL,
		sessions:  make(map[string]*Session),
		lastSweep: clock.Now(),
	}
}

// Acquire returns the session with the given id, creating it if needed, and
// locks it. The caller must invoke release exactly once.
func (s *SessionStore) Acquire(id string) (sess *Session, release func()) {
	sess = s.getOrCreate(id)
	sess.mu.Lock()
	return sess, func() {
		sess.mu.Unlock()
		s.mu.Lock()
		sess.refs--
		sess.lastUsed = s.clock.Now()
		s.mu.Unlock()
	}
}

// Transcript returns a copy of a session's history.
func (s *SessionStore) Transcript(id string) []domain.Turn {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.history.Turns()
}

// Count returns how many sessions exist.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops idle sessions and reports how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *SessionStore) sweepLocked() int {
	if s.idleTTL <= 0 {
		return 0
	}
	now := s.clock.Now()
	s.lastSweep = now

	removed := 0
	for id, sess := range s.sessions {
		if sess.refs == 0 && now.Sub(sess.lastUsed) >= s.idleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) getOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idleTTL > 0 && s.clock.Since(s.lastSweep) >= s.idleTTL {
		s.sweepLocked()
	}

	sess, ok := s.sessions[id]
	if !ok {
		now := s.clock.Now()
		sess = &Session{ID: id, CreatedAt: now, lastUsed: now}
		s.sessions[id] = sess
	}
	sess.refs++
	return sess
}
