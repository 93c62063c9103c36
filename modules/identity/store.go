package identity

import (
	"sync"
	"time"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
	"github.com/NotYuSheng/mernverse/metrics"
)

// session is one stored token binding.
type session struct {
	name     string
	lastSeen time.Time
}

// Store maps client-held session tokens to allocated display names and
// tracks recency. All mutations are serialized by a single mutex, so the
// read-allocate-insert inside Resolve is atomic and two concurrent
// first-time resolutions cannot receive the same name.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Resolve maps a session token to a display name.
//
// An empty token always yields a fresh ephemeral name with nothing
// stored (anonymous, non-reconnectable identity). A known token returns
// its bound name and refreshes last-seen. An unseen token allocates a
// name against the snapshot of every currently stored name, stores the
// binding, and returns it.
//
// The only error is chat.ErrNamePoolExhausted; callers are expected to
// degrade to an anonymous label rather than reject the connection.
func (s *Store) Resolve(token string) (name string, isNew bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		name, err = chat.AllocateName(s.assignedLocked())
		return name, true, err
	}

	if sess, ok := s.sessions[token]; ok {
		sess.lastSeen = s.now()
		return sess.name, false, nil
	}

	name, err = chat.AllocateName(s.assignedLocked())
	if err != nil {
		return "", true, err
	}
	s.sessions[token] = &session{name: name, lastSeen: s.now()}
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return name, true, nil
}

// Sweep removes every session whose last-seen exceeds ttl and reports
// how many were evicted. The scan runs under the store lock; it is a
// single pass over an in-memory map and performs no I/O, so resolvers
// are never blocked for long.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for token, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		metrics.SessionsSwept.Add(float64(removed))
		metrics.SessionsActive.Set(float64(len(s.sessions)))
	}
	return removed
}

// LastSeen reports the recency of a stored session.
func (s *Store) LastSeen(token string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return time.Time{}, false
	}
	return sess.lastSeen, true
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// assignedLocked snapshots every display name bound to a stored session.
// Caller must hold s.mu.
func (s *Store) assignedLocked() map[string]struct{} {
	assigned := make(map[string]struct{}, len(s.sessions))
	for _, sess := range s.sessions {
		assigned[sess.name] = struct{}{}
	}
	return assigned
}
