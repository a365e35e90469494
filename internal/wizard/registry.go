package wizard

import (
	"sync"
	"time"

	"github.com/turanweb/turan/internal/clock"
)

// Registry holds the live sessions of this process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    clock.Clock
}

func NewRegistry(c clock.Clock) *Registry {
	if c == nil {
		c = clock.Real{}
	}
	return &Registry{
		sessions: make(map[string]*Session),
		clock:    c,
	}
}

// Put adds s, closing any session it replaces.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	old, ok := r.sessions[s.ID()]
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	if ok && old != s {
		old.Close()
	}
}

// Get returns the session and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.Touch(r.clock.Now())
	}
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap closes and drops sessions not seen for longer than idle, returning
// their ids.
func (r *Registry) Reap(idle time.Duration) []string {
	cutoff := r.clock.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		s.Close()
		ids = append(ids, s.ID())
	}
	return ids
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
