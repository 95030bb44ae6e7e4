package ws

import (
	"sync"

	"github.com/thetronjohnson/layrr/internal/session"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// Registry tracks live sessions so the HTTP surface can reach them. The
// newest registration is the current session; a single bridge is the common
// case but reconnects briefly overlap.
type Registry struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*session.Session
	order    []id.SessionID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[id.SessionID]*session.Session)}
}

// Register adds a session.
func (r *Registry) Register(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)
}

// Unregister removes a session.
func (r *Registry) Unregister(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)
	for i, sid := range r.order {
		if sid == s.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Current returns the most recently connected session, or nil.
func (r *Registry) Current() *session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil
	}
	return r.sessions[r.order[len(r.order)-1]]
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
