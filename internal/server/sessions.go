package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// SessionRegistry tracks logged-in sessions. A session is active from a
// successful login until logout or token expiry.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]session
	now      func() time.Time
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Create starts a session for userID and returns its ID.
func (r *SessionRegistry) Create(userID uuid.UUID, expiresAt time.Time) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.sessions[id] = session{userID: userID, expiresAt: expiresAt}
	return id
}

// Active reports whether sessionID belongs to userID and has not ended.
func (r *SessionRegistry) Active(sessionID string, userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.userID != userID {
		return false
	}
	if !r.now().Before(s.expiresAt) {
		delete(r.sessions, sessionID)
		return false
	}
	return true
}

// Revoke ends a session. It reports whether the session existed.
func (r *SessionRegistry) Revoke(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	return ok
}

// Len returns the number of sessions held, expired ones included until pruned.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) pruneLocked() {
	now := r.now()
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
		}
	}
}
