package session

import (
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
)

// Registry is the concurrent map from session id to Session (spec §4.3).
// Session ids are opaque, unique, and collision-resistant, generated with
// github.com/google/uuid in place of original_source/src/server/mod.rs's
// bson::oid::ObjectId.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log slog.Logger) *Registry {
	return &Registry{sessions: make(map[string]*Session), log: log}
}

// Create allocates a new session with a fresh opaque id and adds it to the
// registry. The returned Session is unlocked; callers must take its lock
// before reading or mutating it further.
func (r *Registry) Create(adminUsername string, adminFaceImageID uint32) (*Session, error) {
	if adminUsername == "" {
		return nil, ErrBlankUsername
	}
	id := uuid.NewString()
	s := New(id, adminUsername, adminFaceImageID, r.log)
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.log.Infof("session %s created by %s", id, adminUsername)
	return s, nil
}

// Get looks up a session by id without locking it.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete removes a session from the registry, e.g. once it becomes empty.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	r.log.Infof("session %s deleted", id)
}

// ActiveSessions returns a descriptor for every joinable session (spec
// §6 GetActiveSessions: "returns only joinable sessions").
func (r *Registry) ActiveSessions() []blitzrpc.SessionDescriptor {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	out := make([]blitzrpc.SessionDescriptor, 0, len(ids))
	for _, id := range ids {
		s, ok := r.Get(id)
		if !ok {
			continue
		}
		s.Lock()
		if s.Joinable() {
			usernames := make([]string, len(s.players))
			for i, p := range s.players {
				usernames[i] = p.Username
			}
			out = append(out, blitzrpc.SessionDescriptor{ID: s.ID, Usernames: usernames, Joinable: true})
		}
		s.Unlock()
	}
	return out
}

// Count returns the number of sessions currently tracked.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
