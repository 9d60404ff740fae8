package sessions

import (
	"errors"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryRepo creates a new in-memory session repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
	}
}

// Upsert stores or updates a session.
func (r *InMemoryRepo) Upsert(sessionID string, session *Session) error {
	if sessionID == "" {
		return errors.New("sessionID cannot be empty")
	}
	if session == nil {
		return errors.New("session cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	copied := *session
	copied.ID = sessionID
	r.sessions[sessionID] = &copied
	return nil
}

// Get retrieves a session by ID, returning a copy.
func (r *InMemoryRepo) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.New("sessionID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// Delete removes a session.
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// ClearVolatileAll clears token and error state on every stored session.
func (r *InMemoryRepo) ClearVolatileAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		session.ClearVolatile()
	}
	return nil
}
