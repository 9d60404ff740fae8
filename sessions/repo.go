package sessions

import "errors"

var ErrSessionNotFound = errors.New("session not found")

// Repo stores browser sessions.
type Repo interface {
	// Upsert creates or updates a session.
	Upsert(sessionID string, session *Session) error

	// Get retrieves a session by ID.
	Get(sessionID string) (*Session, error)

	// Delete removes a session by ID.
	Delete(sessionID string) error

	// ClearVolatileAll clears tokens, pending authorization state, and error
	// fields on every session. Invoked when the shared server selection
	// changes, which invalidates every browser's tokens at once.
	ClearVolatileAll() error
}
