// Package sessions holds per-browser state: issued tokens, the pending
// authorization-code anti-forgery value, and the last error per flow.
// Session state never leaks across browsers; the shared server selection
// lives in the orchestration service instead.
package sessions

import "time"

// AuthCodePhase tracks the authorization-code flow for one session.
type AuthCodePhase string

const (
	PhaseIdle                   AuthCodePhase = "idle"
	PhaseAuthorizationRequested AuthCodePhase = "authorization_requested"
	PhaseCallbackPending        AuthCodePhase = "callback_pending"
	PhaseCompleted              AuthCodePhase = "completed"
	PhaseRejected               AuthCodePhase = "rejected"
)

// Session is one browser's state. Created on first request, destroyed on the
// clear-session action.
type Session struct {
	ID        string
	CreatedAt time.Time

	B2BToken string
	B2CToken string

	// AuthzState is the pending anti-forgery value, present only between
	// authorize and callback. Single-use: consumed exactly once.
	AuthzState    string
	AuthCodePhase AuthCodePhase

	RegistrationError string
	B2BTokenError     string
	B2CTokenError     string
	AddServerError    string
}

// ClearVolatile drops tokens, pending authorization state, and error fields.
// Used when the selected server changes underneath the session.
func (s *Session) ClearVolatile() {
	s.B2BToken = ""
	s.B2CToken = ""
	s.AuthzState = ""
	s.AuthCodePhase = PhaseIdle
	s.RegistrationError = ""
	s.B2BTokenError = ""
	s.B2CTokenError = ""
	s.AddServerError = ""
}
