package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/udap-tools/udap-client-app/sessions"
)

const sessionCookieName = "udap_session"

type sessionIDKey struct{}

// withSession ensures the request carries a browser session: it reads the
// session cookie, creates a session lazily when none exists yet, and stores
// the session id on the request context.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sessionID = cookie.Value
		}

		if sessionID == "" || !s.sessionExists(sessionID) {
			sessionID = uuid.New().String()
			if err := s.sessions.Upsert(sessionID, &sessions.Session{
				CreatedAt:     time.Now(),
				AuthCodePhase: sessions.PhaseIdle,
			}); err != nil {
				http.Error(w, "Failed to create session", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey{}, sessionID)))
	}
}

func (s *Server) sessionExists(sessionID string) bool {
	_, err := s.sessions.Get(sessionID)
	return !errors.Is(err, sessions.ErrSessionNotFound) && err == nil
}

// sessionID returns the session id established by withSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey{}).(string)
	return id
}

// session loads the request's session, falling back to a zero session when it
// was destroyed mid-request (e.g. by the clear-session action).
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(sessionID(r))
	if err != nil {
		return &sessions.Session{AuthCodePhase: sessions.PhaseIdle}
	}
	return sess
}
