package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/flows"
)

// CallbackHandler completes the authorization-code flow. A state mismatch is
// terminal for the attempt and gets an explicit message; any other failure is
// recorded on the session and shown on the home page.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		code := r.URL.Query().Get("code")

		err := s.flows.CompleteAuthorization(r.Context(), sessionID(r), state, code)
		if errors.Is(err, flows.ErrStateMismatch) {
			http.Error(w, "An invalid authorization code state was sent.", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("authorization code exchange failed")
		}

		http.Redirect(w, r, RouteIndex, http.StatusFound)
	}
}
