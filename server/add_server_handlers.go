package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/servers"
)

// GetMetadataHandler probes a candidate server's well-known metadata before
// anything is persisted, pre-filling the add-server form with the advertised
// scopes on success.
func (s *Server) GetMetadataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad form data", http.StatusBadRequest)
			return
		}
		if !strings.Contains(r.FormValue("action"), "getMetaData") || r.FormValue("serverBaseUrl") == "" {
			http.Redirect(w, r, RouteIndex, http.StatusFound)
			return
		}

		baseURL := strings.TrimRight(r.FormValue("serverBaseUrl"), "/")
		metadata, err := s.flows.ProbeServer(r.Context(), baseURL)
		if err != nil {
			log.Error().Err(err).Str("base_url", baseURL).Msg("metadata probe failed")
			s.recordAddServerError(r, err.Error())
			http.Redirect(w, r, RouteIndex, http.StatusFound)
			return
		}

		scopes := metadata.ScopeString()
		s.pendingMu.Lock()
		s.pending = newServerForm{
			Name:           r.FormValue("serverName"),
			ServerBaseURL:  baseURL,
			CCScopes:       scopes,
			AuthCodeScopes: scopes,
		}
		s.pendingMu.Unlock()

		http.Redirect(w, r, RouteIndex, http.StatusFound)
	}
}

// SaveServerHandler persists a newly added server as selected, with empty
// client identifiers so registration starts fresh.
func (s *Server) SaveServerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad form data", http.StatusBadRequest)
			return
		}
		if !strings.Contains(r.FormValue("action"), "saveServer") || r.FormValue("serverName") == "" {
			http.Redirect(w, r, RouteIndex, http.StatusFound)
			return
		}

		profile := servers.Profile{
			Name:           r.FormValue("serverName"),
			ServerBaseURL:  strings.TrimRight(r.FormValue("serverBaseUrl"), "/"),
			CCScopes:       r.FormValue("ccScopes"),
			AuthCodeScopes: r.FormValue("authCodeScopes"),
		}
		if err := s.flows.SaveServer(profile); err != nil {
			log.Error().Err(err).Str("server", profile.Name).Msg("saving server failed")
			s.recordAddServerError(r, "Error adding server: "+err.Error())
			http.Redirect(w, r, RouteIndex, http.StatusFound)
			return
		}

		s.pendingMu.Lock()
		s.pending = newServerForm{}
		s.pendingMu.Unlock()

		http.Redirect(w, r, RouteIndex, http.StatusFound)
	}
}

func (s *Server) recordAddServerError(r *http.Request, message string) {
	sess := s.session(r)
	sess.AddServerError = message
	if err := s.sessions.Upsert(sessionID(r), sess); err != nil {
		log.Error().Err(err).Msg("recording add-server error failed")
	}
}
