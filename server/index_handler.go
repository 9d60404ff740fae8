package server

import (
	"net/http"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/sessions"
)

// newServerForm holds the pending add-server values pre-filled by the
// metadata probe. Process-wide, like the rest of the server selection state.
type newServerForm struct {
	Name           string
	ServerBaseURL  string
	CCScopes       string
	AuthCodeScopes string
}

type indexData struct {
	ClientName        string
	B2BToken          string
	B2CToken          string
	RegistrationError string
	B2BTokenError     string
	B2CTokenError     string
	AddServerError    string
	UDAPServer        servers.Profile
	HasSelected       bool
	UDAPServers       []servers.Profile
	NewServer         newServerForm
	MustAddServer     bool
	QueryResponse     string
	SearchResponse    string
	MatchResponse     string
}

// IndexHandler renders the home page.
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.indexData(s.session(r))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
		}
	}
}

func (s *Server) indexData(sess *sessions.Session) indexData {
	selected, hasSelected := s.flows.Selected()

	s.pendingMu.Lock()
	pending := s.pending
	s.pendingMu.Unlock()

	return indexData{
		ClientName:        s.config.GetClientName(),
		B2BToken:          sess.B2BToken,
		B2CToken:          sess.B2CToken,
		RegistrationError: sess.RegistrationError,
		B2BTokenError:     sess.B2BTokenError,
		B2CTokenError:     sess.B2CTokenError,
		AddServerError:    sess.AddServerError,
		UDAPServer:        selected,
		HasSelected:       hasSelected,
		UDAPServers:       s.flows.Profiles(),
		NewServer:         pending,
		MustAddServer:     s.flows.MustAddServer(),
	}
}
