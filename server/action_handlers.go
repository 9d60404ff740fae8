package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/fhir"
	"github.com/udap-tools/udap-client-app/sessions"
)

// Action discriminator values accepted by the dispatch endpoint.
const (
	actionClientReg     = "clientReg"
	actionGetB2BToken   = "getB2bToken"
	actionGetB2CToken   = "getB2cToken"
	actionClearSession  = "clearSession"
	actionPatientQuery  = "patientQuery"
	actionPatientSearch = "patientSearch"
	actionPatientMatch  = "patientMatch"
)

// ActionHandler dispatches the POSTed action against the orchestration
// service. Every failure is recorded on the session or rendered inline;
// nothing here is fatal to the process.
func (s *Server) ActionHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad form data", http.StatusBadRequest)
			return
		}

		sid := sessionID(r)
		action := r.FormValue("action")
		data := indexData{}

		switch action {
		case actionClientReg:
			if err := s.flows.RegisterClients(r.Context(), sid); err != nil {
				log.Error().Err(err).Msg("client registration action failed")
			}

		case actionGetB2BToken:
			if err := s.flows.GetB2BToken(r.Context(), sid); err != nil {
				log.Error().Err(err).Msg("B2B token action failed")
			}

		case actionGetB2CToken:
			authorizeURL, err := s.flows.BeginAuthorization(r.Context(), sid, r.FormValue("idpUrl"))
			if err == nil {
				// Redirecting to the external authorize endpoint; the
				// session now holds the pending state value.
				http.Redirect(w, r, authorizeURL, http.StatusFound)
				return
			}
			log.Error().Err(err).Msg("B2C authorize action failed")

		case actionClearSession:
			if err := s.flows.ClearSession(sid); err != nil {
				log.Error().Err(err).Msg("clear session action failed")
			}

		case actionPatientQuery:
			data.QueryResponse = s.patientQuery(r)

		case actionPatientSearch:
			data.SearchResponse = s.patientSearch(r)

		case actionPatientMatch:
			data.MatchResponse = s.patientMatch(r)

		default:
			if name := r.FormValue("dropDownServerSelect"); name != "" {
				if err := s.flows.SelectServer(name); err != nil {
					log.Error().Err(err).Msg("server selection failed")
				}
			}
		}

		rendered := s.indexData(s.session(r))
		rendered.QueryResponse = data.QueryResponse
		rendered.SearchResponse = data.SearchResponse
		rendered.MatchResponse = data.MatchResponse

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, rendered); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
		}
	}
}

// sessionToken picks the bearer token the form asked to use.
func sessionToken(sess *sessions.Session, tokenToUse string) string {
	if tokenToUse == "b2b" {
		return sess.B2BToken
	}
	return sess.B2CToken
}

func (s *Server) patientQuery(r *http.Request) string {
	selected, ok := s.flows.Selected()
	if !ok {
		return "No server selected"
	}
	token := sessionToken(s.session(r), r.FormValue("tokenToUse"))

	result, err := s.gateway.FetchResource(r.Context(), selected.ServerBaseURL,
		r.FormValue("resourceToGet"), r.FormValue("patientId"), token)
	if err != nil {
		return "Error: " + err.Error()
	}
	return formatResult(result)
}

func (s *Server) patientSearch(r *http.Request) string {
	selected, ok := s.flows.Selected()
	if !ok {
		return "No server selected"
	}
	token := sessionToken(s.session(r), r.FormValue("tokenToUse"))

	result, err := s.gateway.SearchPatient(r.Context(), selected.ServerBaseURL, fhir.PatientSearch{
		BirthDate:  r.FormValue("dob"),
		FamilyName: r.FormValue("familyName"),
		GivenName:  r.FormValue("givenName"),
	}, token)
	if err != nil {
		return "Error: " + err.Error()
	}
	return formatResult(result)
}

func (s *Server) patientMatch(r *http.Request) string {
	selected, ok := s.flows.Selected()
	if !ok {
		return "No server selected"
	}
	token := sessionToken(s.session(r), r.FormValue("tokenToUse"))

	result, err := s.gateway.MatchPatient(r.Context(), selected.ServerBaseURL, fhir.MatchQuery{
		FamilyName: r.FormValue("familyName"),
		GivenName:  r.FormValue("givenName"),
		BirthDate:  r.FormValue("dob"),
		Gender:     r.FormValue("gender"),
		Phone:      r.FormValue("phone"),
	}, token)
	if err != nil {
		return "Error: " + err.Error()
	}
	return formatResult(result)
}

func formatResult(result *fhir.Result) string {
	return fmt.Sprintf("StatusCode: %d\nBody: %s", result.StatusCode, result.Body)
}
