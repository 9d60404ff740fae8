package flows

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/sessions"
	"github.com/udap-tools/udap-client-app/udap"
)

// RegisterClients runs the registration algorithm for both grant flows
// against the selected server. Failures are local: they are recorded on the
// session's registration error field and the client identifier stays empty so
// a later attempt retries. A flow whose grant type the server does not
// advertise is skipped silently.
func (s *Service) RegisterClients(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, found := s.registry.Selected()
	if !found {
		return s.withSession(sessionID, func(sess *sessions.Session) {
			sess.RegistrationError = ErrNoServerSelected.Error()
		})
	}

	var regErrors string
	if err := s.registerFlow(ctx, &profile, udap.FlowClientCredentials); err != nil {
		regErrors = "Client Credentials Registration Error:\n" + err.Error()
	}
	if err := s.registerFlow(ctx, &profile, udap.FlowAuthorizationCode); err != nil {
		if regErrors != "" {
			regErrors += "\n"
		}
		regErrors += "Auth Code Flow Registration Error:\n" + err.Error()
	}

	return s.withSession(sessionID, func(sess *sessions.Session) {
		sess.RegistrationError = regErrors
	})
}

// registerFlow registers one grant flow at most once. The idempotency guard
// is the profile's client identifier: once non-empty, no registration request
// ever goes out again for that server and flow.
func (s *Service) registerFlow(ctx context.Context, profile *servers.Profile, flow udap.Flow) error {
	handle, err := s.handles.GetOrCreate(ctx, *profile, flow)
	if err != nil {
		return err
	}

	if !handle.Metadata.SupportsGrantType(flow) {
		log.Debug().Str("server", profile.Name).Str("grant_type", string(flow)).
			Msg("server does not advertise grant type, skipping registration")
		return nil
	}
	if profile.ClientID(flow) != "" {
		return nil
	}

	log.Info().Str("server", profile.Name).Str("grant_type", string(flow)).
		Msg("application is not registered, registering with FHIR server")

	resp, err := handle.Client.Register(ctx, s.registrationFor(flow, profile))
	if err != nil {
		return err
	}
	if !resp.Issued() {
		return &RegistrationError{Status: resp.Status, Body: resp.Body}
	}

	profile.SetRegistration(flow, resp.ClientID, resp.Scope)
	handle.Client.SetClientID(resp.ClientID)
	return s.registry.Upsert(*profile)
}

// registrationFor builds the flow-specific registration request from the
// application identity and the profile's requested scopes.
func (s *Service) registrationFor(flow udap.Flow, profile *servers.Profile) udap.Registration {
	if flow == udap.FlowClientCredentials {
		return udap.ClientCredentialsRegistration{
			ClientName:     s.identity.ClientName + " UDAP B2B Flow",
			Contact:        s.identity.ClientContact,
			Scope:          profile.CCScopes,
			SubjectAltName: s.identity.B2BSubjectAltName,
		}
	}
	return udap.AuthorizationCodeRegistration{
		ClientName:     s.identity.ClientName + " UDAP B2C Flow",
		Contact:        s.identity.ClientContact,
		RedirectURI:    s.identity.RedirectURL,
		LogoURI:        s.identity.LogoURI,
		Scope:          profile.AuthCodeScopes,
		SubjectAltName: s.identity.B2CSubjectAltName,
	}
}
