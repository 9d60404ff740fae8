package flows

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/sessions"
	"github.com/udap-tools/udap-client-app/udap"
)

// GetB2BToken drives the client-credentials grant and stores the issued token
// on the session. A failure records a structured error but never clears a
// previously obtained token.
func (s *Service) GetB2BToken(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, found := s.registry.Selected()
	if !found {
		return s.recordB2BError(sessionID, ErrNoServerSelected)
	}
	if profile.CCClientID == "" {
		return s.recordB2BError(sessionID, ErrNotRegistered)
	}

	handle, err := s.handles.GetOrCreate(ctx, profile, udap.FlowClientCredentials)
	if err != nil {
		return s.recordB2BError(sessionID, err)
	}

	token, err := handle.Client.ClientCredentialsToken(ctx, profile.CCScopes)
	if err != nil {
		return s.recordB2BError(sessionID, err)
	}

	return s.withSession(sessionID, func(sess *sessions.Session) {
		sess.B2BToken = token.AccessToken
		sess.B2BTokenError = ""
	})
}

func (s *Service) recordB2BError(sessionID string, cause error) error {
	log.Error().Err(cause).Msg("client credentials token request failed")
	if err := s.withSession(sessionID, func(sess *sessions.Session) {
		sess.B2BTokenError = tokenErrorFrom(cause).Error()
	}); err != nil {
		return err
	}
	return cause
}

// BeginAuthorization is phase one of the authorization-code grant: it builds
// the authorize redirect, stores the anti-forgery state on the session, and
// returns the URL the user agent must be sent to. The flow cannot proceed to
// the callback phase without that state stored.
func (s *Service) BeginAuthorization(ctx context.Context, sessionID, idpURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, found := s.registry.Selected()
	if !found {
		return "", s.recordB2CError(sessionID, sessions.PhaseIdle, ErrNoServerSelected)
	}
	if profile.AuthCodeClientID == "" {
		return "", s.recordB2CError(sessionID, sessions.PhaseIdle, ErrNotRegistered)
	}

	handle, err := s.handles.GetOrCreate(ctx, profile, udap.FlowAuthorizationCode)
	if err != nil {
		return "", s.recordB2CError(sessionID, sessions.PhaseAuthorizationRequested, err)
	}

	authorize, err := handle.Client.AuthorizationURL(idpURL, profile.AuthCodeScopes, s.identity.RedirectURL)
	if err != nil {
		return "", s.recordB2CError(sessionID, sessions.PhaseAuthorizationRequested, err)
	}

	if err := s.withSession(sessionID, func(sess *sessions.Session) {
		sess.AuthzState = authorize.State
		sess.AuthCodePhase = sessions.PhaseCallbackPending
	}); err != nil {
		return "", err
	}
	return authorize.AuthorizeURL, nil
}

// CompleteAuthorization is phase two: the inbound callback. The query state
// must match the session's stored value byte for byte; a mismatch is terminal
// for this attempt and no exchange happens. The stored state is consumed
// either way, so a replayed callback cannot re-trigger an exchange.
func (s *Service) CompleteAuthorization(ctx context.Context, sessionID, state, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	if sess.AuthzState == "" || state != sess.AuthzState {
		sess.AuthzState = ""
		sess.AuthCodePhase = sessions.PhaseRejected
		if err := s.sessions.Upsert(sessionID, sess); err != nil {
			return err
		}
		return ErrStateMismatch
	}

	// State matched: consume it before anything else can fail.
	sess.AuthzState = ""
	if err := s.sessions.Upsert(sessionID, sess); err != nil {
		return err
	}

	profile, found := s.registry.Selected()
	if !found {
		return s.recordB2CError(sessionID, sessions.PhaseRejected, ErrNoServerSelected)
	}
	handle, err := s.handles.GetOrCreate(ctx, profile, udap.FlowAuthorizationCode)
	if err != nil {
		return s.recordB2CError(sessionID, sessions.PhaseRejected, err)
	}

	token, err := handle.Client.ExchangeCode(ctx, code, s.identity.RedirectURL)
	if err != nil {
		return s.recordB2CError(sessionID, sessions.PhaseRejected, err)
	}

	return s.withSession(sessionID, func(sess *sessions.Session) {
		sess.B2CToken = token.AccessToken
		sess.B2CTokenError = ""
		sess.AuthCodePhase = sessions.PhaseCompleted
	})
}

func (s *Service) recordB2CError(sessionID string, phase sessions.AuthCodePhase, cause error) error {
	log.Error().Err(cause).Msg("authorization code flow failed")
	if err := s.withSession(sessionID, func(sess *sessions.Session) {
		sess.B2CTokenError = tokenErrorFrom(cause).Error()
		sess.AuthCodePhase = phase
	}); err != nil {
		return err
	}
	return cause
}
