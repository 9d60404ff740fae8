// Package flows is the orchestration core: it tracks which server is
// selected, lazily builds protocol handles per grant flow, drives dynamic
// client registration exactly once per server and flow, and acquires tokens
// for the client-credentials and authorization-code grants.
package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/sessions"
	"github.com/udap-tools/udap-client-app/udap"
)

// Service owns the process-wide shared state: the server registry, the handle
// cache, and the selection pointer. All browser sessions share it, so
// switching servers from one browser affects every other session's
// subsequent operations. That sharing is deliberate.
type Service struct {
	mu       sync.Mutex
	identity Identity
	registry *servers.Registry
	sessions sessions.Repo
	factory  udap.ClientFactory
	handles  *HandleCache
}

func NewService(identity Identity, registry *servers.Registry, sessionRepo sessions.Repo, factory udap.ClientFactory) (*Service, error) {
	if registry == nil {
		return nil, errors.New("[NewService] registry is required")
	}
	if sessionRepo == nil {
		return nil, errors.New("[NewService] session repo is required")
	}
	if factory == nil {
		return nil, errors.New("[NewService] client factory is required")
	}
	return &Service{
		identity: identity,
		registry: registry,
		sessions: sessionRepo,
		factory:  factory,
		handles:  NewHandleCache(identity, factory),
	}, nil
}

// MustAddServer reports whether the registry is still empty.
func (s *Service) MustAddServer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.MustAddServer()
}

// Selected returns a copy of the currently selected server profile.
func (s *Service) Selected() (servers.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Selected()
}

// Profiles returns copies of every known server profile.
func (s *Service) Profiles() []servers.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Profiles()
}

// SelectServer makes the named profile current, persists the registry, drops
// both cached handles, and clears token and error state in every open
// session: their tokens belong to the previous server.
func (s *Service) SelectServer(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, found := s.registry.FindSelected(name)
	if !found {
		return fmt.Errorf("[SelectServer] %q: %w", name, ErrNoServerSelected)
	}
	if err := s.registry.Upsert(profile); err != nil {
		return fmt.Errorf("[SelectServer] %w", err)
	}

	s.handles.Invalidate()
	if err := s.sessions.ClearVolatileAll(); err != nil {
		return fmt.Errorf("[SelectServer] %w", err)
	}

	log.Info().Str("server", profile.Name).Msg("selected server changed")
	return nil
}

// SaveServer stores a newly added profile as selected, with empty client
// identifiers so registration starts fresh against it.
func (s *Service) SaveServer(profile servers.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.CCClientID = ""
	profile.AuthCodeClientID = ""
	if err := s.registry.Upsert(profile); err != nil {
		return fmt.Errorf("[SaveServer] %w", err)
	}

	s.handles.Invalidate()
	if err := s.sessions.ClearVolatileAll(); err != nil {
		return fmt.Errorf("[SaveServer] %w", err)
	}

	log.Info().Str("server", profile.Name).Str("base_url", profile.ServerBaseURL).Msg("saved new server")
	return nil
}

// ProbeServer constructs a throwaway unregistered handle for the given base
// URL and runs metadata discovery, so the add-server form can be pre-filled
// with the server's advertised scopes before anything is persisted.
func (s *Service) ProbeServer(ctx context.Context, baseURL string) (*udap.Metadata, error) {
	client, err := s.factory(udap.ClientConfig{
		PrivateKeyFile:     s.identity.PrivateKeyFile,
		PrivateKeyPassword: s.identity.PrivateKeyPassword,
		TrustAnchorFile:    s.identity.TrustAnchorFile,
		ServerBaseURL:      baseURL,
		OrganizationID:     s.identity.OrganizationID,
		OrganizationName:   s.identity.OrganizationName,
		PurposeOfUse:       s.identity.PurposeOfUse,
	})
	if err != nil {
		return nil, fmt.Errorf("[ProbeServer] %w", err)
	}
	metadata, err := client.DiscoverMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("[ProbeServer] %s: %w", baseURL, err)
	}
	return metadata, nil
}

// ClearSession destroys a browser session. The persisted registry is never
// touched by this action.
func (s *Service) ClearSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// withSession loads a session, applies fn, and writes it back.
func (s *Service) withSession(sessionID string, fn func(*sessions.Session)) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("[withSession] %w", err)
	}
	fn(sess)
	if err := s.sessions.Upsert(sessionID, sess); err != nil {
		return fmt.Errorf("[withSession] %w", err)
	}
	return nil
}
