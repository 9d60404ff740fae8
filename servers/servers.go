// Package servers holds the durable registry of known UDAP servers and the
// currently selected one. The registry is the single source of truth across
// process restarts; every mutation rewrites the whole persisted document.
package servers

import (
	"errors"
	"fmt"

	"github.com/udap-tools/udap-client-app/udap"
)

// Profile is one known server. Client identifiers stay empty until dynamic
// registration succeeds for the corresponding flow.
type Profile struct {
	Name             string `json:"name"`
	ServerBaseURL    string `json:"serverBaseUrl"`
	CCScopes         string `json:"ccScopes"`
	CCClientID       string `json:"ccClientId"`
	AuthCodeScopes   string `json:"authCodeScopes"`
	AuthCodeClientID string `json:"authCodeClientId"`
	Selected         bool   `json:"selected"`
}

// ClientID returns the profile's client identifier for the given flow.
func (p *Profile) ClientID(flow udap.Flow) string {
	if flow == udap.FlowClientCredentials {
		return p.CCClientID
	}
	return p.AuthCodeClientID
}

// Scopes returns the profile's requested scope string for the given flow.
func (p *Profile) Scopes(flow udap.Flow) string {
	if flow == udap.FlowClientCredentials {
		return p.CCScopes
	}
	return p.AuthCodeScopes
}

// SetRegistration records an issued client identifier and granted scope.
func (p *Profile) SetRegistration(flow udap.Flow, clientID, scope string) {
	if flow == udap.FlowClientCredentials {
		p.CCClientID = clientID
		p.CCScopes = scope
		return
	}
	p.AuthCodeClientID = clientID
	p.AuthCodeScopes = scope
}

// Document is the persisted form of the registry.
type Document struct {
	SelectedServerName string    `json:"selectedServerName"`
	UDAPServers        []Profile `json:"udapServers"`
}

// Registry is the in-process view of the document. It is owned exclusively by
// the orchestration service; concurrent writers racing on the underlying file
// are not supported.
type Registry struct {
	store Store
	doc   Document
}

// Load reads the persisted document through the store. An absent document
// yields an empty registry (the caller must add a server before anything else
// works); an unreadable or corrupt one is fatal at startup.
func Load(store Store) (*Registry, error) {
	doc, found, err := store.Read()
	if err != nil {
		return nil, fmt.Errorf("[Load] %w", err)
	}
	r := &Registry{store: store}
	if found {
		r.doc = *doc
	}
	return r, nil
}

// MustAddServer reports whether the registry holds no profiles yet.
func (r *Registry) MustAddServer() bool {
	return len(r.doc.UDAPServers) == 0
}

// Profiles returns a copy of every profile in stored order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, len(r.doc.UDAPServers))
	copy(out, r.doc.UDAPServers)
	return out
}

// FindSelected returns a copy of the profile with the given name, marked
// selected. The copy keeps callers from mutating the stored collection.
func (r *Registry) FindSelected(name string) (Profile, bool) {
	for _, p := range r.doc.UDAPServers {
		if p.Name == name {
			p.Selected = true
			return p, true
		}
	}
	return Profile{}, false
}

// Selected returns a copy of the profile named by the selected-name marker.
func (r *Registry) Selected() (Profile, bool) {
	return r.FindSelected(r.doc.SelectedServerName)
}

// Upsert overwrites the profile with the same name (or appends a new one),
// marks it selected, demotes every other profile, and persists the whole
// document immediately.
func (r *Registry) Upsert(profile Profile) error {
	if profile.Name == "" {
		return errors.New("[Upsert] profile name is required")
	}
	profile.Selected = true

	found := false
	for i := range r.doc.UDAPServers {
		if r.doc.UDAPServers[i].Name == profile.Name {
			r.doc.UDAPServers[i] = profile
			found = true
		} else {
			r.doc.UDAPServers[i].Selected = false
		}
	}
	if !found {
		r.doc.UDAPServers = append(r.doc.UDAPServers, profile)
	}
	r.doc.SelectedServerName = profile.Name

	return r.persist()
}

func (r *Registry) persist() error {
	if err := r.store.Write(&r.doc); err != nil {
		return fmt.Errorf("[persist] %w", err)
	}
	return nil
}
