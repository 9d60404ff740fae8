package udap

import "strings"

// TieredOAuthProfile marks optional tiered-exchange support in a server's
// udap_profiles_supported list.
const TieredOAuthProfile = "udap_to"

// Metadata is the validated UDAP well-known document for one server.
type Metadata struct {
	UDAPVersionsSupported  []string `json:"udap_versions_supported"`
	UDAPProfilesSupported  []string `json:"udap_profiles_supported"`
	GrantTypesSupported    []string `json:"grant_types_supported"`
	ScopesSupported        []string `json:"scopes_supported"`
	AuthorizationEndpoint  string   `json:"authorization_endpoint"`
	TokenEndpoint          string   `json:"token_endpoint"`
	RegistrationEndpoint   string   `json:"registration_endpoint"`
	SignedMetadata         string   `json:"signed_metadata"`
	SigningAlgoritmsValues []string `json:"token_endpoint_auth_signing_alg_values_supported"`
}

// SupportsGrantType reports whether the server advertises the given grant.
func (m *Metadata) SupportsGrantType(flow Flow) bool {
	for _, gt := range m.GrantTypesSupported {
		if gt == string(flow) {
			return true
		}
	}
	return false
}

// SupportsTieredOAuth reports whether the server advertises tiered exchange.
func (m *Metadata) SupportsTieredOAuth() bool {
	for _, p := range m.UDAPProfilesSupported {
		if p == TieredOAuthProfile {
			return true
		}
	}
	return false
}

// ScopeString joins scopes_supported into the space-delimited form stored on
// a server profile.
func (m *Metadata) ScopeString() string {
	return strings.Join(m.ScopesSupported, " ")
}

// RegistrationResponse is the outcome of a dynamic registration round trip.
// Status carries the HTTP status so the caller can distinguish 200/201 from a
// registration rejection without the transport layer deciding for it.
type RegistrationResponse struct {
	Status   int
	ClientID string
	Scope    string
	Body     string
}

// Issued reports whether the server accepted the registration.
func (r *RegistrationResponse) Issued() bool {
	return r.Status == 200 || r.Status == 201
}

// TokenResponse is the decoded body of a successful token endpoint call.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// AuthorizeData is phase one of the authorization-code grant: the URL the
// user agent must be redirected to and the anti-forgery state embedded in it.
type AuthorizeData struct {
	AuthorizeURL string
	State        string
}
