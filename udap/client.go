// Package udap defines the capability surface the orchestration core uses to
// talk UDAP (Unified Data Access Profiles) to a FHIR authorization server:
// metadata discovery with trust validation, dynamic client registration, and
// token requests for the client-credentials and authorization-code grants.
// The wire protocol itself lives behind the Client interface so the core can
// be exercised against a scripted double.
package udap

import "context"

// Flow identifies which OAuth grant a client handle is bound to.
type Flow string

const (
	FlowClientCredentials Flow = "client_credentials"
	FlowAuthorizationCode Flow = "authorization_code"
)

// Client is a protocol-capable handle bound to exactly one server base URL and
// one client identifier (possibly empty until registration completes).
type Client interface {
	// DiscoverMetadata fetches and validates the server's UDAP well-known
	// document, caching it on the handle. Fails with ErrMetadata when the
	// document or its trust chain does not validate.
	DiscoverMetadata(ctx context.Context) (*Metadata, error)

	// Register submits a dynamic client registration. A non-2xx status is
	// reported through the response, not the error; the error is reserved
	// for transport and encoding failures.
	Register(ctx context.Context, reg Registration) (*RegistrationResponse, error)

	// ClientCredentialsToken requests an access token using the
	// client-credentials grant with the given space-delimited scope string.
	ClientCredentialsToken(ctx context.Context, scope string) (*TokenResponse, error)

	// AuthorizationURL builds the authorize redirect for the authorization
	// code grant, returning the URL and the anti-forgery state bound to it.
	// idpURL is an optional tiered-OAuth identity provider hint.
	AuthorizationURL(idpURL, scope, redirectURL string) (*AuthorizeData, error)

	// ExchangeCode exchanges an authorization code for an access token.
	ExchangeCode(ctx context.Context, code, redirectURL string) (*TokenResponse, error)

	// ClientID returns the client identifier the handle currently presents.
	ClientID() string

	// SetClientID updates the identifier after a successful registration.
	SetClientID(id string)
}

// ClientConfig carries everything needed to construct a Client for one server.
type ClientConfig struct {
	PrivateKeyFile     string
	PrivateKeyPassword string
	TrustAnchorFile    string
	ClientID           string
	ServerBaseURL      string
	OrganizationID     string
	OrganizationName   string
	PurposeOfUse       string
}

// ClientFactory constructs protocol clients. The orchestration core only ever
// sees this function type, never a concrete implementation.
type ClientFactory func(cfg ClientConfig) (Client, error)
