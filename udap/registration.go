package udap

// Registration is a flow-specific dynamic client registration request. The
// two concrete types enumerate their fields statically instead of passing
// loosely-typed maps across the capability boundary.
type Registration interface {
	GrantType() Flow
	Fields() RegistrationFields
}

// RegistrationFields is the flattened claim set submitted inside the signed
// software statement.
type RegistrationFields struct {
	ClientName     string
	Contacts       []string
	GrantTypes     []string
	ResponseTypes  []string
	RedirectURIs   []string
	LogoURI        string
	Scope          string
	SubjectAltName string
}

// ClientCredentialsRegistration registers the machine-to-machine (B2B) flow.
type ClientCredentialsRegistration struct {
	ClientName     string
	Contact        string
	Scope          string
	SubjectAltName string
}

func (r ClientCredentialsRegistration) GrantType() Flow { return FlowClientCredentials }

func (r ClientCredentialsRegistration) Fields() RegistrationFields {
	return RegistrationFields{
		ClientName:     r.ClientName,
		Contacts:       []string{r.Contact},
		GrantTypes:     []string{string(FlowClientCredentials)},
		ResponseTypes:  []string{"token"},
		Scope:          r.Scope,
		SubjectAltName: r.SubjectAltName,
	}
}

// AuthorizationCodeRegistration registers the user-present (B2C) flow.
type AuthorizationCodeRegistration struct {
	ClientName     string
	Contact        string
	RedirectURI    string
	LogoURI        string
	Scope          string
	SubjectAltName string
}

func (r AuthorizationCodeRegistration) GrantType() Flow { return FlowAuthorizationCode }

func (r AuthorizationCodeRegistration) Fields() RegistrationFields {
	return RegistrationFields{
		ClientName:     r.ClientName,
		Contacts:       []string{r.Contact},
		GrantTypes:     []string{string(FlowAuthorizationCode)},
		ResponseTypes:  []string{"code"},
		RedirectURIs:   []string{r.RedirectURI},
		LogoURI:        r.LogoURI,
		Scope:          r.Scope,
		SubjectAltName: r.SubjectAltName,
	}
}
