package flows

import "github.com/udap-tools/udap-client-app/internal/config"

// Identity is the static application identity presented to every server:
// organization attributes for token requests, registration contact details,
// key material locations, and the flow-specific certificate subject
// alternative names.
type Identity struct {
	OrganizationID     string
	OrganizationName   string
	PurposeOfUse       string
	PrivateKeyFile     string
	PrivateKeyPassword string
	TrustAnchorFile    string
	ClientName         string
	ClientContact      string
	LogoURI            string
	RedirectURL        string
	B2BSubjectAltName  string
	B2CSubjectAltName  string
}

// IdentityFromConfig copies the UDAP identity out of the environment config.
func IdentityFromConfig(cfg config.UDAPConfig) Identity {
	return Identity{
		OrganizationID:     cfg.GetOrganizationID(),
		OrganizationName:   cfg.GetOrganizationName(),
		PurposeOfUse:       cfg.GetPurposeOfUse(),
		PrivateKeyFile:     cfg.GetPrivateKeyFile(),
		PrivateKeyPassword: cfg.GetPrivateKeyPassword(),
		TrustAnchorFile:    cfg.GetTrustAnchorFile(),
		ClientName:         cfg.GetClientName(),
		ClientContact:      cfg.GetClientContact(),
		LogoURI:            cfg.GetLogoURI(),
		RedirectURL:        cfg.GetRedirectURL(),
		B2BSubjectAltName:  cfg.GetB2BSubjectAltName(),
		B2CSubjectAltName:  cfg.GetB2CSubjectAltName(),
	}
}
