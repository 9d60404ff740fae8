package config

type Config interface {
	EnvConfig
	UDAPConfig
}

type EnvConfig interface {
	GetPort() string
	GetHost() string
	GetAppName() string
	GetEnv() string
}

// UDAPConfig holds the static application identity presented to every UDAP
// server during dynamic client registration, plus the locations of the key
// material the UDAP client is constructed with.
type UDAPConfig interface {
	GetOrganizationID() string
	GetOrganizationName() string
	GetPurposeOfUse() string
	GetPrivateKeyFile() string
	GetPrivateKeyPassword() string
	GetTrustAnchorFile() string
	GetClientContact() string
	GetClientName() string
	GetLogoURI() string
	GetB2BSubjectAltName() string
	GetB2CSubjectAltName() string
	GetServerFile() string
	GetRedirectURL() string
}

type mainConfig struct {
	EnvVars
	UDAPVars
}

func New() Config {
	return mainConfig{}
}
