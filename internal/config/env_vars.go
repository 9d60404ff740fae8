package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar = "PORT"
	hostEnvVar = "HOST"
	appNameVar = "APP_NAME"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	return GetEnv(portEnvVar, "8080")
}

func (EnvVars) GetHost() string {
	return GetEnv(hostEnvVar, "localhost")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "UDAP Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

type UDAPVars struct{}

var _ UDAPConfig = UDAPVars{}

func (UDAPVars) GetOrganizationID() string {
	return GetEnv("UDAP_ORGANIZATION_ID", "")
}

func (UDAPVars) GetOrganizationName() string {
	return GetEnv("UDAP_ORGANIZATION_NAME", "")
}

func (UDAPVars) GetPurposeOfUse() string {
	return GetEnv("UDAP_PURPOSE_OF_USE", "TREATMENT")
}

func (UDAPVars) GetPrivateKeyFile() string {
	return GetEnv("UDAP_PRIVATE_KEY_FILE", "./keys/client.p12")
}

func (UDAPVars) GetPrivateKeyPassword() string {
	return GetEnv("UDAP_PRIVATE_KEY_PASSWORD", "")
}

func (UDAPVars) GetTrustAnchorFile() string {
	return GetEnv("UDAP_TRUST_ANCHOR_FILE", "./keys/trust_anchor.pem")
}

func (UDAPVars) GetClientContact() string {
	return GetEnv("UDAP_CLIENT_CONTACT", "")
}

func (UDAPVars) GetClientName() string {
	return GetEnv("UDAP_CLIENT_NAME", "UDAP Client")
}

func (UDAPVars) GetLogoURI() string {
	return GetEnv("UDAP_LOGO_URI", "")
}

// Subject alternative names distinguish the flow-specific client certificates.
func (UDAPVars) GetB2BSubjectAltName() string {
	return GetEnv("UDAP_B2B_SAN", "")
}

func (UDAPVars) GetB2CSubjectAltName() string {
	return GetEnv("UDAP_B2C_SAN", "")
}

// GetServerFile returns the path of the persisted server registry document.
func (UDAPVars) GetServerFile() string {
	return GetEnv("UDAP_SERVER_FILE", "./data/udap_servers.json")
}

// GetRedirectURL returns the redirect URI registered for the authorization
// code flow and used on every authorize/exchange round trip.
func (c UDAPVars) GetRedirectURL() string {
	if url := os.Getenv("UDAP_REDIRECT_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("http://%s:%s/callback", EnvVars{}.GetHost(), EnvVars{}.GetPort())
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
