package udap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/udap"
)

func TestMetadataSupportsGrantType(t *testing.T) {
	m := &udap.Metadata{GrantTypesSupported: []string{"client_credentials"}}

	require.True(t, m.SupportsGrantType(udap.FlowClientCredentials))
	require.False(t, m.SupportsGrantType(udap.FlowAuthorizationCode))
}

func TestMetadataSupportsTieredOAuth(t *testing.T) {
	m := &udap.Metadata{UDAPProfilesSupported: []string{"udap_dcr", "udap_authn"}}
	require.False(t, m.SupportsTieredOAuth())

	m.UDAPProfilesSupported = append(m.UDAPProfilesSupported, udap.TieredOAuthProfile)
	require.True(t, m.SupportsTieredOAuth())
}

func TestMetadataScopeString(t *testing.T) {
	m := &udap.Metadata{ScopesSupported: []string{"system/Patient.read", "user/Patient.read"}}
	require.Equal(t, "system/Patient.read user/Patient.read", m.ScopeString())

	require.Empty(t, (&udap.Metadata{}).ScopeString())
}

func TestRegistrationResponseIssued(t *testing.T) {
	require.True(t, (&udap.RegistrationResponse{Status: 200}).Issued())
	require.True(t, (&udap.RegistrationResponse{Status: 201}).Issued())
	require.False(t, (&udap.RegistrationResponse{Status: 400}).Issued())
	require.False(t, (&udap.RegistrationResponse{Status: 500}).Issued())
}
