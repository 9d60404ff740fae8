package servers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/servers/fakerepo"
)

func loadRegistry(t *testing.T, store servers.Store) *servers.Registry {
	t.Helper()
	registry, err := servers.Load(store)
	require.NoError(t, err)
	return registry
}

func TestEmptyRegistryMustAddServer(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())

	require.True(t, registry.MustAddServer())
	require.Empty(t, registry.Profiles())

	_, found := registry.Selected()
	require.False(t, found)
}

func TestAddFirstServer(t *testing.T) {
	store := fakerepo.NewFakeStore()
	registry := loadRegistry(t, store)

	err := registry.Upsert(servers.Profile{
		Name:          "Acme FHIR",
		ServerBaseURL: "https://fhir.acme.test",
	})
	require.NoError(t, err)

	require.False(t, registry.MustAddServer())
	selected, found := registry.Selected()
	require.True(t, found)
	require.Equal(t, "Acme FHIR", selected.Name)
	require.Empty(t, selected.CCClientID)
	require.Empty(t, selected.AuthCodeClientID)

	require.Equal(t, 1, store.WriteCalls)
	require.Equal(t, "Acme FHIR", store.Doc.SelectedServerName)
}

func TestUpsertKeepsAtMostOneSelected(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())

	names := []string{"alpha", "beta", "gamma", "beta", "alpha"}
	for _, name := range names {
		err := registry.Upsert(servers.Profile{Name: name, ServerBaseURL: "https://" + name + ".test"})
		require.NoError(t, err)

		selectedCount := 0
		for _, p := range registry.Profiles() {
			if p.Selected {
				selectedCount++
				require.Equal(t, name, p.Name, "most recently upserted profile must be the selected one")
			}
		}
		require.Equal(t, 1, selectedCount)
	}

	// Re-upserting an existing name must not create a duplicate.
	require.Len(t, registry.Profiles(), 3)
}

func TestUpsertOverwritesExistingProfile(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())

	require.NoError(t, registry.Upsert(servers.Profile{Name: "alpha", CCClientID: "old-id"}))
	require.NoError(t, registry.Upsert(servers.Profile{Name: "alpha", CCClientID: "new-id"}))

	selected, found := registry.Selected()
	require.True(t, found)
	require.Equal(t, "new-id", selected.CCClientID)
}

func TestUpsertRequiresName(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())
	require.Error(t, registry.Upsert(servers.Profile{}))
}

func TestFindSelectedReturnsCopy(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())
	require.NoError(t, registry.Upsert(servers.Profile{Name: "alpha", CCScopes: "system/Patient.read"}))

	copy1, found := registry.FindSelected("alpha")
	require.True(t, found)
	copy1.CCScopes = "mutated"

	copy2, found := registry.FindSelected("alpha")
	require.True(t, found)
	require.Equal(t, "system/Patient.read", copy2.CCScopes)
}

func TestFindSelectedUnknownName(t *testing.T) {
	registry := loadRegistry(t, fakerepo.NewFakeStore())
	require.NoError(t, registry.Upsert(servers.Profile{Name: "alpha"}))

	_, found := registry.FindSelected("missing")
	require.False(t, found)
}

func TestLoadPropagatesStorageError(t *testing.T) {
	store := fakerepo.NewFakeStore()
	store.ReadErr = servers.ErrStorage

	_, err := servers.Load(store)
	require.ErrorIs(t, err, servers.ErrStorage)
}

func TestLoadRestoresPersistedSelection(t *testing.T) {
	store := fakerepo.NewFakeStore()
	store.Doc = &servers.Document{
		SelectedServerName: "beta",
		UDAPServers: []servers.Profile{
			{Name: "alpha"},
			{Name: "beta", CCClientID: "registered-id", Selected: true},
		},
	}

	registry := loadRegistry(t, store)
	selected, found := registry.Selected()
	require.True(t, found)
	require.Equal(t, "beta", selected.Name)
	require.Equal(t, "registered-id", selected.CCClientID)
}
