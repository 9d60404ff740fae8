package filerepo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/servers/filerepo"
)

func TestReadMissingFile(t *testing.T) {
	store := filerepo.New(filepath.Join(t.TempDir(), "udap_servers.json"))

	doc, found, err := store.Read()
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, doc)
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "udap_servers.json")
	store := filerepo.New(path)

	written := &servers.Document{
		SelectedServerName: "Acme FHIR",
		UDAPServers: []servers.Profile{
			{
				Name:          "Acme FHIR",
				ServerBaseURL: "https://fhir.acme.test",
				CCClientID:    "cc-client-id",
				Selected:      true,
			},
		},
	}
	require.NoError(t, store.Write(written))

	doc, found, err := store.Read()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, written, doc)
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udap_servers.json")
	store := filerepo.New(path)

	require.NoError(t, store.Write(&servers.Document{SelectedServerName: "first"}))
	require.NoError(t, store.Write(&servers.Document{SelectedServerName: "second"}))

	doc, found, err := store.Read()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", doc.SelectedServerName)
}

func TestReadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udap_servers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := filerepo.New(path).Read()
	require.ErrorIs(t, err, servers.ErrStorage)
}
