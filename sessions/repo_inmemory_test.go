package sessions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/sessions"
)

func TestUpsertAndGet(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	err := repo.Upsert("sid-1", &sessions.Session{B2BToken: "token-1"})
	require.NoError(t, err)

	sess, err := repo.Get("sid-1")
	require.NoError(t, err)
	require.Equal(t, "sid-1", sess.ID)
	require.Equal(t, "token-1", sess.B2BToken)
}

func TestGetUnknownSession(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestUpsertValidation(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	require.Error(t, repo.Upsert("", &sessions.Session{}))
	require.Error(t, repo.Upsert("sid-1", nil))
}

func TestGetReturnsCopy(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("sid-1", &sessions.Session{AuthzState: "state-1"}))

	sess, err := repo.Get("sid-1")
	require.NoError(t, err)
	sess.AuthzState = "mutated"

	again, err := repo.Get("sid-1")
	require.NoError(t, err)
	require.Equal(t, "state-1", again.AuthzState)
}

func TestDelete(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("sid-1", &sessions.Session{}))

	require.NoError(t, repo.Delete("sid-1"))

	_, err := repo.Get("sid-1")
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)

	// Deleting again is a no-op.
	require.NoError(t, repo.Delete("sid-1"))
}

func TestClearVolatileAll(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("sid-1", &sessions.Session{
		B2BToken:      "b2b",
		B2CToken:      "b2c",
		AuthzState:    "pending",
		AuthCodePhase: sessions.PhaseCallbackPending,
		B2BTokenError: "stale error",
	}))
	require.NoError(t, repo.Upsert("sid-2", &sessions.Session{B2BToken: "other"}))

	require.NoError(t, repo.ClearVolatileAll())

	for _, id := range []string{"sid-1", "sid-2"} {
		sess, err := repo.Get(id)
		require.NoError(t, err)
		require.Empty(t, sess.B2BToken)
		require.Empty(t, sess.B2CToken)
		require.Empty(t, sess.AuthzState)
		require.Equal(t, sessions.PhaseIdle, sess.AuthCodePhase)
		require.Empty(t, sess.B2BTokenError)
	}
}
