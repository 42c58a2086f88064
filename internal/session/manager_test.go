package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/session"
)

func patient(username string) *identity.Identity {
	return &identity.Identity{Role: identity.RolePatient, Username: username}
}

func caregiver(username string) *identity.Identity {
	return &identity.Identity{Role: identity.RoleCaregiver, Username: username}
}

func TestLoginLogout(t *testing.T) {
	m := session.NewManager()

	_, ok := m.Current()
	assert.False(t, ok)

	require.NoError(t, m.Login(patient("p1")))

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "p1", current.Username)

	require.NoError(t, m.Logout())

	_, ok = m.Current()
	assert.False(t, ok)
}

func TestLoginWhileLoggedInRejected(t *testing.T) {
	// a second login must be rejected without changing state
	m := session.NewManager()

	require.NoError(t, m.Login(caregiver("cg1")))

	err := m.Login(patient("p1"))
	assert.ErrorIs(t, err, session.ErrAlreadyLoggedIn)

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "cg1", current.Username)
	assert.Equal(t, identity.RoleCaregiver, current.Role)
}

func TestLogoutWhileLoggedOut(t *testing.T) {
	m := session.NewManager()
	assert.ErrorIs(t, m.Logout(), session.ErrNotLoggedIn)
}

func TestRequire(t *testing.T) {
	m := session.NewManager()

	_, err := m.Require()
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	require.NoError(t, m.Login(patient("p1")))

	got, err := m.Require()
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Username)

	got, err = m.Require(identity.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Username)

	_, err = m.Require(identity.RoleCaregiver)
	assert.ErrorIs(t, err, session.ErrWrongRole)
}
