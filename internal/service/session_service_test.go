package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_DefaultIsLoggedOut(t *testing.T) {
	e := newEnv(t)

	snap := e.sessions.Load()
	assert.False(t, snap.LoggedIn)
	assert.Nil(t, snap.CurrentUser)
	assert.Nil(t, snap.CurrentChat)
}

func TestSession_LoadIsIdempotent(t *testing.T) {
	e := newEnv(t)
	require.True(t, e.sessions.Save(true, "alice", "room1"))

	a := e.sessions.Load()
	b := e.sessions.Load()
	assert.Equal(t, a, b)
	assert.Equal(t, "alice", a.User())
	assert.Equal(t, "room1", a.Room())
}

func TestSession_SurvivesRestartAndLogoutClearsRoom(t *testing.T) {
	e := newEnv(t)
	require.True(t, e.sessions.Save(true, "alice", "room1"))

	restarted := buildEnv(e.store, nil, true)
	snap := restarted.sessions.Load()
	assert.True(t, snap.LoggedIn)
	assert.Equal(t, "alice", snap.User())
	assert.Equal(t, "room1", snap.Room())

	require.True(t, restarted.sessions.Logout())
	snap = restarted.sessions.Load()
	assert.False(t, snap.LoggedIn)
	assert.Empty(t, snap.User())
	assert.Empty(t, snap.Room())
	assert.NotNil(t, snap.LastActivity)
}

func TestClientSessions(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.sessions.Open("c1", "alice"))
	require.NoError(t, e.sessions.Open("c2", "bob"))

	assert.True(t, e.sessions.Valid("c1", "alice"))
	assert.False(t, e.sessions.Valid("c1", "bob"))
	assert.False(t, e.sessions.Valid("c3", "alice"))

	require.NoError(t, e.sessions.SetRoom("c1", "R"))
	c1, _ := e.sessions.Client("c1")
	c2, _ := e.sessions.Client("c2")
	assert.Equal(t, "R", c1.Room())
	assert.Empty(t, c2.Room())

	assert.ErrorIs(t, e.sessions.SetRoom("missing", "R"), ErrNotFound)

	prev, err := e.sessions.Close("c1")
	require.NoError(t, err)
	assert.Equal(t, "R", prev.Room())
	assert.False(t, e.sessions.Valid("c1", "alice"))
	assert.True(t, e.sessions.Valid("c2", "bob"))

	_, err = e.sessions.Close("c1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, e.sessions.Open("", "alice"), ErrInvalidInput)
}
