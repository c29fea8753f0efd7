package session

import (
	"os"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitz-game/blitzsrv/pkg/game"
)

func testLogger() slog.Logger {
	backend := slog.NewBackend(os.Stdout)
	return backend.Logger("TEST")
}

func TestRegistryCreateRejectsBlankUsername(t *testing.T) {
	r := NewRegistry(testLogger())
	_, err := r.Create("", 0)
	assert.ErrorIs(t, err, ErrBlankUsername)
}

func TestAddPlayerRejectsDuplicateUsername(t *testing.T) {
	r := NewRegistry(testLogger())
	s, err := r.Create("alice", 0)
	require.NoError(t, err)

	s.Lock()
	defer s.Unlock()
	_, err = s.AddPlayer("alice", 0)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Len(t, s.Players(), 1, "rejected join must not mutate the player list")
}

func TestAddPlayerAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry(testLogger())
	s, err := r.Create("alice", 0)
	require.NoError(t, err)

	s.Lock()
	bob, err := s.AddPlayer("bob", 0)
	s.Unlock()
	require.NoError(t, err)
	assert.Equal(t, 1, bob.ID)
}

func TestStartGameClosesJoinable(t *testing.T) {
	r := NewRegistry(testLogger())
	s, err := r.Create("alice", 0)
	require.NoError(t, err)

	s.Lock()
	_, err = s.AddPlayer("bob", 0)
	require.NoError(t, err)
	_, err = s.StartGame(game.DefaultPrefs())
	s.Unlock()
	require.NoError(t, err)

	s.Lock()
	defer s.Unlock()
	assert.False(t, s.Joinable())
	assert.NotNil(t, s.GameState())
}

func TestRemovePlayerPromotesNextAdmin(t *testing.T) {
	r := NewRegistry(testLogger())
	s, err := r.Create("alice", 0)
	require.NoError(t, err)

	s.Lock()
	_, err = s.AddPlayer("bob", 0)
	require.NoError(t, err)
	require.NoError(t, s.RemovePlayer(0))
	s.Unlock()

	s.Lock()
	defer s.Unlock()
	_, ok := s.Player(0)
	assert.False(t, ok, "removed player's id must not be reused")

	bob, ok := s.Player(1)
	require.True(t, ok, "remaining player keeps its originally assigned id")
	assert.Equal(t, "bob", bob.Username)
	assert.True(t, bob.IsSessionAdmin)
}

func TestActiveSessionsExcludesStartedSessions(t *testing.T) {
	r := NewRegistry(testLogger())
	s, err := r.Create("alice", 0)
	require.NoError(t, err)

	descriptors := r.ActiveSessions()
	require.Len(t, descriptors, 1)
	assert.Equal(t, []string{"alice"}, descriptors[0].Usernames)

	s.Lock()
	_, err = s.StartGame(game.DefaultPrefs())
	s.Unlock()
	require.NoError(t, err)

	assert.Empty(t, r.ActiveSessions())
}
