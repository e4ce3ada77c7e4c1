package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/store"
)

// simulateInto plays a full journaled game and returns the db path.
func simulateInto(t *testing.T, seed string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "replay.db")
	_, _, err := executeCommand(t, nil, "simulate", "--seed", seed, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestReplay_VerifiesJournaledGame(t *testing.T) {
	dbPath := simulateInto(t, "11")

	out, _, err := executeCommand(t, nil, "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Game: sim_11")
	assert.Contains(t, out, "All journals verified")
}

func TestReplay_SingleGameFlag(t *testing.T) {
	dbPath := simulateInto(t, "11")

	out, _, err := executeCommand(t, nil, "replay", "--db", dbPath, "--game", "sim_11")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 game(s)")
}

func TestReplay_DetectsDivergence(t *testing.T) {
	dbPath := simulateInto(t, "11")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().ExecContext(context.Background(),
		`UPDATE actions SET fingerprint = 'bogus' WHERE game_id = 'sim_11' AND seq = 2`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, nil, "replay", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "diverges at seq 2")
}

func TestReplay_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, _, err := executeCommand(t, nil, "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No games found")
}

func TestReplay_UnknownGame(t *testing.T) {
	dbPath := simulateInto(t, "11")

	_, _, err := executeCommand(t, nil, "replay", "--db", dbPath, "--game", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_JSONOutput(t *testing.T) {
	dbPath := simulateInto(t, "11")

	out, _, err := executeCommand(t, nil, "--format", "json", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"all_verified": true`)
	assert.Contains(t, out, `"game_id": "sim_11"`)
}
