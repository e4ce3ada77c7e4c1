package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/store"
)

func TestSimulate_FinishesAndReportsWinner(t *testing.T) {
	out, _, err := executeCommand(t, nil, "simulate", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "finished after")
	assert.Contains(t, out, "Winner:")
}

func TestSimulate_Deterministic(t *testing.T) {
	first, _, err := executeCommand(t, nil, "--format", "json", "simulate", "--seed", "42")
	require.NoError(t, err)
	second, _, err := executeCommand(t, nil, "--format", "json", "simulate", "--seed", "42")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	var resp struct {
		Status string    `json:"status"`
		Data   SimResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sim_42", resp.Data.GameID)
	assert.NotEmpty(t, resp.Data.Winner)
	assert.NotEmpty(t, resp.Data.WinReason)
	assert.Positive(t, resp.Data.Actions)
}

func TestSimulate_ActionCapAborts(t *testing.T) {
	out, _, err := executeCommand(t, nil, "simulate", "--seed", "42", "--max-actions", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "did not finish")
}

func TestSimulate_JournalsThroughStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sim.db")

	_, _, err := executeCommand(t, nil, "simulate", "--seed", "7", "--db", dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	games, err := st.ListGames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"sim_7"}, games)

	last, err := st.LastSeq(ctx, "sim_7")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, last, int64(0))
}

func TestSimulate_RejectsBadPlayerCount(t *testing.T) {
	_, _, err := executeCommand(t, nil, "simulate", "--players", "9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
