package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/state"
)

func testApplier(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(innovation.Spec(),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// journalGame plays a short scripted game and journals every accepted
// action with its resulting fingerprint.
func journalGame(t *testing.T, s *Store, e *engine.Engine) (gameID string, final *state.GameState) {
	t.Helper()
	ctx := context.Background()
	st := newTestGame(t)
	gameID = st.GameID
	require.NoError(t, s.CreateGame(ctx, gameID, "innovation_base", st))

	script := []action.Action{
		action.NewDraw("p1"),
		action.NewEndTurn("p1"),
		action.NewDraw("p2"),
		action.NewDraw("p2"),
		action.NewEndTurn("p2"),
	}
	for i, act := range script {
		next, err := e.Apply(st, act)
		require.NoError(t, err, "script step %d", i)
		_, err = s.AppendAction(ctx, JournalEntry{
			GameID:      gameID,
			Seq:         int64(i),
			Action:      act,
			Fingerprint: state.Fingerprint(next),
		})
		require.NoError(t, err)
		st = next
	}
	return gameID, st
}

func TestReplay_ReproducesFinalState(t *testing.T) {
	s := openTestStore(t)
	e := testApplier(t)
	gameID, final := journalGame(t, s, e)

	replayed, report, err := Replay(context.Background(), s, e, gameID)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Applied)
	assert.Equal(t, 5, report.Verified)
	assert.Equal(t, int64(-1), report.FirstDivergence)
	assert.Equal(t, state.Fingerprint(final), state.Fingerprint(replayed))
}

func TestReplay_DetectsDivergence(t *testing.T) {
	s := openTestStore(t)
	e := testApplier(t)
	gameID, _ := journalGame(t, s, e)

	// Tamper with a journaled fingerprint.
	_, err := s.db.Exec(`UPDATE actions SET fingerprint = 'tampered' WHERE game_id = ? AND seq = 2`, gameID)
	require.NoError(t, err)

	_, report, err := Replay(context.Background(), s, e, gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.FirstDivergence)
	assert.Equal(t, 2, report.Verified, "entries before the divergence verified")
}

func TestReplay_UnknownGame(t *testing.T) {
	s := openTestStore(t)
	_, _, err := Replay(context.Background(), s, testApplier(t), "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}
