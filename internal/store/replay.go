package store

import (
	"context"
	"fmt"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/state"
)

// Applier applies one action to a state. Satisfied by engine.Engine.
type Applier interface {
	Apply(st *state.GameState, act action.Action) (*state.GameState, error)
}

// ReplayReport summarizes a verified replay.
type ReplayReport struct {
	GameID   string
	Applied  int
	Verified int
	// FirstDivergence is the seq of the first entry whose fingerprint
	// did not match, or -1 when every entry verified.
	FirstDivergence int64
}

// Replay rebuilds a game's state by applying its journal against the
// initial snapshot, verifying each entry's fingerprint along the way.
// A fingerprint mismatch stops the replay and returns the report with
// FirstDivergence set; the state returned is the last verified one.
func Replay(ctx context.Context, s *Store, applier Applier, gameID string) (*state.GameState, ReplayReport, error) {
	report := ReplayReport{GameID: gameID, FirstDivergence: -1}

	rec, err := s.ReadGame(ctx, gameID)
	if err != nil {
		return nil, report, err
	}
	entries, err := s.ReadActions(ctx, gameID)
	if err != nil {
		return nil, report, err
	}

	st := rec.InitialState
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		next, err := applier.Apply(st, entry.Action)
		if err != nil {
			return nil, report, fmt.Errorf("replay %s: seq %d rejected: %w", gameID, entry.Seq, err)
		}
		report.Applied++

		if fp := state.Fingerprint(next); fp != entry.Fingerprint {
			report.FirstDivergence = entry.Seq
			return st, report, nil
		}
		report.Verified++
		st = next
	}
	return st, report, nil
}
