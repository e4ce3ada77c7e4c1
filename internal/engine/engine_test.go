package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Test fixtures build explicit states (stacked supply piles, chosen
// hands) so every outcome is hand-computable.

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	gs := innovation.Spec()
	if errs := gs.Validate(); len(errs) > 0 {
		t.Fatalf("innovation spec invalid: %v", errs[0])
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(gs, opts...)
}

func inst(cardID string) state.Card {
	return state.Card{CardID: cardID, InstanceID: cardID}
}

// instFor mints a second physical copy of a card for an opponent.
func instFor(cardID, suffix string) state.Card {
	return state.Card{CardID: cardID, InstanceID: cardID + "#" + suffix}
}

type fixture struct {
	st *state.GameState
}

func newFixture() *fixture {
	return &fixture{st: &state.GameState{
		GameID: "test_game",
		Phase:  state.PhaseAction,
		Players: []state.PlayerState{
			{ID: "p1", Board: map[string]state.ZoneStack{}},
			{ID: "p2", Board: map[string]state.ZoneStack{}},
		},
		CurrentPlayerIdx:      0,
		ActionsRemaining:      2,
		SupplyPiles:           map[int]state.ZoneStack{},
		AchievementsAvailable: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}}
}

func (f *fixture) hand(playerID string, cards ...state.Card) *fixture {
	p, _ := f.st.Player(playerID)
	p.Hand = append(p.Hand, cards...)
	return f
}

func (f *fixture) board(playerID, color string, topFirst ...state.Card) *fixture {
	p, _ := f.st.Player(playerID)
	p.Board[color] = state.ZoneStack{Cards: topFirst}
	return f
}

func (f *fixture) scorePile(playerID string, cards ...state.Card) *fixture {
	p, _ := f.st.Player(playerID)
	p.ScorePile = append(p.ScorePile, cards...)
	return f
}

// supply stacks a pile top-first.
func (f *fixture) supply(age int, topFirst ...state.Card) *fixture {
	f.st.SupplyPiles[age] = state.ZoneStack{Cards: topFirst}
	return f
}

func (f *fixture) actions(n int) *fixture {
	f.st.ActionsRemaining = n
	return f
}

// mustCard panics unless the spec knows the card; guards fixture typos.
func mustCard(t *testing.T, gs *spec.GameSpec, id string) *spec.CardDefinition {
	t.Helper()
	def, ok := gs.Card(id)
	if !ok {
		t.Fatalf("fixture references unknown card %q", id)
	}
	return def
}
