package innovation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/state"
)

func TestSpec_Validates(t *testing.T) {
	errs := Spec().Validate()
	for _, e := range errs {
		t.Errorf("spec error: %v", e)
	}
}

func TestSpec_AchievementThresholds(t *testing.T) {
	gs := Spec()
	assert.Equal(t, 6, gs.AchievementsToWin(2))
	assert.Equal(t, 5, gs.AchievementsToWin(3))
	assert.Equal(t, 4, gs.AchievementsToWin(4))
}

func TestSpec_EveryCardHasValidEffects(t *testing.T) {
	gs := Spec()
	for _, c := range gs.Cards {
		for _, eff := range c.Effects {
			assert.NotEmpty(t, eff.TriggerIcon, "card %s effect %s", c.ID, eff.ID)
			assert.NotEmpty(t, eff.Steps, "card %s effect %s", c.ID, eff.ID)
		}
	}
}

func TestNewGame_Deal(t *testing.T) {
	gs := Spec()
	st, err := NewGame(gs, SetupConfig{
		PlayerIDs: []string{"p1", "p2"},
		Seed:      42,
	})
	require.NoError(t, err)

	assert.Equal(t, state.PhaseSetup, st.Phase)
	assert.Equal(t, 0, st.CurrentPlayerIdx)
	assert.Equal(t, 0, st.ActionsRemaining, "the allotment waits for the opening start_turn")
	for i := range st.Players {
		assert.Len(t, st.Players[i].Hand, 2)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, st.AchievementsAvailable)

	// All cards are accounted for: every defined card is either in the
	// supply or a hand.
	assert.Equal(t, len(gs.Cards), st.TotalCards())
}

func TestNewGame_Deterministic(t *testing.T) {
	gs := Spec()
	a, err := NewGame(gs, SetupConfig{PlayerIDs: []string{"p1", "p2"}, Seed: 7})
	require.NoError(t, err)
	b, err := NewGame(gs, SetupConfig{PlayerIDs: []string{"p1", "p2"}, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, state.Fingerprint(a), state.Fingerprint(b))

	c, err := NewGame(gs, SetupConfig{PlayerIDs: []string{"p1", "p2"}, Seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, state.Fingerprint(a), state.Fingerprint(c))
}

func TestNewGame_RejectsBadPlayerCount(t *testing.T) {
	gs := Spec()
	_, err := NewGame(gs, SetupConfig{PlayerIDs: []string{"solo"}})
	assert.Error(t, err)

	_, err = NewGame(gs, SetupConfig{PlayerIDs: []string{"a", "b", "c", "d", "e"}})
	assert.Error(t, err)
}
