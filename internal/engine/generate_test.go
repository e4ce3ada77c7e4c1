package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/state"
)

func kinds(actions []action.Action) []action.Kind {
	out := make([]action.Kind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

func TestLegalActions_BareState(t *testing.T) {
	e := testEngine(t)
	f := newFixture()

	actions := e.LegalActions(f.st)
	assert.Equal(t, []action.Kind{action.Draw, action.Pass}, kinds(actions))
}

func TestLegalActions_FullMenu(t *testing.T) {
	e := testEngine(t)
	f := newFixture().
		hand("p1", inst("writing"), inst("oars")).
		board("p1", "blue", inst("calendar")).
		scorePile("p1", inst("optics"), inst("paper"))

	// Score 6 with a top card of age 2: only the age-1 achievement
	// (5 points) qualifies.
	actions := e.LegalActions(f.st)
	assert.Equal(t, []action.Kind{
		action.Draw,
		action.Meld, action.Meld,
		action.Dogma,
		action.Achieve,
		action.Pass,
	}, kinds(actions))

	var ages []int
	for _, a := range actions {
		if a.Kind == action.Achieve {
			ages = append(ages, a.Achieve.Age)
		}
	}
	assert.Equal(t, []int{1}, ages)
}

func TestLegalActions_AchieveRequiresScoreAndTopCard(t *testing.T) {
	e := testEngine(t)
	f := newFixture().
		board("p1", "blue", inst("calendar")).
		scorePile("p1", inst("optics"), inst("paper"), instFor("optics", "2"))

	// Score 9: age 1 qualifies (5 points, top card 1+). Age 2 needs 10.
	actions := e.LegalActions(f.st)
	var ages []int
	for _, a := range actions {
		if a.Kind == action.Achieve {
			ages = append(ages, a.Achieve.Age)
		}
	}
	assert.Equal(t, []int{1}, ages)
}

func TestLegalActions_UnknownHandCardsNotMeldable(t *testing.T) {
	e := testEngine(t)
	f := newFixture().hand("p1",
		state.Card{CardID: state.UnknownCardID, InstanceID: "unknown#1"},
		inst("writing"), instFor("writing", "dup"))

	var melds []action.Action
	for _, a := range e.LegalActions(f.st) {
		if a.Kind == action.Meld {
			melds = append(melds, a)
		}
	}
	require.Len(t, melds, 1, "placeholders and duplicates collapse")
	assert.Equal(t, "writing", melds[0].Meld.CardID)
}

func TestLegalActions_SpentAllotment(t *testing.T) {
	e := testEngine(t)
	f := newFixture().actions(0)

	actions := e.LegalActions(f.st)
	require.Len(t, actions, 1)
	assert.Equal(t, action.EndTurn, actions[0].Kind)
}

func TestLegalActions_SetupPhaseOffersStartTurn(t *testing.T) {
	e := testEngine(t)
	f := newFixture()
	f.st.Phase = state.PhaseSetup
	f.st.ActionsRemaining = 0

	actions := e.LegalActions(f.st)
	require.Len(t, actions, 1)
	assert.Equal(t, action.StartTurn, actions[0].Kind)
	assert.Equal(t, "p1", actions[0].PlayerID)
}

func TestLegalActions_GameOver(t *testing.T) {
	e := testEngine(t)
	f := newFixture()
	f.st.Phase = state.PhaseGameOver
	assert.Nil(t, e.LegalActions(f.st))
}

func TestLegalActions_PendingChoice(t *testing.T) {
	e := testEngine(t)
	f := newFixture()
	f.st.Phase = state.PhaseChoice
	f.st.ChoiceRequired = &state.PendingChoice{
		ChoiceID:   "eff_choose",
		PlayerID:   "p1",
		Options:    []string{"a", "b", "c"},
		MinChoices: 0,
		MaxChoices: 2,
		Optional:   true,
	}

	actions := e.LegalActions(f.st)
	var selections [][]string
	for _, a := range actions {
		require.Equal(t, action.Choose, a.Kind)
		assert.Equal(t, "p1", a.PlayerID)
		selections = append(selections, a.Choose.Selections)
	}
	assert.Equal(t, [][]string{
		nil,
		{"a"}, {"b"}, {"c"},
		{"a", "b"}, {"a", "c"}, {"b", "c"},
	}, selections)
}

func TestLegalActions_ChoiceEnumerationIsCapped(t *testing.T) {
	e := testEngine(t)
	options := make([]string, 20)
	for i := range options {
		options[i] = string(rune('a' + i))
	}
	f := newFixture()
	f.st.Phase = state.PhaseChoice
	f.st.ChoiceRequired = &state.PendingChoice{
		ChoiceID:   "big",
		PlayerID:   "p1",
		Options:    options,
		MinChoices: 1,
		MaxChoices: 10,
	}

	actions := e.LegalActions(f.st)
	assert.LessOrEqual(t, len(actions), maxChoiceActions)
}

func TestIsLegal(t *testing.T) {
	e := testEngine(t)
	f := newFixture().hand("p1", inst("writing"))

	assert.True(t, e.IsLegal(f.st, action.NewDraw("p1")))
	assert.True(t, e.IsLegal(f.st, action.NewMeld("p1", "writing")))
	assert.False(t, e.IsLegal(f.st, action.NewMeld("p1", "archery")))
	assert.False(t, e.IsLegal(f.st, action.NewDraw("p2")))

	// Operator inputs are always legal in a live game.
	assert.True(t, e.IsLegal(f.st, action.NewVisionUpdate(nil)))
	f.st.Phase = state.PhaseGameOver
	assert.False(t, e.IsLegal(f.st, action.NewVisionUpdate(nil)))
}

func TestIsLegal_Choose(t *testing.T) {
	e := testEngine(t)
	f := newFixture()
	f.st.Phase = state.PhaseChoice
	f.st.ChoiceRequired = &state.PendingChoice{
		ChoiceID:   "eff_choose",
		PlayerID:   "p1",
		Options:    []string{"a", "b"},
		MinChoices: 1,
		MaxChoices: 1,
	}

	assert.True(t, e.IsLegal(f.st, action.NewChoose("p1", "eff_choose", []string{"a"})))
	assert.False(t, e.IsLegal(f.st, action.NewChoose("p1", "eff_choose", []string{"z"})))
	assert.False(t, e.IsLegal(f.st, action.NewChoose("p1", "eff_choose", nil)))
	assert.False(t, e.IsLegal(f.st, action.NewChoose("p2", "eff_choose", []string{"a"})))
	assert.False(t, e.IsLegal(f.st, action.NewChoose("p1", "other", []string{"a"})))
}

// Every generated action must be accepted by Apply. This pins the
// generator and the reducer to the same rules.
func TestLegalActions_AllApplyCleanly(t *testing.T) {
	e := testEngine(t)
	f := newFixture().
		hand("p1", inst("writing"), inst("oars")).
		board("p1", "blue", inst("calendar")).
		scorePile("p1", inst("optics"), inst("paper")).
		supply(1, inst("archery")).
		supply(2, inst("mapmaking")).
		supply(3, instFor("optics", "s"))

	for _, a := range e.LegalActions(f.st) {
		_, err := e.Apply(f.st, a)
		assert.NoError(t, err, "action %s", a)
	}
}
