package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/state"
)

func TestReconcile_CountMatchConfirms(t *testing.T) {
	r := &DiffReconciler{}
	f := newFixture().hand("p1", inst("writing"), inst("archery"))

	corr, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_hand", Count: 2},
	})
	require.NoError(t, err)
	require.Len(t, corr, 1)
	assert.Equal(t, action.ConfirmZone, corr[0].Kind)
}

func TestReconcile_CountDriftSetsCount(t *testing.T) {
	r := &DiffReconciler{}
	f := newFixture().hand("p1", inst("writing"))

	corr, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_hand", Count: 3},
	})
	require.NoError(t, err)
	require.Len(t, corr, 1)
	assert.Equal(t, action.SetZoneCount, corr[0].Kind)
	assert.Equal(t, 3, corr[0].Count)
}

func TestReconcile_CardListMatchConfirms(t *testing.T) {
	r := &DiffReconciler{}
	f := newFixture().board("p1", "red", inst("archery"), instFor("metalworking", "b"))

	corr, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_board_red", CardIDs: []string{"archery", "metalworking"}},
	})
	require.NoError(t, err)
	require.Len(t, corr, 1)
	assert.Equal(t, action.ConfirmZone, corr[0].Kind)
}

func TestReconcile_UndetectedMeld(t *testing.T) {
	r := &DiffReconciler{}
	f := newFixture().
		hand("p1", inst("metalworking")).
		board("p1", "red", inst("archery"))

	// The camera sees metalworking on top of the red stack; the engine
	// still has it in hand. One unambiguous move.
	corr, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_board_red", CardIDs: []string{"metalworking", "archery"}},
	})
	require.NoError(t, err)
	require.Len(t, corr, 1)
	assert.Equal(t, action.MoveCard, corr[0].Kind)
	assert.Equal(t, "metalworking", corr[0].CardID)
	assert.Equal(t, "p1_hand", corr[0].FromZoneID)
	assert.Equal(t, "p1_board_red", corr[0].ToZoneID)
}

func TestReconcile_AmbiguousDivergenceRefuses(t *testing.T) {
	r := &DiffReconciler{}
	f := newFixture().board("p1", "red", inst("archery"))

	// The observed card is not in the owner's hand: no safe guess.
	_, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_board_red", CardIDs: []string{"oars", "archery"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manual correction required")
}

func TestReconcile_LowConfidenceDropped(t *testing.T) {
	r := &DiffReconciler{MinConfidence: 0.8}
	f := newFixture().hand("p1", inst("writing"))

	corr, err := r.Reconcile(testEngine(t).Spec(), f.st, []action.ZoneObservation{
		{ZoneID: "p1_hand", Count: 5, Confidence: 0.4},
	})
	require.NoError(t, err)
	assert.Empty(t, corr)
}

func TestVisionUpdate_AppliesReconcilerOutput(t *testing.T) {
	e := testEngine(t, WithReconciler(&DiffReconciler{}))
	f := newFixture().
		hand("p1", inst("metalworking")).
		board("p1", "red", inst("archery"))

	next, err := e.Apply(f.st, action.NewVisionUpdate([]action.ZoneObservation{
		{ZoneID: "p1_board_red", CardIDs: []string{"metalworking", "archery"}},
		{ZoneID: "p2_hand", Count: 2},
	}))
	require.NoError(t, err)

	p1, _ := next.Player("p1")
	assert.Empty(t, p1.Hand)
	top, _ := p1.Stack("red").Top()
	assert.Equal(t, "metalworking", top.CardID)

	p2, _ := next.Player("p2")
	require.Len(t, p2.Hand, 2)
	assert.True(t, p2.Hand[0].IsUnknown())
}

func TestVisionUpdate_ReconcilerRefusalSurfaces(t *testing.T) {
	e := testEngine(t, WithReconciler(&DiffReconciler{}))
	f := newFixture().board("p1", "red", inst("archery"))

	_, err := e.Apply(f.st, action.NewVisionUpdate([]action.ZoneObservation{
		{ZoneID: "p1_board_red", CardIDs: []string{"oars", "archery"}},
	}))
	require.Error(t, err)
	assert.Equal(t, state.PhaseAction, f.st.Phase, "input state untouched")
}
