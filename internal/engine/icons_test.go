package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/splay/internal/state"
)

// archery: castle / lightbulb / - / castle
// writing: - / lightbulb / lightbulb / crown
// the_wheel: - / castle / castle / -

func TestCountIcons_TopCardShowsEverything(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "red", inst("archery"))
	p, _ := f.st.Player("p1")

	counts := CountIcons(e.Spec(), p)
	assert.Equal(t, 2, counts["castle"])
	assert.Equal(t, 1, counts["lightbulb"])
}

func TestCountIcons_UnsplayedHidesCoveredCards(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "red", inst("archery"), instFor("metalworking", "b"))
	p, _ := f.st.Player("p1")

	// metalworking is fully covered.
	assert.Equal(t, 2, CountIcon(e.Spec(), p, "castle"))
}

func TestCountIcons_SplayLeftShowsLeftPositions(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "green", inst("the_wheel"), instFor("sailing", "b"))
	p, _ := f.st.Player("p1")
	p.Board["green"] = p.Board["green"].WithSplay(state.SplayLeft)

	// the_wheel on top: 2 castles. sailing covered, splay left shows
	// top_left (crown) and bottom_left (crown).
	assert.Equal(t, 2, CountIcon(e.Spec(), p, "castle"))
	assert.Equal(t, 2, CountIcon(e.Spec(), p, "crown"))
}

func TestCountIcons_SplayRightShowsBottomRight(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "blue", inst("calendar"), instFor("writing", "b"))
	p, _ := f.st.Player("p1")
	p.Board["blue"] = p.Board["blue"].WithSplay(state.SplayRight)

	// calendar top: leaf, leaf, lightbulb. writing covered, splay
	// right shows bottom_right: crown.
	assert.Equal(t, 2, CountIcon(e.Spec(), p, "leaf"))
	assert.Equal(t, 1, CountIcon(e.Spec(), p, "lightbulb"))
	assert.Equal(t, 1, CountIcon(e.Spec(), p, "crown"))
}

func TestCountIcons_SplayUpShowsBottomRow(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "blue", inst("calendar"), instFor("writing", "b"))
	p, _ := f.st.Player("p1")
	p.Board["blue"] = p.Board["blue"].WithSplay(state.SplayUp)

	// writing covered, splay up shows lightbulb, lightbulb, crown.
	assert.Equal(t, 3, CountIcon(e.Spec(), p, "lightbulb"))
	assert.Equal(t, 1, CountIcon(e.Spec(), p, "crown"))
}

func TestCountIcons_PlaceholdersContributeNothing(t *testing.T) {
	e := testEngine(t)
	f := newFixture().board("p1", "red", state.Card{CardID: state.UnknownCardID, InstanceID: "unknown#1"})
	p, _ := f.st.Player("p1")
	assert.Empty(t, CountIcons(e.Spec(), p))
}

func TestHighestTopCardAge(t *testing.T) {
	e := testEngine(t)
	f := newFixture().
		board("p1", "red", inst("archery")).
		board("p1", "blue", inst("calendar"))
	p, _ := f.st.Player("p1")
	assert.Equal(t, int64(2), highestTopCardAge(e.Spec(), p))

	empty, _ := newFixture().st.Player("p1")
	assert.Equal(t, int64(0), highestTopCardAge(e.Spec(), empty))
}
