package harness

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(innovation.Spec(),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// TestScenarios runs every YAML scenario under testdata/scenarios and
// compares its trace against the golden file of the same name.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	e := testEngine(t)
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)
		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, e, scenario))
		})
	}
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: catches misspelled keys
game:
  players: [p1, p2]
flow:
  - action: pass
    player: p1
assertion:
  - type: phase
    value: action
`)
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_RequiresAssertions(t *testing.T) {
	path := writeScenario(t, `
name: bare
description: no assertions
game:
  players: [p1, p2]
flow:
  - action: pass
    player: p1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions")
}

func TestRun_FailsOnUnexpectedRejection(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_rejection",
		Description: "melding a card not in hand",
		Game:        GameSetup{Players: []string{"p1", "p2"}},
		Flow: []FlowStep{
			{Action: "meld", Player: "p1", Card: "writing"},
		},
		Assertions: []Assertion{{Type: AssertPhase, Value: "action"}},
	}
	_, err := Run(testEngine(t), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected rejection")
}

func TestRun_FailsOnWrongExpectedCode(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_code",
		Description: "expecting a rejection that does not happen",
		Game: GameSetup{
			Players: []string{"p1", "p2"},
			Supply:  map[int][]string{1: {"archery"}},
		},
		Flow: []FlowStep{
			{Action: "draw", Player: "p1", Expect: &ExpectClause{Error: "WRONG_TURN"}},
		},
		Assertions: []Assertion{{Type: AssertPhase, Value: "action"}},
	}
	_, err := Run(testEngine(t), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected rejection")
}

func TestRun_FailedAssertionSurfaces(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_assertion",
		Description: "asserting the wrong hand contents",
		Game: GameSetup{
			Players: []string{"p1", "p2"},
			Supply:  map[int][]string{1: {"archery"}},
		},
		Flow: []FlowStep{{Action: "draw", Player: "p1"}},
		Assertions: []Assertion{
			{Type: AssertZoneCards, Zone: "p1_hand", Cards: []string{"oars"}},
		},
	}
	_, err := Run(testEngine(t), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p1_hand")
}

func TestBuildState_DuplicateCardsGetDistinctInstances(t *testing.T) {
	scenario := &Scenario{
		Name:        "duplicates",
		Description: "two physical copies of one card",
		Game: GameSetup{
			Players: []string{"p1", "p2"},
			Hands:   map[string][]string{"p1": {"writing", "writing"}},
		},
	}
	st, err := buildState(scenario)
	require.NoError(t, err)
	p1, _ := st.Player("p1")
	require.Len(t, p1.Hand, 2)
	assert.NotEqual(t, p1.Hand[0].InstanceID, p1.Hand[1].InstanceID)
}
