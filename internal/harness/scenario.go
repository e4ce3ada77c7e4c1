// Package harness runs conformance scenarios: YAML files that describe
// an explicit initial table, a flow of actions with expected outcomes,
// and assertions on the final state. Scenario traces are compared
// against golden files, so a behavior change in the engine shows up as
// a diff instead of a silent drift.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Game is the explicit initial table. Every card is named, so every
	// outcome in the flow is hand-computable.
	Game GameSetup `yaml:"game"`

	// Flow is the action sequence. Each step can expect success or a
	// specific rejection code.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// GameSetup describes the initial state of a scenario.
type GameSetup struct {
	// Players in seating order; the first is the current player.
	Players []string `yaml:"players"`

	// ActionsRemaining for the current player. Defaults to 2.
	ActionsRemaining *int `yaml:"actions_remaining,omitempty"`

	TurnNumber int `yaml:"turn_number,omitempty"`

	// Hands, ScorePiles: card ids per player.
	Hands      map[string][]string `yaml:"hands,omitempty"`
	ScorePiles map[string][]string `yaml:"score_piles,omitempty"`

	// Boards: per player, per color, cards top-first.
	Boards map[string]map[string][]string `yaml:"boards,omitempty"`

	// Supply: cards per age, top-first.
	Supply map[int][]string `yaml:"supply,omitempty"`

	// Achievements still available. Defaults to ages 1-9.
	Achievements []int `yaml:"achievements,omitempty"`
}

// FlowStep is one submitted action.
type FlowStep struct {
	// Action is the action kind: draw, meld, dogma, achieve, pass,
	// choose, start_turn, end_turn.
	Action string `yaml:"action"`

	Player string `yaml:"player"`

	// Card for meld and dogma.
	Card string `yaml:"card,omitempty"`

	// Age for achieve.
	Age int `yaml:"age,omitempty"`

	// Selections for choose. The pending choice id is taken from the
	// state, so scenarios never hard-code generated ids.
	Selections []string `yaml:"selections,omitempty"`

	// Expect specifies the expected outcome. Nil means success.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies an expected rejection.
type ExpectClause struct {
	// Error is the expected rule error code (e.g. "WRONG_TURN").
	Error string `yaml:"error"`
}

// Assertion validates one aspect of the final state.
type Assertion struct {
	// Type: zone_cards, zone_count, splay, phase, winner, score.
	Type string `yaml:"type"`

	// Zone addresses a card zone for zone_cards, zone_count, splay:
	// <player>_hand, <player>_score, <player>_board_<color>, age_<n>.
	Zone string `yaml:"zone,omitempty"`

	// Cards is the expected card id list, top-first (zone_cards).
	Cards []string `yaml:"cards,omitempty"`

	// Count is the expected card count (zone_count).
	Count int `yaml:"count,omitempty"`

	// Player for score.
	Player string `yaml:"player,omitempty"`

	// Value holds the expected phase, winner id, splay direction, or
	// score points depending on Type.
	Value string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertZoneCards = "zone_cards"
	AssertZoneCount = "zone_count"
	AssertSplay     = "splay"
	AssertPhase     = "phase"
	AssertWinner    = "winner"
	AssertScore     = "score"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Game.Players) < 2 {
		return fmt.Errorf("game.players needs at least two players")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Action == "" {
			return fmt.Errorf("flow[%d]: action is required", i)
		}
		if step.Player == "" && step.Action != "choose" {
			return fmt.Errorf("flow[%d]: player is required", i)
		}
		if step.Expect != nil && step.Expect.Error == "" {
			return fmt.Errorf("flow[%d].expect: error is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertZoneCards:
		if a.Zone == "" {
			return fmt.Errorf("assertions[%d]: zone is required for zone_cards", index)
		}
	case AssertZoneCount:
		if a.Zone == "" {
			return fmt.Errorf("assertions[%d]: zone is required for zone_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertSplay:
		if a.Zone == "" || a.Value == "" {
			return fmt.Errorf("assertions[%d]: zone and value are required for splay", index)
		}
	case AssertPhase, AssertWinner, AssertScore:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
		if a.Type == AssertScore && a.Player == "" {
			return fmt.Errorf("assertions[%d]: player is required for score", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
