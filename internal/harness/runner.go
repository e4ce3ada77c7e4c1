package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/state"
)

// TraceEvent records the outcome of one flow step.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Action string `json:"action"`
	Player string `json:"player"`
	// Result is "ok" or the rule error code of the rejection.
	Result string `json:"result"`
	// Phase after the step. Rejections leave the previous phase.
	Phase string `json:"phase"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Final *state.GameState
	Trace []TraceEvent
}

// Run executes a scenario against the engine. Flow steps expecting an
// error must be rejected with that exact code; all other steps must
// succeed. Assertions are checked against the final state.
func Run(e *engine.Engine, scenario *Scenario) (*Result, error) {
	st, err := buildState(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{}
	for i, step := range scenario.Flow {
		act, err := buildAction(st, step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
		}

		next, applyErr := e.Apply(st, act)
		event := TraceEvent{Seq: i, Action: step.Action, Player: act.PlayerID, Result: "ok"}

		switch {
		case step.Expect != nil:
			code := string(engine.ErrorCode(applyErr))
			if code != step.Expect.Error {
				return nil, fmt.Errorf("scenario %s: flow[%d]: expected rejection %q, got error %v",
					scenario.Name, i, step.Expect.Error, applyErr)
			}
			event.Result = code

		case applyErr != nil:
			return nil, fmt.Errorf("scenario %s: flow[%d]: unexpected rejection: %w", scenario.Name, i, applyErr)

		default:
			st = next
		}

		event.Phase = string(st.Phase)
		result.Trace = append(result.Trace, event)
	}

	result.Final = st
	if err := checkAssertions(e, scenario, st); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return result, nil
}

// buildState turns a GameSetup into a GameState. Instance ids equal
// card ids; repeated copies of a card get a numbered suffix.
func buildState(scenario *Scenario) (*state.GameState, error) {
	setup := &scenario.Game
	seen := make(map[string]int)
	mint := func(cardID string) state.Card {
		seen[cardID]++
		instance := cardID
		if n := seen[cardID]; n > 1 {
			instance = fmt.Sprintf("%s#%d", cardID, n)
		}
		return state.Card{CardID: cardID, InstanceID: instance}
	}
	mintAll := func(ids []string) []state.Card {
		cards := make([]state.Card, len(ids))
		for i, id := range ids {
			cards[i] = mint(id)
		}
		return cards
	}

	players := make([]state.PlayerState, len(setup.Players))
	for i, id := range setup.Players {
		players[i] = state.PlayerState{
			ID:        id,
			Hand:      mintAll(setup.Hands[id]),
			ScorePile: mintAll(setup.ScorePiles[id]),
			Board:     make(map[string]state.ZoneStack),
		}
		for color, ids := range setup.Boards[id] {
			players[i].Board[color] = state.ZoneStack{Cards: mintAll(ids)}
		}
	}

	supply := make(map[int]state.ZoneStack, len(setup.Supply))
	for age, ids := range setup.Supply {
		supply[age] = state.ZoneStack{Cards: mintAll(ids)}
	}

	achievements := setup.Achievements
	if achievements == nil {
		achievements = []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	}
	actions := 2
	if setup.ActionsRemaining != nil {
		actions = *setup.ActionsRemaining
	}

	return &state.GameState{
		GameID:                scenario.Name,
		Phase:                 state.PhaseAction,
		Players:               players,
		TurnNumber:            setup.TurnNumber,
		ActionsRemaining:      actions,
		SupplyPiles:           supply,
		AchievementsAvailable: slices.Clone(achievements),
	}, nil
}

func buildAction(st *state.GameState, step FlowStep) (action.Action, error) {
	switch step.Action {
	case "draw":
		if step.Age > 0 {
			return action.NewDrawAge(step.Player, step.Age), nil
		}
		return action.NewDraw(step.Player), nil
	case "meld":
		return action.NewMeld(step.Player, step.Card), nil
	case "dogma":
		return action.NewDogma(step.Player, step.Card), nil
	case "achieve":
		return action.NewAchieve(step.Player, step.Age), nil
	case "pass":
		return action.NewPass(step.Player), nil
	case "start_turn":
		return action.NewStartTurn(step.Player), nil
	case "end_turn":
		return action.NewEndTurn(step.Player), nil
	case "choose":
		pending := st.ChoiceRequired
		if pending == nil {
			return action.Action{}, fmt.Errorf("choose step with no pending choice")
		}
		player := step.Player
		if player == "" {
			player = pending.PlayerID
		}
		return action.NewChoose(player, pending.ChoiceID, step.Selections), nil
	default:
		return action.Action{}, fmt.Errorf("unknown flow action %q", step.Action)
	}
}

func checkAssertions(e *engine.Engine, scenario *Scenario, st *state.GameState) error {
	for i, a := range scenario.Assertions {
		if err := checkAssertion(e, st, a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func checkAssertion(e *engine.Engine, st *state.GameState, a Assertion) error {
	switch a.Type {
	case AssertZoneCards:
		cards, _, err := zoneCards(st, a.Zone)
		if err != nil {
			return err
		}
		got := make([]string, len(cards))
		for i, c := range cards {
			got[i] = c.CardID
		}
		if !slices.Equal(got, a.Cards) {
			return fmt.Errorf("zone %s holds %v, want %v", a.Zone, got, a.Cards)
		}
	case AssertZoneCount:
		cards, _, err := zoneCards(st, a.Zone)
		if err != nil {
			return err
		}
		if len(cards) != a.Count {
			return fmt.Errorf("zone %s holds %d cards, want %d", a.Zone, len(cards), a.Count)
		}
	case AssertSplay:
		_, splay, err := zoneCards(st, a.Zone)
		if err != nil {
			return err
		}
		if string(splay) != a.Value {
			return fmt.Errorf("zone %s splayed %q, want %q", a.Zone, splay, a.Value)
		}
	case AssertPhase:
		if string(st.Phase) != a.Value {
			return fmt.Errorf("phase is %s, want %s", st.Phase, a.Value)
		}
	case AssertWinner:
		if st.WinnerID != a.Value {
			return fmt.Errorf("winner is %q, want %q", st.WinnerID, a.Value)
		}
	case AssertScore:
		want, err := strconv.Atoi(a.Value)
		if err != nil {
			return fmt.Errorf("score value %q is not a number", a.Value)
		}
		p, ok := st.Player(a.Player)
		if !ok {
			return fmt.Errorf("unknown player %q", a.Player)
		}
		if got := engine.Score(e.Spec(), p); got != want {
			return fmt.Errorf("player %s scores %d, want %d", a.Player, got, want)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// zoneCards resolves a scenario zone id to its card list and, for board
// zones, the splay direction.
func zoneCards(st *state.GameState, zoneID string) ([]state.Card, state.SplayDirection, error) {
	if age, ok := strings.CutPrefix(zoneID, "age_"); ok {
		n, err := strconv.Atoi(age)
		if err != nil {
			return nil, state.SplayNone, fmt.Errorf("bad supply zone %q", zoneID)
		}
		return st.SupplyPiles[n].Cards, state.SplayNone, nil
	}
	if i := strings.LastIndex(zoneID, "_board_"); i > 0 {
		playerID, color := zoneID[:i], zoneID[i+len("_board_"):]
		p, ok := st.Player(playerID)
		if !ok {
			return nil, state.SplayNone, fmt.Errorf("unknown player in zone %q", zoneID)
		}
		stack := p.Stack(color)
		return stack.Cards, stack.Splay, nil
	}
	if playerID, ok := strings.CutSuffix(zoneID, "_hand"); ok {
		if p, found := st.Player(playerID); found {
			return p.Hand, state.SplayNone, nil
		}
	}
	if playerID, ok := strings.CutSuffix(zoneID, "_score"); ok {
		if p, found := st.Player(playerID); found {
			return p.ScorePile, state.SplayNone, nil
		}
	}
	return nil, state.SplayNone, fmt.Errorf("unknown zone %q", zoneID)
}
