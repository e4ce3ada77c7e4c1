package engine

import (
	"slices"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/state"
)

// maxChoiceActions caps the enumeration of multi-select choice answers.
// Choices in practice are 1-of-n; the cap only guards pathological
// specs.
const maxChoiceActions = 128

// LegalActions enumerates every action the current state accepts, in
// deterministic order. The list is exhaustive for player decisions:
// bots and UIs pick from it without consulting the spec.
func (e *Engine) LegalActions(st *state.GameState) []action.Action {
	switch st.Phase {
	case state.PhaseGameOver:
		return nil
	case state.PhaseSetup:
		// Between turns (and at game start) the only move is starting
		// the current player's turn.
		return []action.Action{action.NewStartTurn(st.CurrentPlayer().ID)}
	case state.PhaseChoice:
		return e.choiceActions(st)
	}

	playerID := st.CurrentPlayer().ID
	if st.ActionsRemaining <= 0 {
		return []action.Action{action.NewEndTurn(playerID)}
	}

	var actions []action.Action
	player := st.CurrentPlayer()

	// Draw is always offered; an exhausted supply turns it into the
	// game-ending action.
	actions = append(actions, action.NewDraw(playerID))

	// Meld any hand card. Duplicate card ids in hand produce one entry.
	seen := make(map[string]bool)
	for _, c := range player.Hand {
		if c.IsUnknown() || seen[c.CardID] {
			continue
		}
		seen[c.CardID] = true
		actions = append(actions, action.NewMeld(playerID, c.CardID))
	}

	// Dogma any top card with effects.
	for _, top := range player.TopCards() {
		if def, ok := e.spec.Card(top.CardID); ok && len(def.Effects) > 0 {
			actions = append(actions, action.NewDogma(playerID, def.ID))
		}
	}

	// Achieve any available age the player qualifies for.
	ages := slices.Clone(st.AchievementsAvailable)
	slices.Sort(ages)
	for _, age := range ages {
		if achievementQualified(e.spec, st, player, age) {
			actions = append(actions, action.NewAchieve(playerID, age))
		}
	}

	if e.spec.TurnStructure.CanPass {
		actions = append(actions, action.NewPass(playerID))
	}
	return actions
}

// choiceActions enumerates answers to the pending choice: every
// selection set within the bounds, in lexicographic option order.
func (e *Engine) choiceActions(st *state.GameState) []action.Action {
	pending := st.ChoiceRequired
	if pending == nil {
		return nil
	}

	var actions []action.Action
	if pending.Optional || pending.MinChoices == 0 {
		actions = append(actions, action.NewChoose(pending.PlayerID, pending.ChoiceID, nil))
	}
	for size := max(pending.MinChoices, 1); size <= pending.MaxChoices; size++ {
		for _, combo := range combinations(pending.Options, size) {
			if len(actions) >= maxChoiceActions {
				return actions
			}
			actions = append(actions, action.NewChoose(pending.PlayerID, pending.ChoiceID, combo))
		}
	}
	return actions
}

// combinations enumerates k-element subsets preserving option order.
func combinations(options []string, k int) [][]string {
	if k <= 0 || k > len(options) {
		return nil
	}
	var out [][]string
	combo := make([]string, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(combo) == k {
			out = append(out, slices.Clone(combo))
			return
		}
		for i := start; i <= len(options)-(k-len(combo)); i++ {
			combo = append(combo, options[i])
			rec(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	rec(0)
	return out
}

// IsLegal reports whether the action appears in the legal set. Vision
// updates and corrections are operator inputs, legal in any live game.
func (e *Engine) IsLegal(st *state.GameState, act action.Action) bool {
	switch act.Kind {
	case action.VisionUpdate, action.UserCorrection:
		return st.Phase != state.PhaseGameOver
	case action.Choose:
		pending := st.ChoiceRequired
		return st.Phase == state.PhaseChoice &&
			pending != nil &&
			pending.PlayerID == act.PlayerID &&
			pending.ChoiceID == act.Choose.ChoiceID &&
			pending.Allows(act.Choose.Selections)
	}
	for _, legal := range e.LegalActions(st) {
		if actionsEqual(legal, act) {
			return true
		}
	}
	return false
}

func drawAge(a action.Action) int {
	if a.Draw == nil {
		return 0
	}
	return a.Draw.Age
}

func actionsEqual(a, b action.Action) bool {
	if a.Kind != b.Kind || a.PlayerID != b.PlayerID {
		return false
	}
	switch a.Kind {
	case action.Draw:
		return drawAge(a) == drawAge(b)
	case action.Meld:
		return a.Meld.CardID == b.Meld.CardID
	case action.Dogma:
		return a.Dogma.CardID == b.Dogma.CardID
	case action.Achieve:
		return a.Achieve.Age == b.Achieve.Age
	default:
		return true
	}
}
