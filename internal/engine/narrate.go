package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// ActionResult pairs the state produced by an accepted action with the
// narration the operator relays to the table: Changes describe what the
// engine did, Instructions tell the human what to physically move.
type ActionResult struct {
	State        *state.GameState
	Changes      []string
	Instructions []string
}

// ApplyWithResult applies an action and narrates the transition. The
// narration is derived by diffing the two snapshots, so every
// state-changing action kind produces it, including corrections and
// effect resolution.
func (e *Engine) ApplyWithResult(st *state.GameState, act action.Action) (*ActionResult, error) {
	next, err := e.Apply(st, act)
	if err != nil {
		return nil, err
	}
	changes, instructions := narrate(e.spec, st, next)
	return &ActionResult{State: next, Changes: changes, Instructions: instructions}, nil
}

// Narrate describes the transition between two snapshots. Callers that
// apply actions through another path (a journaled session) use this to
// recover the narration ApplyWithResult would have produced.
func (e *Engine) Narrate(prev, next *state.GameState) (changes, instructions []string) {
	return narrate(e.spec, prev, next)
}

// narrate diffs two snapshots into operator-facing strings. Zone ids
// use the correction addressing scheme so narration and corrections
// speak the same vocabulary.
func narrate(gs *spec.GameSpec, prev, next *state.GameState) (changes, instructions []string) {
	prevZones := zoneIndex(prev)

	// Card movements, walked in a fixed zone order.
	for _, zone := range zoneList(next) {
		for _, card := range zone.cards {
			from, known := prevZones[card.InstanceID]
			if known && from == zone.id {
				continue
			}
			name := cardName(gs, card.CardID)
			if !known {
				changes = append(changes, fmt.Sprintf("%s appeared in %s", name, zoneLabel(zone.id)))
				instructions = append(instructions, fmt.Sprintf("Place %s in %s", name, zoneLabel(zone.id)))
				continue
			}
			changes = append(changes, fmt.Sprintf("%s moved from %s to %s", name, zoneLabel(from), zoneLabel(zone.id)))
			instructions = append(instructions, fmt.Sprintf("Move %s from %s to %s", name, zoneLabel(from), zoneLabel(zone.id)))
		}
	}

	// Splay changes.
	for i := range next.Players {
		p := &next.Players[i]
		pp, _ := prev.Player(p.ID)
		for _, color := range sortedColors(p) {
			var before state.SplayDirection
			if pp != nil {
				before = pp.Board[color].Splay
			}
			after := p.Board[color].Splay
			if before == after {
				continue
			}
			if after == state.SplayNone || after == "" {
				changes = append(changes, fmt.Sprintf("%s's %s stack is no longer splayed", p.ID, color))
				instructions = append(instructions, fmt.Sprintf("Straighten %s's %s stack", p.ID, color))
			} else {
				changes = append(changes, fmt.Sprintf("%s's %s stack is now splayed %s", p.ID, color, after))
				instructions = append(instructions, fmt.Sprintf("Splay %s's %s stack %s", p.ID, color, after))
			}
		}
	}

	// Achievement claims.
	for i := range next.Players {
		p := &next.Players[i]
		pp, _ := prev.Player(p.ID)
		for _, age := range p.Achievements {
			if pp != nil && containsInt(pp.Achievements, age) {
				continue
			}
			changes = append(changes, fmt.Sprintf("%s claimed the age %d achievement", p.ID, age))
			instructions = append(instructions, fmt.Sprintf("Move the age %d achievement card in front of %s", age, p.ID))
		}
	}

	// Turn and phase transitions.
	if prev.CurrentPlayerIdx != next.CurrentPlayerIdx {
		changes = append(changes, fmt.Sprintf("turn passed to %s", next.CurrentPlayer().ID))
	}
	if next.ChoiceRequired != nil && prev.ChoiceRequired == nil {
		prompt := next.ChoiceRequired.Prompt
		if prompt == "" {
			prompt = "make a choice"
		}
		instructions = append(instructions, fmt.Sprintf("Ask %s: %s", next.ChoiceRequired.PlayerID, prompt))
	}
	if next.Phase == state.PhaseGameOver && prev.Phase != state.PhaseGameOver {
		changes = append(changes, fmt.Sprintf("game over: %s wins by %s", next.WinnerID, next.WinReason))
		instructions = append(instructions, fmt.Sprintf("The game is over; announce %s as the winner", next.WinnerID))
	}

	return changes, instructions
}

type narratedZone struct {
	id    string
	cards []state.Card
}

// zoneList enumerates every card-holding zone in deterministic order:
// players in seating order (hand, score, board colors sorted), then
// supply piles by ascending age.
func zoneList(st *state.GameState) []narratedZone {
	var zones []narratedZone
	for i := range st.Players {
		p := &st.Players[i]
		zones = append(zones,
			narratedZone{id: p.ID + "_hand", cards: p.Hand},
			narratedZone{id: p.ID + "_score", cards: p.ScorePile},
		)
		for _, color := range sortedColors(p) {
			zones = append(zones, narratedZone{id: p.ID + "_board_" + color, cards: p.Board[color].Cards})
		}
	}
	ages := make([]int, 0, len(st.SupplyPiles))
	for age := range st.SupplyPiles {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	for _, age := range ages {
		zones = append(zones, narratedZone{id: fmt.Sprintf("age_%d", age), cards: st.SupplyPiles[age].Cards})
	}
	return zones
}

func zoneIndex(st *state.GameState) map[string]string {
	index := make(map[string]string)
	for _, zone := range zoneList(st) {
		for _, card := range zone.cards {
			index[card.InstanceID] = zone.id
		}
	}
	return index
}

func sortedColors(p *state.PlayerState) []string {
	colors := make([]string, 0, len(p.Board))
	for color := range p.Board {
		colors = append(colors, color)
	}
	sort.Strings(colors)
	return colors
}

func cardName(gs *spec.GameSpec, cardID string) string {
	if card, ok := gs.Card(cardID); ok && card.Name != "" {
		return card.Name
	}
	return cardID
}

// zoneLabel renders a correction-scheme zone id as prose.
func zoneLabel(zoneID string) string {
	if age, ok := strings.CutPrefix(zoneID, "age_"); ok {
		return fmt.Sprintf("the age %s supply", age)
	}
	if i := strings.LastIndex(zoneID, "_board_"); i > 0 {
		return fmt.Sprintf("%s's %s stack", zoneID[:i], zoneID[i+len("_board_"):])
	}
	if playerID, ok := strings.CutSuffix(zoneID, "_hand"); ok {
		return playerID + "'s hand"
	}
	if playerID, ok := strings.CutSuffix(zoneID, "_score"); ok {
		return playerID + "'s score pile"
	}
	return zoneID
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
