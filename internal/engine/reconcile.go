package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Reconciler turns camera observations into corrections. The engine
// applies whatever the reconciler proposes through the ordinary
// correction path, so reconciliation is journaled and atomic like any
// other state change.
type Reconciler interface {
	Reconcile(gs *spec.GameSpec, st *state.GameState, obs []action.ZoneObservation) ([]action.Correction, error)
}

// DiffReconciler proposes corrections for the divergences it can
// resolve unambiguously and refuses the rest, forcing an operator
// decision instead of guessing.
//
// It handles:
//   - count drift in hidden zones (hands seen as card backs, supply
//     piles): SetZoneCount
//   - a card on top of a board stack the engine thinks is elsewhere
//     (the classic undetected meld): MoveCard
//   - confirmed matches: ConfirmZone
type DiffReconciler struct {
	// MinConfidence drops observations below the threshold. Zero means
	// accept everything.
	MinConfidence float64
}

func (r *DiffReconciler) Reconcile(gs *spec.GameSpec, st *state.GameState, obs []action.ZoneObservation) ([]action.Correction, error) {
	var out []action.Correction
	for _, o := range obs {
		if r.MinConfidence > 0 && o.Confidence > 0 && o.Confidence < r.MinConfidence {
			continue
		}
		zone, err := resolveZone(st, o.ZoneID)
		if err != nil {
			return nil, err
		}

		if len(o.CardIDs) == 0 {
			// Count-only observation.
			if o.Count == zone.count() {
				out = append(out, action.Correction{Kind: action.ConfirmZone, ZoneID: o.ZoneID})
			} else {
				out = append(out, action.Correction{Kind: action.SetZoneCount, ZoneID: o.ZoneID, Count: o.Count})
			}
			continue
		}

		current := cardIDs(zone.get())
		if slices.Equal(current, o.CardIDs) {
			out = append(out, action.Correction{Kind: action.ConfirmZone, ZoneID: o.ZoneID})
			continue
		}

		corr, ok := r.resolveBoardDrift(st, o, current)
		if !ok {
			return nil, fmt.Errorf("zone %q diverges beyond automatic reconciliation (saw %v, state has %v): manual correction required",
				o.ZoneID, o.CardIDs, current)
		}
		out = append(out, corr...)
	}
	return out, nil
}

// resolveBoardDrift handles the single-card cases: one observed card
// the state places elsewhere moves in; one extra state card the camera
// no longer sees cannot be auto-resolved (its destination is unknown).
func (r *DiffReconciler) resolveBoardDrift(st *state.GameState, o action.ZoneObservation, current []string) ([]action.Correction, bool) {
	playerID, _, isBoard := parseBoardZone(o.ZoneID)
	if !isBoard {
		return nil, false
	}

	// Exactly one new card on top, rest matching: the meld the engine
	// missed. It must currently sit in the owner's hand.
	if len(o.CardIDs) == len(current)+1 && slices.Equal(o.CardIDs[1:], current) {
		newCard := o.CardIDs[0]
		player, found := st.Player(playerID)
		if !found {
			return nil, false
		}
		if _, inHand := player.HandCard(newCard); !inHand {
			return nil, false
		}
		return []action.Correction{{
			Kind:       action.MoveCard,
			CardID:     newCard,
			FromZoneID: playerID + "_hand",
			ToZoneID:   o.ZoneID,
		}}, true
	}
	return nil, false
}

func cardIDs(cards []state.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.CardID
	}
	return ids
}
