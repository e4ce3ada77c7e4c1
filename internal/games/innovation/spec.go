// Package innovation defines the reference game: the card set, zone
// layout, turn structure, and deterministic setup for the base game the
// automa plays across the table.
package innovation

import "github.com/roach88/splay/internal/spec"

// MaxAge of the base game supply.
const MaxAge = 10

// AchievementAges lists the standard achievements, one per age 1-9.
var AchievementAges = []int{1, 2, 3, 4, 5, 6, 7, 8, 9}

// Spec builds the full game specification. The result is validated; a
// non-empty error list is a bug in this package.
func Spec() *spec.GameSpec {
	return &spec.GameSpec{
		GameID:     "innovation_base",
		GameName:   "Innovation",
		Version:    "1.0",
		MinPlayers: 2,
		MaxPlayers: 4,
		Colors:     Colors,
		Icons:      Icons,
		MaxAge:     MaxAge,
		Zones: []spec.ZoneDefinition{
			{Name: "hand", Owner: spec.ZonePerPlayer, Visibility: spec.VisibilityOwner},
			{Name: "board", Owner: spec.ZonePerPlayer, Visibility: spec.VisibilityPublic, Ordered: true, PerColor: true},
			{Name: "score_pile", Owner: spec.ZonePerPlayer, Visibility: spec.VisibilityHidden},
			{Name: "achievements", Owner: spec.ZonePerPlayer, Visibility: spec.VisibilityPublic},
			{Name: "supply", Owner: spec.ZoneShared, Visibility: spec.VisibilityHidden, Ordered: true, PerAge: true},
			{Name: "achievements_supply", Owner: spec.ZoneShared, Visibility: spec.VisibilityPublic},
		},
		Cards: Cards(),
		Actions: []spec.ActionDefinition{
			{Name: "draw", Description: "Draw a card of your highest top-card age.", CostsAction: true},
			{Name: "meld", Description: "Play a card from your hand onto your board.", CostsAction: true},
			{Name: "dogma", Description: "Activate the dogma effects of one of your top cards.", CostsAction: true},
			{Name: "achieve", Description: "Claim an available achievement you qualify for.", CostsAction: true},
		},
		TurnStructure: spec.TurnStructure{
			ActionsPerTurn:   2,
			FirstTurnActions: 1,
			CanPass:          true,
		},
		WinConditions: []spec.WinCondition{
			{
				Type:        spec.WinAchievements,
				Description: "Claim enough achievements for the table size.",
				Threshold:   6,
				ByPlayerCount: map[int]int{
					2: 6,
					3: 5,
					4: 4,
				},
			},
			{
				Type:        spec.WinExhaustion,
				Description: "When a required draw finds every pile empty, the highest score wins.",
			},
		},
	}
}
