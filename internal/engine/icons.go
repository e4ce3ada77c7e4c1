package engine

import (
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Icon visibility. A card has four icon positions:
//
//	[top_left]       [empty]
//
//	[bottom_left] [bottom_center] [bottom_right]
//
// The top card of a stack shows all four. Covered cards show nothing
// when the stack is unsplayed; a splay exposes a fixed subset of
// positions on every covered card:
//
//	left:  top_left, bottom_left
//	right: bottom_right
//	up:    bottom_left, bottom_center, bottom_right
var visibleWhenCovered = map[state.SplayDirection][]string{
	state.SplayNone:  nil,
	state.SplayLeft:  {spec.IconTopLeft, spec.IconBottomLeft},
	state.SplayRight: {spec.IconBottomRight},
	state.SplayUp:    {spec.IconBottomLeft, spec.IconBottomCenter, spec.IconBottomRight},
}

// CountIcons counts every visible icon across a player's board.
func CountIcons(gs *spec.GameSpec, p *state.PlayerState) map[string]int {
	counts := make(map[string]int)
	for _, stack := range p.Board {
		countStackIcons(gs, stack, counts)
	}
	return counts
}

// CountIcon counts one visible icon across a player's board.
func CountIcon(gs *spec.GameSpec, p *state.PlayerState, icon string) int {
	if icon == "" {
		return 0
	}
	return CountIcons(gs, p)[icon]
}

func countStackIcons(gs *spec.GameSpec, stack state.ZoneStack, counts map[string]int) {
	covered := visibleWhenCovered[stack.Splay]
	for i, card := range stack.Cards {
		def, ok := gs.Card(card.CardID)
		if !ok {
			// Placeholder cards contribute no icons.
			continue
		}
		if i == 0 {
			for _, pos := range spec.IconPositions {
				if icon := def.Icon(pos); icon != "" {
					counts[icon]++
				}
			}
			continue
		}
		for _, pos := range covered {
			if icon := def.Icon(pos); icon != "" {
				counts[icon]++
			}
		}
	}
}
