// Package bots implements automated players used for soak testing the
// engine and for the simulate command. A bot is a pure policy: given a
// state it picks one of the engine's legal actions, so everything it
// does flows through the same reducer a human operator would.
package bots

import (
	"fmt"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Evaluator scores a state from one player's point of view. Higher is
// better.
type Evaluator func(gs *spec.GameSpec, st *state.GameState, playerID string) float64

// DefaultEvaluator weighs achievements far above points and points far
// above material, so the bot chases the actual win condition. Hand and
// board cards carry a small weight to keep the bot drawing instead of
// passing.
func DefaultEvaluator(gs *spec.GameSpec, st *state.GameState, playerID string) float64 {
	p, ok := st.Player(playerID)
	if !ok {
		return 0
	}
	v := float64(len(p.Achievements)) * 10000
	v += float64(engine.Score(gs, p)) * 100
	v += float64(len(p.Hand))
	for _, stack := range p.Board {
		v += float64(stack.Count())
	}
	if st.Phase == state.PhaseGameOver {
		if st.WinnerID == playerID {
			v += 1e9
		} else if st.WinnerID != "" {
			v -= 1e9
		}
	}
	return v
}

// Greedy picks the legal action whose one-ply outcome evaluates best.
// Ties keep the earliest action in the engine's enumeration order, so
// play is deterministic.
type Greedy struct {
	Engine   *engine.Engine
	Evaluate Evaluator
}

// NewGreedy builds a greedy bot with the default evaluator.
func NewGreedy(e *engine.Engine) *Greedy {
	return &Greedy{Engine: e, Evaluate: DefaultEvaluator}
}

// ChooseAction returns the bot's pick for the given player, or false
// when the state offers that player nothing (not their turn, game
// over).
func (g *Greedy) ChooseAction(st *state.GameState, playerID string) (action.Action, bool) {
	var best action.Action
	bestScore := 0.0
	found := false

	for _, act := range g.Engine.LegalActions(st) {
		if act.PlayerID != playerID {
			continue
		}
		next, err := g.Engine.Apply(st, act)
		if err != nil {
			continue
		}
		score := g.Evaluate(g.Engine.Spec(), next, playerID)
		if !found || score > bestScore {
			best = act
			bestScore = score
			found = true
		}
	}
	return best, found
}

// Autoplay drives a game with one bot per player until it ends or
// maxActions have been applied. Returns the final state and the number
// of actions taken.
func Autoplay(e *engine.Engine, st *state.GameState, maxActions int) (*state.GameState, int, error) {
	bot := NewGreedy(e)
	applied := 0
	for applied < maxActions && st.Phase != state.PhaseGameOver {
		actorID := st.CurrentPlayer().ID
		if st.Phase == state.PhaseChoice && st.ChoiceRequired != nil {
			actorID = st.ChoiceRequired.PlayerID
		}

		act, ok := bot.ChooseAction(st, actorID)
		if !ok {
			return st, applied, fmt.Errorf("no action for player %s after %d actions", actorID, applied)
		}
		next, err := e.Apply(st, act)
		if err != nil {
			return st, applied, fmt.Errorf("bot action %s rejected: %w", act, err)
		}
		st = next
		applied++
	}
	return st, applied, nil
}
