package state

import (
	"maps"
	"slices"

	"github.com/roach88/splay/internal/expr"
	"github.com/roach88/splay/internal/spec"
)

// EffectContext is one frame of the resolution stack: an effect (or a
// nested step body) part-way through execution. StepIndex points at the
// next step to run. Because frames live on GameState, a game suspended
// on a choice is an ordinary value that can be journaled and resumed.
type EffectContext struct {
	EffectID    string `json:"effect_id"`
	EffectName  string `json:"effect_name,omitempty"`
	TriggerIcon string `json:"trigger_icon,omitempty"`

	// Steps is the remaining program of this frame.
	Steps     []spec.EffectStep `json:"steps"`
	StepIndex int               `json:"step_index"`

	// ActivatorID activated the dogma; ActingPlayerID is who the steps
	// execute against (a demand target, a sharer, or the activator).
	ActivatorID    string `json:"activator_id"`
	ActingPlayerID string `json:"acting_player_id"`
	// DemandedBy is set on frames running a demand against an opponent.
	DemandedBy string `json:"demanded_by,omitempty"`

	// Variables is the frame's binding environment: loop variables,
	// set_variable results, drawn_card, chosen_card, returned_age.
	Variables map[string]expr.Value `json:"-"`

	// ResolvedChoices records answered choices by choice id so a
	// resumed frame re-running a choose step uses the recorded answer
	// instead of asking again.
	ResolvedChoices map[string][]string `json:"resolved_choices,omitempty"`

	// SharingPlayers, on a root dogma frame, lists the players who
	// share the effect (trigger icons >= activator's), in turn order
	// starting after the activator.
	SharingPlayers []string `json:"sharing_players,omitempty"`
	// ShareHappened flips when any sharer's frame runs a mutating
	// step, arming the share bonus draw.
	ShareHappened bool `json:"share_happened,omitempty"`

	// BestEffort frames (demand bodies) skip impossible steps instead
	// of failing the resolution.
	BestEffort bool `json:"best_effort,omitempty"`
}

// CurrentStep returns the step at StepIndex.
func (e *EffectContext) CurrentStep() (*spec.EffectStep, bool) {
	if e.StepIndex < 0 || e.StepIndex >= len(e.Steps) {
		return nil, false
	}
	return &e.Steps[e.StepIndex], true
}

// Done reports whether the frame has no steps left.
func (e *EffectContext) Done() bool {
	return e.StepIndex >= len(e.Steps)
}

// SetVariable binds a value in the frame environment.
func (e *EffectContext) SetVariable(name string, v expr.Value) {
	if e.Variables == nil {
		e.Variables = make(map[string]expr.Value)
	}
	e.Variables[name] = v
}

// Variable resolves a name in the frame environment.
func (e *EffectContext) Variable(name string) (expr.Value, bool) {
	v, ok := e.Variables[name]
	return v, ok
}

func (e EffectContext) clone() EffectContext {
	// Steps are never mutated after the frame is pushed, so the slice
	// header is shared.
	clone := e
	clone.Variables = maps.Clone(e.Variables)
	clone.ResolvedChoices = make(map[string][]string, len(e.ResolvedChoices))
	for id, sel := range e.ResolvedChoices {
		clone.ResolvedChoices[id] = slices.Clone(sel)
	}
	if e.ResolvedChoices == nil {
		clone.ResolvedChoices = nil
	}
	clone.SharingPlayers = slices.Clone(e.SharingPlayers)
	return clone
}

// PendingChoice is the question the game is suspended on. Options
// enumerates every legal candidate so callers (UI, bots) never need the
// spec to answer.
type PendingChoice struct {
	// ChoiceID identifies the question: "<effect_id>_<step_id>".
	ChoiceID string `json:"choice_id"`
	// PlayerID is who decides.
	PlayerID string          `json:"player_id"`
	Kind     spec.ChoiceKind `json:"kind"`
	Prompt   string          `json:"prompt,omitempty"`

	// Options are candidate ids: card instance ids, player ids, or
	// option strings, in deterministic order.
	Options    []string `json:"options"`
	MinChoices int      `json:"min_choices"`
	MaxChoices int      `json:"max_choices"`
	Optional   bool     `json:"optional,omitempty"`

	SourceEffectID string `json:"source_effect_id"`
	SourceStepID   string `json:"source_step_id"`
}

// Allows reports whether a selection set satisfies the choice bounds
// and names only enumerated options.
func (c *PendingChoice) Allows(selections []string) bool {
	if len(selections) == 0 {
		return c.Optional || c.MinChoices == 0
	}
	if len(selections) < c.MinChoices || len(selections) > c.MaxChoices {
		return false
	}
	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if seen[sel] || !slices.Contains(c.Options, sel) {
			return false
		}
		seen[sel] = true
	}
	return true
}

func (c PendingChoice) clone() PendingChoice {
	clone := c
	clone.Options = slices.Clone(c.Options)
	return clone
}
