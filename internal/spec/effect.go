package spec

// EffectType classifies how an effect is triggered.
type EffectType string

const (
	// EffectDogma is a card effect activated through the dogma action.
	EffectDogma EffectType = "dogma"
	// EffectAction backs a standalone game action (draw, meld, ...).
	EffectAction EffectType = "action"
	// EffectSetup runs once during game initialization.
	EffectSetup EffectType = "setup"
)

// Effect is a named sequence of steps. Dogma effects additionally carry
// the icon that governs sharing and demands.
type Effect struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        EffectType   `json:"type"`
	TriggerIcon string       `json:"trigger_icon,omitempty"`
	Steps       []EffectStep `json:"steps"`

	// SourceCardID is set on effects defined by a card.
	SourceCardID string   `json:"source_card_id,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// IsDemand reports whether the effect's first step is a demand. Demand
// effects invert sharing: they execute against opponents with strictly
// fewer trigger icons than the activator.
func (e *Effect) IsDemand() bool {
	return len(e.Steps) > 0 && e.Steps[0].Kind == StepDemand
}

// StepKind discriminates the EffectStep union.
type StepKind string

const (
	StepDraw          StepKind = "draw"
	StepMeld          StepKind = "meld"
	StepTuck          StepKind = "tuck"
	StepReturn        StepKind = "return"
	StepScore         StepKind = "score"
	StepTransfer      StepKind = "transfer"
	StepSplay         StepKind = "splay"
	StepAchieve       StepKind = "achieve"
	StepChooseCard    StepKind = "choose_card"
	StepChoosePlayer  StepKind = "choose_player"
	StepChooseOption  StepKind = "choose_option"
	StepSetVariable   StepKind = "set_variable"
	StepConditional   StepKind = "conditional"
	StepForEach       StepKind = "for_each"
	StepRepeat        StepKind = "repeat"
	StepDemand        StepKind = "demand"
	StepShareBonus    StepKind = "share_bonus"
	StepExecuteEffect StepKind = "execute_effect"
)

// EffectStep is one unit of effect resolution. Kind selects exactly one
// of the payload pointers; Validate rejects steps whose payload does not
// match their kind.
type EffectStep struct {
	ID   string   `json:"id"`
	Kind StepKind `json:"kind"`

	// Condition, when present, gates the whole step.
	Condition Expr `json:"condition,omitempty"`

	Draw          *DrawStep          `json:"draw,omitempty"`
	Meld          *MoveStep          `json:"meld,omitempty"`
	Tuck          *MoveStep          `json:"tuck,omitempty"`
	Return        *MoveStep          `json:"return,omitempty"`
	Score         *MoveStep          `json:"score,omitempty"`
	Transfer      *TransferStep      `json:"transfer,omitempty"`
	Splay         *SplayStep         `json:"splay,omitempty"`
	Achieve       *AchieveStep       `json:"achieve,omitempty"`
	Choose        *ChoiceSpec        `json:"choose,omitempty"`
	SetVariable   *SetVariableStep   `json:"set_variable,omitempty"`
	Conditional   *ConditionalStep   `json:"conditional,omitempty"`
	ForEach       *ForEachStep       `json:"for_each,omitempty"`
	Repeat        *RepeatStep        `json:"repeat,omitempty"`
	Demand        *DemandStep        `json:"demand,omitempty"`
	ShareBonus    *ShareBonusStep    `json:"share_bonus,omitempty"`
	ExecuteEffect *ExecuteEffectStep `json:"execute_effect,omitempty"`
}

// DrawStep draws Count cards of the given age into the acting player's
// hand. An empty Age draws from the default age for the player (the
// highest age among their top cards, minimum 1). When the requested pile
// is empty the draw escalates to the next non-empty higher pile.
type DrawStep struct {
	Count  int  `json:"count,omitempty"`
	Age    Expr `json:"age,omitempty"`
	Reveal bool `json:"reveal,omitempty"`
}

// EffectiveCount returns Count with the default of one applied.
func (d *DrawStep) EffectiveCount() int {
	if d.Count <= 0 {
		return 1
	}
	return d.Count
}

// MoveStep moves one card, identified by CardSource, to the destination
// implied by the step kind: meld and tuck to the board, return to the
// supply pile of the card's age, score to the score pile.
//
// CardSource is an expression naming the card: "drawn_card",
// "chosen_card", a loop variable, or a dotted path such as
// "player.board.green.top".
type MoveStep struct {
	CardSource Expr `json:"card,omitempty"`
}

// TransferStep moves a card between two zones, possibly across players.
// FromPlayer/ToPlayer accept "self", "activator", "demanding_player",
// "chosen_player", or a loop variable; empty means the acting player.
type TransferStep struct {
	CardSource Expr   `json:"card,omitempty"`
	FromZone   string `json:"from_zone"`
	ToZone     string `json:"to_zone"`
	FromPlayer string `json:"from_player,omitempty"`
	ToPlayer   string `json:"to_player,omitempty"`
}

// SplayStep splays the acting player's stack of the given color.
// Direction is one of "left", "right", "up", or "none" to unsplay.
// Splaying a stack with fewer than two cards is a no-op.
type SplayStep struct {
	Color     Expr   `json:"color,omitempty"`
	Direction string `json:"direction"`
}

// AchieveStep claims an achievement. An empty Age claims the lowest
// qualifying achievement still in the supply.
type AchieveStep struct {
	Age Expr `json:"age,omitempty"`
}

// ChoiceKind mirrors the three choose step kinds.
type ChoiceKind string

const (
	ChoiceCard   ChoiceKind = "card"
	ChoicePlayer ChoiceKind = "player"
	ChoiceOption ChoiceKind = "option"
)

// ChoiceSpec describes a decision point. Resolution suspends on a choose
// step until the choosing player supplies between Min and Max selections
// drawn from the enumerated candidates.
type ChoiceSpec struct {
	// Source is an expression producing the candidate list for card and
	// player choices, e.g. "player.hand" or "other_players".
	Source Expr `json:"source,omitempty"`
	// Filter, when present, is evaluated per candidate (bound to the
	// "candidate" root) and keeps only matching ones.
	Filter Expr `json:"filter,omitempty"`
	// Options enumerates the candidates for option choices.
	Options []string `json:"options,omitempty"`

	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
	// Optional choices accept an empty selection regardless of Min.
	Optional bool `json:"optional,omitempty"`
	// Chooser overrides who decides; empty means the acting player.
	Chooser string `json:"chooser,omitempty"`
	Prompt  string `json:"prompt,omitempty"`
}

// Bounds returns Min and Max with the single-selection default applied.
func (c *ChoiceSpec) Bounds() (min, max int) {
	min, max = c.Min, c.Max
	if max <= 0 {
		max = 1
	}
	if min <= 0 && !c.Optional {
		min = 1
	}
	if min > max {
		min = max
	}
	return min, max
}

// SetVariableStep binds a value in the effect's variable scope.
type SetVariableStep struct {
	Name  string `json:"name"`
	Value Expr   `json:"value"`
}

// ConditionalStep branches on a condition.
type ConditionalStep struct {
	Condition Expr         `json:"condition"`
	Then      []EffectStep `json:"then"`
	Else      []EffectStep `json:"else,omitempty"`
}

// ForEachStep runs Body once per element of Source, binding each element
// to Var. Iteration order is the deterministic order of the source list.
type ForEachStep struct {
	Var    string       `json:"var"`
	Source Expr         `json:"source"`
	Body   []EffectStep `json:"body"`
	// MaxIterations bounds runaway loops; zero means the default of 100.
	MaxIterations int `json:"max_iterations,omitempty"`
}

// RepeatStep runs Body Count times.
type RepeatStep struct {
	Count         Expr         `json:"count"`
	Body          []EffectStep `json:"body"`
	MaxIterations int          `json:"max_iterations,omitempty"`
}

// DemandStep targets each opponent with strictly fewer trigger icons
// than the activator, in turn order, and runs Body against them.
type DemandStep struct {
	Body []EffectStep `json:"body"`
}

// ShareBonusStep runs Body for the activator if at least one other
// player shared the enclosing effect. Typically a single draw.
type ShareBonusStep struct {
	Body []EffectStep `json:"body"`
}

// ExecuteEffectStep runs another effect by id in the current context.
type ExecuteEffectStep struct {
	EffectID string `json:"effect_id"`
}

// DefaultMaxIterations bounds for_each and repeat loops whose spec does
// not set an explicit limit.
const DefaultMaxIterations = 100

// payload returns the populated payload pointer, or nil, plus whether
// the populated payload matches the step kind. Used by validation.
func (s *EffectStep) payloadMatchesKind() bool {
	switch s.Kind {
	case StepDraw:
		return s.Draw != nil
	case StepMeld:
		return s.Meld != nil
	case StepTuck:
		return s.Tuck != nil
	case StepReturn:
		return s.Return != nil
	case StepScore:
		return s.Score != nil
	case StepTransfer:
		return s.Transfer != nil
	case StepSplay:
		return s.Splay != nil
	case StepAchieve:
		return s.Achieve != nil
	case StepChooseCard, StepChoosePlayer, StepChooseOption:
		return s.Choose != nil
	case StepSetVariable:
		return s.SetVariable != nil
	case StepConditional:
		return s.Conditional != nil
	case StepForEach:
		return s.ForEach != nil
	case StepRepeat:
		return s.Repeat != nil
	case StepDemand:
		return s.Demand != nil
	case StepShareBonus:
		return s.ShareBonus != nil
	case StepExecuteEffect:
		return s.ExecuteEffect != nil
	default:
		return false
	}
}

// ChoiceKindFor maps a choose step kind to its choice kind. Returns
// empty for non-choose kinds.
func ChoiceKindFor(k StepKind) ChoiceKind {
	switch k {
	case StepChooseCard:
		return ChoiceCard
	case StepChoosePlayer:
		return ChoicePlayer
	case StepChooseOption:
		return ChoiceOption
	default:
		return ""
	}
}
