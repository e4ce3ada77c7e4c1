// Package state holds the complete game state as a value. Nothing in
// this package mutates a state in place through its public API: the
// engine deep-copies via Clone, edits the copy, and publishes it only
// when the whole transition succeeds. Two states derived from the same
// action sequence are therefore identical, which is what makes the
// action journal a replay log.
package state

import (
	"fmt"
	"slices"

	"github.com/roach88/splay/internal/action"
)

// Card is a physical card instance. CardID names the printed card;
// InstanceID distinguishes copies and placeholder cards introduced by
// count corrections.
type Card struct {
	CardID     string `json:"card_id"`
	InstanceID string `json:"instance_id"`
}

// UnknownCardID marks a placeholder standing in for a card whose
// identity the system does not know (face-down, unrecognized).
const UnknownCardID = "unknown"

// IsUnknown reports whether the card is an identity placeholder.
func (c Card) IsUnknown() bool { return c.CardID == UnknownCardID }

// SplayDirection of a board stack. Empty means unsplayed.
type SplayDirection string

const (
	SplayNone  SplayDirection = "none"
	SplayLeft  SplayDirection = "left"
	SplayRight SplayDirection = "right"
	SplayUp    SplayDirection = "up"
)

// ZoneStack is an ordered pile of cards. Cards[0] is the top: the
// visible card of a board stack, the next draw of a supply pile.
// Splay is meaningful only for board stacks and survives the stack
// emptying, matching a physical splay marker left on the table.
type ZoneStack struct {
	Cards []Card         `json:"cards"`
	Splay SplayDirection `json:"splay,omitempty"`
}

// Top returns the top card.
func (z ZoneStack) Top() (Card, bool) {
	if len(z.Cards) == 0 {
		return Card{}, false
	}
	return z.Cards[0], true
}

// Bottom returns the bottom card.
func (z ZoneStack) Bottom() (Card, bool) {
	if len(z.Cards) == 0 {
		return Card{}, false
	}
	return z.Cards[len(z.Cards)-1], true
}

func (z ZoneStack) Count() int { return len(z.Cards) }

// WithTop returns a copy with the card added on top (melding).
func (z ZoneStack) WithTop(c Card) ZoneStack {
	cards := make([]Card, 0, len(z.Cards)+1)
	cards = append(cards, c)
	cards = append(cards, z.Cards...)
	return ZoneStack{Cards: cards, Splay: z.Splay}
}

// WithBottom returns a copy with the card added at the bottom (tucking).
func (z ZoneStack) WithBottom(c Card) ZoneStack {
	cards := make([]Card, 0, len(z.Cards)+1)
	cards = append(cards, z.Cards...)
	cards = append(cards, c)
	return ZoneStack{Cards: cards, Splay: z.Splay}
}

// WithoutTop returns a copy with the top card removed.
func (z ZoneStack) WithoutTop() (Card, ZoneStack, bool) {
	if len(z.Cards) == 0 {
		return Card{}, z, false
	}
	top := z.Cards[0]
	return top, ZoneStack{Cards: slices.Clone(z.Cards[1:]), Splay: z.Splay}, true
}

// Without returns a copy with the named instance removed.
func (z ZoneStack) Without(instanceID string) (Card, ZoneStack, bool) {
	for i, c := range z.Cards {
		if c.InstanceID == instanceID {
			cards := make([]Card, 0, len(z.Cards)-1)
			cards = append(cards, z.Cards[:i]...)
			cards = append(cards, z.Cards[i+1:]...)
			return c, ZoneStack{Cards: cards, Splay: z.Splay}, true
		}
	}
	return Card{}, z, false
}

// WithSplay returns a copy splayed in the given direction.
func (z ZoneStack) WithSplay(dir SplayDirection) ZoneStack {
	return ZoneStack{Cards: slices.Clone(z.Cards), Splay: dir}
}

func (z ZoneStack) clone() ZoneStack {
	return ZoneStack{Cards: slices.Clone(z.Cards), Splay: z.Splay}
}

// PlayerState is everything one player owns. Hand and ScorePile are
// unordered in rules terms but kept in insertion order for determinism.
type PlayerState struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	Hand      []Card               `json:"hand"`
	Board     map[string]ZoneStack `json:"board"`
	ScorePile []Card               `json:"score_pile"`
	// Achievements holds the claimed achievement ages, sorted.
	Achievements []int `json:"achievements"`
}

// HandCard finds a hand card by card id, preferring exact instance
// match when instanceID is non-empty.
func (p *PlayerState) HandCard(cardID string) (Card, bool) {
	for _, c := range p.Hand {
		if c.CardID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// TopCards returns the top card of every non-empty board stack, in
// sorted color order for determinism.
func (p *PlayerState) TopCards() []Card {
	colors := make([]string, 0, len(p.Board))
	for color := range p.Board {
		colors = append(colors, color)
	}
	slices.Sort(colors)
	var tops []Card
	for _, color := range colors {
		if top, ok := p.Board[color].Top(); ok {
			tops = append(tops, top)
		}
	}
	return tops
}

// Stack returns the board stack for a color; the zero stack when the
// player never melded that color.
func (p *PlayerState) Stack(color string) ZoneStack {
	return p.Board[color]
}

func (p *PlayerState) clone() PlayerState {
	board := make(map[string]ZoneStack, len(p.Board))
	for color, stack := range p.Board {
		board[color] = stack.clone()
	}
	return PlayerState{
		ID:           p.ID,
		Name:         p.Name,
		Hand:         slices.Clone(p.Hand),
		Board:        board,
		ScorePile:    slices.Clone(p.ScorePile),
		Achievements: slices.Clone(p.Achievements),
	}
}

// Phase of the game lifecycle.
type Phase string

const (
	PhaseSetup Phase = "setup"
	// PhaseAction accepts player actions from the current player.
	PhaseAction Phase = "action"
	// PhaseChoice is suspended on ChoiceRequired; only the matching
	// choose action (or corrections) is accepted.
	PhaseChoice   Phase = "awaiting_choice"
	PhaseGameOver Phase = "game_over"
)

// GameState is the full table state plus the resolver continuation.
// The continuation living on the state is what makes suspension
// serializable: a state suspended mid-effect can be fingerprinted,
// journaled, and resumed identically after a restart.
type GameState struct {
	GameID string `json:"game_id"`
	Phase  Phase  `json:"phase"`

	// Players in turn order.
	Players          []PlayerState `json:"players"`
	CurrentPlayerIdx int           `json:"current_player_idx"`
	TurnNumber       int           `json:"turn_number"`
	ActionsRemaining int           `json:"actions_remaining"`

	// SupplyPiles keyed by age; Cards[0] is the next draw.
	SupplyPiles map[int]ZoneStack `json:"supply_piles"`
	// AchievementsAvailable holds the unclaimed achievement ages.
	AchievementsAvailable []int `json:"achievements_available"`

	// PendingEffects is the resolution stack; the last frame is active.
	PendingEffects []EffectContext `json:"pending_effects,omitempty"`
	// ChoiceRequired is set exactly when Phase is PhaseChoice.
	ChoiceRequired *PendingChoice `json:"choice_required,omitempty"`

	WinnerID string `json:"winner_id,omitempty"`
	// WinReason is set with WinnerID ("achievements", "score").
	WinReason string `json:"win_reason,omitempty"`

	// ActionHistory is the ordered journal of accepted actions.
	ActionHistory []action.Action `json:"action_history"`

	// InstanceSeq numbers placeholder instances deterministically.
	InstanceSeq int `json:"instance_seq"`
}

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *PlayerState {
	return &g.Players[g.CurrentPlayerIdx]
}

// Player finds a player by id.
func (g *GameState) Player(id string) (*PlayerState, bool) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i], true
		}
	}
	return nil, false
}

// PlayerIndex finds a player's turn-order index.
func (g *GameState) PlayerIndex(id string) (int, bool) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// PlayerIDs returns the ids in turn order.
func (g *GameState) PlayerIDs() []string {
	ids := make([]string, len(g.Players))
	for i := range g.Players {
		ids[i] = g.Players[i].ID
	}
	return ids
}

// NextInstanceID mints a deterministic placeholder instance id and
// advances the sequence.
func (g *GameState) NextInstanceID() string {
	g.InstanceSeq++
	return fmt.Sprintf("unknown#%d", g.InstanceSeq)
}

// TotalCards counts every card in every zone. The count is invariant
// across all transitions except count-setting corrections; conservation
// tests lean on it.
func (g *GameState) TotalCards() int {
	n := 0
	for _, pile := range g.SupplyPiles {
		n += pile.Count()
	}
	for i := range g.Players {
		p := &g.Players[i]
		n += len(p.Hand) + len(p.ScorePile)
		for _, stack := range p.Board {
			n += stack.Count()
		}
	}
	return n
}

// Clone deep-copies the state. ActionHistory shares the backing array
// up to its current length; appends copy-on-write.
func (g *GameState) Clone() *GameState {
	players := make([]PlayerState, len(g.Players))
	for i := range g.Players {
		players[i] = g.Players[i].clone()
	}
	supply := make(map[int]ZoneStack, len(g.SupplyPiles))
	for age, pile := range g.SupplyPiles {
		supply[age] = pile.clone()
	}
	pending := make([]EffectContext, len(g.PendingEffects))
	for i := range g.PendingEffects {
		pending[i] = g.PendingEffects[i].clone()
	}
	var choice *PendingChoice
	if g.ChoiceRequired != nil {
		c := g.ChoiceRequired.clone()
		choice = &c
	}
	return &GameState{
		GameID:                g.GameID,
		Phase:                 g.Phase,
		Players:               players,
		CurrentPlayerIdx:      g.CurrentPlayerIdx,
		TurnNumber:            g.TurnNumber,
		ActionsRemaining:      g.ActionsRemaining,
		SupplyPiles:           supply,
		AchievementsAvailable: slices.Clone(g.AchievementsAvailable),
		PendingEffects:        pending,
		ChoiceRequired:        choice,
		WinnerID:              g.WinnerID,
		WinReason:             g.WinReason,
		ActionHistory:         g.ActionHistory[:len(g.ActionHistory):len(g.ActionHistory)],
		InstanceSeq:           g.InstanceSeq,
	}
}
