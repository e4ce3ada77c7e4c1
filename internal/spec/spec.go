package spec

import "sync"

// SplayDirection names the visible fan directions of a board stack.
// The zero value means unsplayed.
const (
	SplayNone  = "none"
	SplayLeft  = "left"
	SplayRight = "right"
	SplayUp    = "up"
)

// Icon positions on a card face, in the order stored by
// CardDefinition.Icons. A position without an icon holds the empty
// string (the hex slot shows the card's name instead).
const (
	IconTopLeft      = "top_left"
	IconBottomLeft   = "bottom_left"
	IconBottomCenter = "bottom_center"
	IconBottomRight  = "bottom_right"
)

// IconPositions is the canonical position order.
var IconPositions = []string{IconTopLeft, IconBottomLeft, IconBottomCenter, IconBottomRight}

// CardDefinition is the immutable identity of a card: its printed
// attributes and the dogma effects it carries.
type CardDefinition struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Color string `json:"color"`
	// Icons maps position to icon name; missing positions are blank.
	Icons    map[string]string `json:"icons,omitempty"`
	Effects  []Effect          `json:"effects,omitempty"`
	Keywords []string          `json:"keywords,omitempty"`
}

// Icon returns the icon printed at a position, or empty.
func (c *CardDefinition) Icon(position string) string {
	return c.Icons[position]
}

// ZoneOwner says whether each player owns an instance of the zone or a
// single instance is shared by the table.
type ZoneOwner string

const (
	ZonePerPlayer ZoneOwner = "player"
	ZoneShared    ZoneOwner = "shared"
)

// ZoneVisibility controls what a physical observer can see of the zone,
// which in turn bounds what vision reconciliation may assert about it.
type ZoneVisibility string

const (
	VisibilityPublic ZoneVisibility = "public"
	VisibilityOwner  ZoneVisibility = "owner"
	VisibilityHidden ZoneVisibility = "hidden"
)

// ZoneDefinition describes a class of card zones.
type ZoneDefinition struct {
	Name       string         `json:"name"`
	Owner      ZoneOwner      `json:"owner"`
	Visibility ZoneVisibility `json:"visibility"`
	// Ordered zones preserve card order (stacks, piles); unordered
	// zones are sets (hands, score piles).
	Ordered bool `json:"ordered,omitempty"`
	// PerColor zones are keyed by card color (board stacks).
	PerColor bool `json:"per_color,omitempty"`
	// PerAge zones are keyed by card age (supply piles).
	PerAge bool `json:"per_age,omitempty"`
}

// ActionDefinition describes a player-initiated action: its
// preconditions and the effect that resolves it.
type ActionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// CostsAction reports whether taking it consumes one of the turn's
	// action allotment.
	CostsAction   bool   `json:"costs_action"`
	Preconditions []Expr `json:"preconditions,omitempty"`
	Effect        *Effect `json:"effect,omitempty"`
}

// TurnStructure fixes how many actions each turn grants.
type TurnStructure struct {
	ActionsPerTurn int `json:"actions_per_turn"`
	// FirstTurnActions applies to the opening turn of the game only.
	FirstTurnActions int  `json:"first_turn_actions"`
	CanPass          bool `json:"can_pass,omitempty"`
}

// ActionsFor returns the action allotment for a turn number (0-based).
func (t TurnStructure) ActionsFor(turnNumber int) int {
	if turnNumber == 0 && t.FirstTurnActions > 0 {
		return t.FirstTurnActions
	}
	return t.ActionsPerTurn
}

// WinConditionType discriminates win conditions.
type WinConditionType string

const (
	// WinAchievements ends the game when a player claims enough
	// achievements; the threshold scales with player count.
	WinAchievements WinConditionType = "achievement_count"
	// WinExhaustion ends the game when a required draw cannot be
	// satisfied by any supply pile; highest score wins.
	WinExhaustion WinConditionType = "deck_exhaustion"
)

// WinCondition is one way the game can end.
type WinCondition struct {
	Type        WinConditionType `json:"type"`
	Description string           `json:"description,omitempty"`
	// Threshold is the default achievement count to win.
	Threshold int `json:"threshold,omitempty"`
	// ByPlayerCount overrides Threshold per table size.
	ByPlayerCount map[int]int `json:"by_player_count,omitempty"`
}

// ThresholdFor returns the achievement threshold for a table size.
func (w WinCondition) ThresholdFor(numPlayers int) int {
	if n, ok := w.ByPlayerCount[numPlayers]; ok {
		return n
	}
	return w.Threshold
}

// GameSpec is a complete, self-contained description of a game. The
// engine treats it as read-only after validation.
type GameSpec struct {
	GameID   string `json:"game_id"`
	GameName string `json:"game_name,omitempty"`
	Version  string `json:"version,omitempty"`

	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`

	Colors []string `json:"colors"`
	Icons  []string `json:"icons"`
	MaxAge int      `json:"max_age"`

	Zones         []ZoneDefinition   `json:"zones"`
	Cards         []CardDefinition   `json:"cards"`
	Actions       []ActionDefinition `json:"actions"`
	TurnStructure TurnStructure      `json:"turn_structure"`
	WinConditions []WinCondition     `json:"win_conditions"`

	Metadata map[string]string `json:"metadata,omitempty"`

	indexOnce   sync.Once
	cardIndex   map[string]*CardDefinition
	effectIndex map[string]*Effect
	actionIndex map[string]*ActionDefinition
}

func (s *GameSpec) buildIndexes() {
	s.indexOnce.Do(func() {
		s.cardIndex = make(map[string]*CardDefinition, len(s.Cards))
		s.effectIndex = make(map[string]*Effect)
		for i := range s.Cards {
			card := &s.Cards[i]
			s.cardIndex[card.ID] = card
			for j := range card.Effects {
				eff := &card.Effects[j]
				if eff.SourceCardID == "" {
					eff.SourceCardID = card.ID
				}
				s.effectIndex[eff.ID] = eff
			}
		}
		s.actionIndex = make(map[string]*ActionDefinition, len(s.Actions))
		for i := range s.Actions {
			act := &s.Actions[i]
			s.actionIndex[act.Name] = act
			if act.Effect != nil {
				s.effectIndex[act.Effect.ID] = act.Effect
			}
		}
	})
}

// Card looks up a card definition by id.
func (s *GameSpec) Card(id string) (*CardDefinition, bool) {
	s.buildIndexes()
	card, ok := s.cardIndex[id]
	return card, ok
}

// EffectByID looks up any effect in the spec (card dogmas and action
// effects) by id.
func (s *GameSpec) EffectByID(id string) (*Effect, bool) {
	s.buildIndexes()
	eff, ok := s.effectIndex[id]
	return eff, ok
}

// Action looks up an action definition by name.
func (s *GameSpec) Action(name string) (*ActionDefinition, bool) {
	s.buildIndexes()
	act, ok := s.actionIndex[name]
	return act, ok
}

// AchievementsToWin returns the achievement threshold for a table size,
// falling back to the base threshold when no achievement win condition
// is declared.
func (s *GameSpec) AchievementsToWin(numPlayers int) int {
	for _, wc := range s.WinConditions {
		if wc.Type == WinAchievements {
			return wc.ThresholdFor(numPlayers)
		}
	}
	return 0
}

// CardsOfAge returns the ids of all cards of the given age, in spec
// order.
func (s *GameSpec) CardsOfAge(age int) []string {
	var ids []string
	for i := range s.Cards {
		if s.Cards[i].Age == age {
			ids = append(ids, s.Cards[i].ID)
		}
	}
	return ids
}
