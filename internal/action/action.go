// Package action defines the actions a game accepts. Every state
// transition flows through exactly one Action, so the ordered action
// list is a complete replay log: applying it to the initial state
// reproduces the final state byte for byte.
package action

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the Action union.
type Kind string

const (
	// Player actions, each consuming one of the turn's allotment.
	Draw    Kind = "draw"
	Meld    Kind = "meld"
	Dogma   Kind = "dogma"
	Achieve Kind = "achieve"
	// Pass forfeits the remaining actions of the turn.
	Pass Kind = "pass"

	// Choose answers a pending choice raised by effect resolution. It
	// never consumes an action.
	Choose Kind = "choose"

	// Turn bookkeeping, issued by the engine or the table operator.
	StartTurn Kind = "start_turn"
	EndTurn   Kind = "end_turn"

	// VisionUpdate carries a camera observation for reconciliation.
	VisionUpdate Kind = "vision_update"
	// UserCorrection patches state to match the physical table.
	UserCorrection Kind = "user_correction"
)

// Action is one atomic input to the reducer. Kind selects exactly one
// payload pointer. Actions are immutable once created.
type Action struct {
	Kind     Kind   `json:"kind"`
	PlayerID string `json:"player_id,omitempty"`

	Draw           *DrawPayload           `json:"draw,omitempty"`
	Meld           *MeldPayload           `json:"meld,omitempty"`
	Dogma          *DogmaPayload          `json:"dogma,omitempty"`
	Achieve        *AchievePayload        `json:"achieve,omitempty"`
	Choose         *ChoosePayload         `json:"choose,omitempty"`
	VisionUpdate   *VisionUpdatePayload   `json:"vision_update,omitempty"`
	UserCorrection *UserCorrectionPayload `json:"user_correction,omitempty"`
}

// DrawPayload optionally pins the supply age to draw from. A zero Age
// (or a nil payload) draws the player's computed age: their highest
// top-card age.
type DrawPayload struct {
	Age int `json:"age,omitempty"`
}

// MeldPayload names the hand card to meld.
type MeldPayload struct {
	CardID string `json:"card_id"`
}

// DogmaPayload names the top board card whose effects to activate.
type DogmaPayload struct {
	CardID string `json:"card_id"`
}

// AchievePayload names the achievement age to claim.
type AchievePayload struct {
	Age int `json:"age"`
}

// ChoosePayload answers the pending choice. ChoiceID must match the
// choice the game is suspended on; Selections are candidate ids (card
// instance ids, player ids, or option strings).
type ChoosePayload struct {
	ChoiceID   string   `json:"choice_id"`
	Selections []string `json:"selections"`
}

// VisionUpdatePayload is an observation of the physical table, one
// entry per zone the camera could see.
type VisionUpdatePayload struct {
	Observations []ZoneObservation `json:"observations"`
}

// ZoneObservation reports what the camera saw in one zone. CardIDs are
// the recognized cards top-first for ordered zones; Count is used for
// zones where only card backs are visible.
type ZoneObservation struct {
	ZoneID  string   `json:"zone_id"`
	CardIDs []string `json:"card_ids,omitempty"`
	Count   int      `json:"count,omitempty"`
	// Confidence below the reconciler's threshold demotes the
	// observation to advisory.
	Confidence float64 `json:"confidence,omitempty"`
}

// UserCorrectionPayload applies one or more manual corrections
// atomically: either all validate and apply, or none do.
type UserCorrectionPayload struct {
	Corrections []Correction `json:"corrections"`
	Reason      string       `json:"reason,omitempty"`
}

// CorrectionKind discriminates the Correction union.
type CorrectionKind string

const (
	// MoveCard moves a named card between two zones.
	MoveCard CorrectionKind = "move_card"
	// SetZoneCount forces a hidden zone to a card count, adding
	// placeholder cards or removing from the top as needed.
	SetZoneCount CorrectionKind = "set_zone_count"
	// SetSplay forces a board stack's splay direction.
	SetSplay CorrectionKind = "set_splay"
	// SetScore forces a player's score pile to a given card set.
	SetScore CorrectionKind = "set_score"
	// SetAchievement grants or revokes an achievement.
	SetAchievement CorrectionKind = "set_achievement"
	// ConfirmZone asserts a zone is correct as-is; a no-op patch that
	// records operator confirmation in the journal.
	ConfirmZone CorrectionKind = "confirm_zone"
)

// Correction is one manual state patch. Zone ids use the addressing
// scheme "<player>_hand", "<player>_board_<color>", "<player>_score",
// "<player>_achievements", "age_<n>", "achievements_supply".
type Correction struct {
	Kind   CorrectionKind `json:"kind"`
	ZoneID string         `json:"zone_id,omitempty"`

	CardID     string `json:"card_id,omitempty"`
	FromZoneID string `json:"from_zone_id,omitempty"`
	ToZoneID   string `json:"to_zone_id,omitempty"`
	Count      int    `json:"count,omitempty"`
	Direction  string `json:"direction,omitempty"`
	CardIDs    []string `json:"card_ids,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	Age        int    `json:"age,omitempty"`
	Granted    bool   `json:"granted,omitempty"`
}

// NewDraw builds a draw action for a player, drawing the computed age.
func NewDraw(playerID string) Action {
	return Action{Kind: Draw, PlayerID: playerID}
}

// NewDrawAge builds a draw from an explicit supply age.
func NewDrawAge(playerID string, age int) Action {
	return Action{Kind: Draw, PlayerID: playerID, Draw: &DrawPayload{Age: age}}
}

// NewMeld builds a meld action.
func NewMeld(playerID, cardID string) Action {
	return Action{Kind: Meld, PlayerID: playerID, Meld: &MeldPayload{CardID: cardID}}
}

// NewDogma builds a dogma activation.
func NewDogma(playerID, cardID string) Action {
	return Action{Kind: Dogma, PlayerID: playerID, Dogma: &DogmaPayload{CardID: cardID}}
}

// NewAchieve builds an achievement claim.
func NewAchieve(playerID string, age int) Action {
	return Action{Kind: Achieve, PlayerID: playerID, Achieve: &AchievePayload{Age: age}}
}

// NewPass builds a pass.
func NewPass(playerID string) Action {
	return Action{Kind: Pass, PlayerID: playerID}
}

// NewChoose builds a choice answer.
func NewChoose(playerID, choiceID string, selections []string) Action {
	return Action{Kind: Choose, PlayerID: playerID, Choose: &ChoosePayload{
		ChoiceID:   choiceID,
		Selections: selections,
	}}
}

// NewStartTurn builds the turn-start marker for a player.
func NewStartTurn(playerID string) Action {
	return Action{Kind: StartTurn, PlayerID: playerID}
}

// NewEndTurn builds the turn-end marker for a player.
func NewEndTurn(playerID string) Action {
	return Action{Kind: EndTurn, PlayerID: playerID}
}

// NewVisionUpdate builds a reconciliation request from observations.
func NewVisionUpdate(observations []ZoneObservation) Action {
	return Action{Kind: VisionUpdate, VisionUpdate: &VisionUpdatePayload{Observations: observations}}
}

// NewUserCorrection builds an atomic correction batch.
func NewUserCorrection(corrections []Correction, reason string) Action {
	return Action{Kind: UserCorrection, UserCorrection: &UserCorrectionPayload{
		Corrections: corrections,
		Reason:      reason,
	}}
}

// Validate checks structural well-formedness: the payload matching the
// kind is present and required fields are set. Game-rule legality is
// the reducer's concern, not Validate's.
func (a Action) Validate() error {
	switch a.Kind {
	case Draw:
		if a.PlayerID == "" {
			return fmt.Errorf("draw: player_id required")
		}
		if a.Draw != nil && a.Draw.Age < 0 {
			return fmt.Errorf("draw: age must be non-negative")
		}
	case Pass, StartTurn, EndTurn:
		if a.PlayerID == "" {
			return fmt.Errorf("%s: player_id required", a.Kind)
		}
	case Meld:
		if a.Meld == nil || a.Meld.CardID == "" {
			return fmt.Errorf("meld: card_id required")
		}
	case Dogma:
		if a.Dogma == nil || a.Dogma.CardID == "" {
			return fmt.Errorf("dogma: card_id required")
		}
	case Achieve:
		if a.Achieve == nil || a.Achieve.Age < 1 {
			return fmt.Errorf("achieve: positive age required")
		}
	case Choose:
		if a.Choose == nil || a.Choose.ChoiceID == "" {
			return fmt.Errorf("choose: choice_id required")
		}
	case VisionUpdate:
		if a.VisionUpdate == nil || len(a.VisionUpdate.Observations) == 0 {
			return fmt.Errorf("vision_update: at least one observation required")
		}
	case UserCorrection:
		if a.UserCorrection == nil || len(a.UserCorrection.Corrections) == 0 {
			return fmt.Errorf("user_correction: at least one correction required")
		}
		for i, c := range a.UserCorrection.Corrections {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("user_correction[%d]: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

// Validate checks a single correction's required fields.
func (c Correction) Validate() error {
	switch c.Kind {
	case MoveCard:
		if c.CardID == "" || c.FromZoneID == "" || c.ToZoneID == "" {
			return fmt.Errorf("move_card: card_id, from_zone_id and to_zone_id required")
		}
	case SetZoneCount:
		if c.ZoneID == "" || c.Count < 0 {
			return fmt.Errorf("set_zone_count: zone_id and non-negative count required")
		}
	case SetSplay:
		if c.ZoneID == "" || c.Direction == "" {
			return fmt.Errorf("set_splay: zone_id and direction required")
		}
	case SetScore:
		if c.PlayerID == "" {
			return fmt.Errorf("set_score: player_id required")
		}
	case SetAchievement:
		if c.PlayerID == "" || c.Age < 1 {
			return fmt.Errorf("set_achievement: player_id and positive age required")
		}
	case ConfirmZone:
		if c.ZoneID == "" {
			return fmt.Errorf("confirm_zone: zone_id required")
		}
	default:
		return fmt.Errorf("unknown correction kind %q", c.Kind)
	}
	return nil
}

// MarshalLog renders the action as a single JSON line for the journal.
func (a Action) MarshalLog() ([]byte, error) {
	return json.Marshal(a)
}

// String is a compact human-readable form for logs.
func (a Action) String() string {
	switch a.Kind {
	case Draw:
		if a.Draw != nil && a.Draw.Age > 0 {
			return fmt.Sprintf("draw(%s, age %d)", a.PlayerID, a.Draw.Age)
		}
		return fmt.Sprintf("draw(%s)", a.PlayerID)
	case Meld:
		return fmt.Sprintf("meld(%s, %s)", a.PlayerID, a.Meld.CardID)
	case Dogma:
		return fmt.Sprintf("dogma(%s, %s)", a.PlayerID, a.Dogma.CardID)
	case Achieve:
		return fmt.Sprintf("achieve(%s, age %d)", a.PlayerID, a.Achieve.Age)
	case Choose:
		return fmt.Sprintf("choose(%s, %s)", a.PlayerID, a.Choose.ChoiceID)
	default:
		return fmt.Sprintf("%s(%s)", a.Kind, a.PlayerID)
	}
}
