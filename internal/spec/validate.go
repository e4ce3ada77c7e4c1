package spec

import (
	"fmt"
	"slices"
)

// ValidationError represents a validation error with field path and message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the whole spec and compiles every embedded expression.
// Returns all errors (not fail-fast) so authors can fix a spec in one
// round trip. A spec with a non-empty result must not be handed to the
// engine.
func (s *GameSpec) Validate() []ValidationError {
	var errs []ValidationError

	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.GameID == "" {
		add("game_id", "required")
	}
	if s.MinPlayers < 1 {
		add("min_players", "must be at least 1, got %d", s.MinPlayers)
	}
	if s.MaxPlayers < s.MinPlayers {
		add("max_players", "must be >= min_players (%d), got %d", s.MinPlayers, s.MaxPlayers)
	}
	if s.MaxAge < 1 {
		add("max_age", "must be at least 1, got %d", s.MaxAge)
	}
	if len(s.Colors) == 0 {
		add("colors", "at least one color is required")
	}

	seenZones := make(map[string]bool)
	for i, zone := range s.Zones {
		field := fmt.Sprintf("zones[%d]", i)
		if zone.Name == "" {
			add(field+".name", "required")
		}
		if seenZones[zone.Name] {
			add(field+".name", "duplicate zone name: %q", zone.Name)
		}
		seenZones[zone.Name] = true
		switch zone.Owner {
		case ZonePerPlayer, ZoneShared:
		default:
			add(field+".owner", "invalid owner %q, must be player or shared", zone.Owner)
		}
		switch zone.Visibility {
		case VisibilityPublic, VisibilityOwner, VisibilityHidden:
		default:
			add(field+".visibility", "invalid visibility %q", zone.Visibility)
		}
	}

	// Effect id index for execute_effect resolution, built before the
	// per-card walk so forward references validate.
	effectIDs := make(map[string]bool)
	for i := range s.Cards {
		for j := range s.Cards[i].Effects {
			effectIDs[s.Cards[i].Effects[j].ID] = true
		}
	}
	for i := range s.Actions {
		if s.Actions[i].Effect != nil {
			effectIDs[s.Actions[i].Effect.ID] = true
		}
	}

	v := &validator{spec: s, effectIDs: effectIDs}

	seenCards := make(map[string]bool)
	for i := range s.Cards {
		card := &s.Cards[i]
		field := fmt.Sprintf("cards[%d]", i)
		if card.ID == "" {
			add(field+".id", "required")
		}
		if seenCards[card.ID] {
			add(field+".id", "duplicate card id: %q", card.ID)
		}
		seenCards[card.ID] = true
		if card.Age < 1 || card.Age > s.MaxAge {
			add(field+".age", "age %d outside 1..%d", card.Age, s.MaxAge)
		}
		if len(s.Colors) > 0 && !slices.Contains(s.Colors, card.Color) {
			add(field+".color", "unknown color %q", card.Color)
		}
		for position, icon := range card.Icons {
			if !slices.Contains(IconPositions, position) {
				add(field+".icons", "unknown icon position %q", position)
			}
			if icon != "" && len(s.Icons) > 0 && !slices.Contains(s.Icons, icon) {
				add(field+".icons."+position, "unknown icon %q", icon)
			}
		}
		for j := range card.Effects {
			v.validateEffect(&card.Effects[j], fmt.Sprintf("%s.effects[%d]", field, j), &errs)
		}
	}

	seenActions := make(map[string]bool)
	for i := range s.Actions {
		act := &s.Actions[i]
		field := fmt.Sprintf("actions[%d]", i)
		if act.Name == "" {
			add(field+".name", "required")
		}
		if seenActions[act.Name] {
			add(field+".name", "duplicate action name: %q", act.Name)
		}
		seenActions[act.Name] = true
		for j := range act.Preconditions {
			v.compileExpr(&act.Preconditions[j], fmt.Sprintf("%s.preconditions[%d]", field, j), &errs)
		}
		if act.Effect != nil {
			v.validateEffect(act.Effect, field+".effect", &errs)
		}
	}

	if s.TurnStructure.ActionsPerTurn < 1 {
		add("turn_structure.actions_per_turn", "must be at least 1, got %d", s.TurnStructure.ActionsPerTurn)
	}

	if len(s.WinConditions) == 0 {
		add("win_conditions", "at least one win condition is required")
	}
	for i, wc := range s.WinConditions {
		switch wc.Type {
		case WinAchievements, WinExhaustion:
		default:
			add(fmt.Sprintf("win_conditions[%d].type", i), "unknown win condition type %q", wc.Type)
		}
	}

	return errs
}

type validator struct {
	spec      *GameSpec
	effectIDs map[string]bool
}

func (v *validator) validateEffect(e *Effect, field string, errs *[]ValidationError) {
	if e.ID == "" {
		*errs = append(*errs, ValidationError{Field: field + ".id", Message: "required"})
	}
	switch e.Type {
	case EffectDogma, EffectAction, EffectSetup:
	default:
		*errs = append(*errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown effect type %q", e.Type),
		})
	}
	if e.Type == EffectDogma && e.TriggerIcon == "" {
		*errs = append(*errs, ValidationError{
			Field:   field + ".trigger_icon",
			Message: "dogma effects require a trigger icon",
		})
	}
	seen := make(map[string]bool)
	v.validateSteps(e.Steps, field+".steps", seen, errs)
}

// validateSteps walks a step list including nested bodies. Step ids must
// be unique within the whole effect because resume addressing uses them.
func (v *validator) validateSteps(steps []EffectStep, field string, seen map[string]bool, errs *[]ValidationError) {
	add := func(f, format string, args ...any) {
		*errs = append(*errs, ValidationError{Field: f, Message: fmt.Sprintf(format, args...)})
	}

	for i := range steps {
		step := &steps[i]
		sf := fmt.Sprintf("%s[%d]", field, i)

		if step.ID == "" {
			add(sf+".id", "required")
		} else if seen[step.ID] {
			add(sf+".id", "duplicate step id: %q", step.ID)
		}
		seen[step.ID] = true

		if !step.payloadMatchesKind() {
			add(sf, "kind %q has no matching payload", step.Kind)
			continue
		}
		if !step.Condition.IsZero() {
			v.compileExpr(&step.Condition, sf+".condition", errs)
		}

		switch step.Kind {
		case StepDraw:
			if !step.Draw.Age.IsZero() {
				v.compileExpr(&step.Draw.Age, sf+".draw.age", errs)
			}

		case StepMeld:
			v.compileExpr(&step.Meld.CardSource, sf+".meld.card", errs)
		case StepTuck:
			v.compileExpr(&step.Tuck.CardSource, sf+".tuck.card", errs)
		case StepReturn:
			v.compileExpr(&step.Return.CardSource, sf+".return.card", errs)
		case StepScore:
			v.compileExpr(&step.Score.CardSource, sf+".score.card", errs)

		case StepTransfer:
			v.compileExpr(&step.Transfer.CardSource, sf+".transfer.card", errs)
			if step.Transfer.FromZone == "" {
				add(sf+".transfer.from_zone", "required")
			}
			if step.Transfer.ToZone == "" {
				add(sf+".transfer.to_zone", "required")
			}

		case StepSplay:
			switch step.Splay.Direction {
			case SplayNone, SplayLeft, SplayRight, SplayUp:
			default:
				add(sf+".splay.direction", "invalid direction %q", step.Splay.Direction)
			}
			if !step.Splay.Color.IsZero() {
				v.compileExpr(&step.Splay.Color, sf+".splay.color", errs)
			}

		case StepAchieve:
			if !step.Achieve.Age.IsZero() {
				v.compileExpr(&step.Achieve.Age, sf+".achieve.age", errs)
			}

		case StepChooseCard, StepChoosePlayer:
			if step.Choose.Source.IsZero() {
				add(sf+".choose.source", "required for %s", step.Kind)
			} else {
				v.compileExpr(&step.Choose.Source, sf+".choose.source", errs)
			}
			if !step.Choose.Filter.IsZero() {
				v.compileExpr(&step.Choose.Filter, sf+".choose.filter", errs)
			}
			if step.Choose.Min > step.Choose.Max && step.Choose.Max > 0 {
				add(sf+".choose", "min %d exceeds max %d", step.Choose.Min, step.Choose.Max)
			}

		case StepChooseOption:
			if len(step.Choose.Options) == 0 {
				add(sf+".choose.options", "required for choose_option")
			}

		case StepSetVariable:
			if step.SetVariable.Name == "" {
				add(sf+".set_variable.name", "required")
			}
			v.compileExpr(&step.SetVariable.Value, sf+".set_variable.value", errs)

		case StepConditional:
			if step.Conditional.Condition.IsZero() {
				add(sf+".conditional.condition", "required")
			} else {
				v.compileExpr(&step.Conditional.Condition, sf+".conditional.condition", errs)
			}
			v.validateSteps(step.Conditional.Then, sf+".conditional.then", seen, errs)
			v.validateSteps(step.Conditional.Else, sf+".conditional.else", seen, errs)

		case StepForEach:
			if step.ForEach.Var == "" {
				add(sf+".for_each.var", "required")
			}
			if step.ForEach.Source.IsZero() {
				add(sf+".for_each.source", "required")
			} else {
				v.compileExpr(&step.ForEach.Source, sf+".for_each.source", errs)
			}
			if len(step.ForEach.Body) == 0 {
				add(sf+".for_each.body", "required")
			}
			v.validateSteps(step.ForEach.Body, sf+".for_each.body", seen, errs)

		case StepRepeat:
			if step.Repeat.Count.IsZero() {
				add(sf+".repeat.count", "required")
			} else {
				v.compileExpr(&step.Repeat.Count, sf+".repeat.count", errs)
			}
			v.validateSteps(step.Repeat.Body, sf+".repeat.body", seen, errs)

		case StepDemand:
			if len(step.Demand.Body) == 0 {
				add(sf+".demand.body", "required")
			}
			v.validateSteps(step.Demand.Body, sf+".demand.body", seen, errs)

		case StepShareBonus:
			if len(step.ShareBonus.Body) == 0 {
				add(sf+".share_bonus.body", "required")
			}
			v.validateSteps(step.ShareBonus.Body, sf+".share_bonus.body", seen, errs)

		case StepExecuteEffect:
			if step.ExecuteEffect.EffectID == "" {
				add(sf+".execute_effect.effect_id", "required")
			} else if !v.effectIDs[step.ExecuteEffect.EffectID] {
				add(sf+".execute_effect.effect_id", "unresolvable effect id %q", step.ExecuteEffect.EffectID)
			}
		}
	}
}

func (v *validator) compileExpr(e *Expr, field string, errs *[]ValidationError) {
	if e.IsZero() {
		return
	}
	if err := e.Compile(); err != nil {
		*errs = append(*errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid expression: %v", err),
		})
	}
}
