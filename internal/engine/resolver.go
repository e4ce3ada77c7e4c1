package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/splay/internal/expr"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Effect resolution runs a stack of EffectContext frames living on the
// state. Each loop iteration executes the current step of the top
// frame. Compound steps (conditional, for_each, repeat, demand,
// execute_effect) advance the parent's cursor first and then push child
// frames, so a frame resumed after suspension never re-pushes work it
// already scheduled.
//
// A choose step with no recorded answer suspends: the pending choice is
// written to the state, the phase flips to awaiting_choice, and the
// loop returns with the stack intact. The answering choose action
// records the selection in the frame and re-enters the loop; the same
// choose step now finds its answer and completes.

// errSuspended signals a clean suspension on a pending choice.
var errSuspended = errors.New("resolution suspended on choice")

// errExhausted signals that a required draw found every pile empty.
var errExhausted = errors.New("supply exhausted")

// shareBonusStepID names the synthetic trailing step of a dogma
// activation that pays the activator's share bonus.
const shareBonusStepID = "auto_share_bonus"

// beginDogma seeds the resolution stack for a dogma activation: one
// bottom frame paying the share bonus, then the card's effects in order
// with demand targeting or sharing applied.
func (e *Engine) beginDogma(st *state.GameState, activatorID string, card *spec.CardDefinition) error {
	activator, ok := st.Player(activatorID)
	if !ok {
		return newError(ErrCodeInvalidAction, activatorID, "unknown player")
	}
	if len(card.Effects) == 0 {
		return nil
	}

	// Bottom frame: the automatic share bonus, armed by any sharer
	// frame that mutates state.
	st.PendingEffects = append(st.PendingEffects, state.EffectContext{
		EffectID:       card.ID + "_share",
		EffectName:     card.Name + " share bonus",
		ActivatorID:    activatorID,
		ActingPlayerID: activatorID,
		Steps: []spec.EffectStep{{
			ID:   shareBonusStepID,
			Kind: spec.StepShareBonus,
			ShareBonus: &spec.ShareBonusStep{
				Body: []spec.EffectStep{{
					ID:   shareBonusStepID + "_draw",
					Kind: spec.StepDraw,
					Draw: &spec.DrawStep{Count: 1},
				}},
			},
		}},
	})

	// Effects execute in card order; the stack is LIFO, so push them
	// reversed.
	for i := len(card.Effects) - 1; i >= 0; i-- {
		eff := &card.Effects[i]
		activatorIcons := CountIcon(e.spec, activator, eff.TriggerIcon)

		if eff.IsDemand() {
			// Demand targets: opponents with strictly fewer trigger
			// icons, in turn order after the activator. Frames run
			// best-effort: a target unable to comply skips.
			targets := e.playersAfter(st, activatorID, func(p *state.PlayerState) bool {
				return CountIcon(e.spec, p, eff.TriggerIcon) < activatorIcons
			})
			body := eff.Steps[0].Demand.Body
			for j := len(targets) - 1; j >= 0; j-- {
				st.PendingEffects = append(st.PendingEffects, state.EffectContext{
					EffectID:       eff.ID,
					EffectName:     eff.Name,
					TriggerIcon:    eff.TriggerIcon,
					Steps:          body,
					ActivatorID:    activatorID,
					ActingPlayerID: targets[j],
					DemandedBy:     activatorID,
					BestEffort:     true,
				})
			}
			continue
		}

		// Sharing: players with at least as many trigger icons execute
		// first, in turn order after the activator; the activator
		// executes last. LIFO, so the activator is pushed first.
		sharers := e.playersAfter(st, activatorID, func(p *state.PlayerState) bool {
			return CountIcon(e.spec, p, eff.TriggerIcon) >= activatorIcons
		})
		executors := append(slices.Clone(sharers), activatorID)
		for j := len(executors) - 1; j >= 0; j-- {
			st.PendingEffects = append(st.PendingEffects, state.EffectContext{
				EffectID:       eff.ID,
				EffectName:     eff.Name,
				TriggerIcon:    eff.TriggerIcon,
				Steps:          eff.Steps,
				ActivatorID:    activatorID,
				ActingPlayerID: executors[j],
				SharingPlayers: sharers,
			})
		}
	}
	return nil
}

// playersAfter returns the ids of players matching the predicate, in
// turn order starting after the given player and excluding them.
func (e *Engine) playersAfter(st *state.GameState, afterID string, match func(*state.PlayerState) bool) []string {
	start, _ := st.PlayerIndex(afterID)
	var ids []string
	for i := 1; i < len(st.Players); i++ {
		p := &st.Players[(start+i)%len(st.Players)]
		if match(p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// runResolution drives the stack until it empties, suspends on a
// choice, or ends the game. It is re-entrant: resuming after a choice
// is the same call against the updated state.
func (e *Engine) runResolution(st *state.GameState) error {
	for len(st.PendingEffects) > 0 && st.Phase != state.PhaseGameOver {
		idx := len(st.PendingEffects) - 1
		frame := &st.PendingEffects[idx]

		if frame.Done() {
			st.PendingEffects = st.PendingEffects[:idx]
			continue
		}

		step, _ := frame.CurrentStep()
		if !step.Condition.IsZero() {
			scope := &gameScope{gs: e.spec, st: st, frame: frame}
			if !expr.EvalCondition(step.Condition.Node(), scope) {
				frame.StepIndex++
				continue
			}
		}

		err := e.execStep(st, idx)
		switch {
		case err == nil:

		case errors.Is(err, errSuspended):
			return nil

		case errors.Is(err, errExhausted):
			endByExhaustion(e.spec, st)
			return nil

		default:
			// execStep may have grown the stack; re-resolve the frame.
			frame = &st.PendingEffects[idx]
			if frame.BestEffort {
				e.logger.Debug("skipping impossible demand step",
					"effect_id", frame.EffectID,
					"step_id", step.ID,
					"player_id", frame.ActingPlayerID,
					"reason", err.Error())
				frame.StepIndex++
				continue
			}
			return newResolutionError(frame.EffectID, step.ID, "%v", err)
		}
	}

	if len(st.PendingEffects) == 0 && st.Phase == state.PhaseChoice {
		st.Phase = state.PhaseAction
	}
	return nil
}

// execStep executes the current step of the frame at idx. Compound
// steps advance the cursor before pushing children; primitive steps
// advance it after succeeding.
func (e *Engine) execStep(st *state.GameState, idx int) error {
	frame := &st.PendingEffects[idx]
	step, _ := frame.CurrentStep()
	scope := &gameScope{gs: e.spec, st: st, frame: frame}

	switch step.Kind {
	case spec.StepDraw:
		age := e.drawAge(st, frame, step.Draw, scope)
		var last state.Card
		for i := 0; i < step.Draw.EffectiveCount(); i++ {
			card, err := e.drawCard(st, frame.ActingPlayerID, age)
			if err != nil {
				return err
			}
			last = card
		}
		frame.SetVariable("drawn_card", expr.Str(last.InstanceID))
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepMeld:
		card, err := e.takeFromPlayer(st, frame, step.Meld.CardSource, scope)
		if err != nil {
			return err
		}
		e.placeOnBoard(st, frame.ActingPlayerID, card, false)
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepTuck:
		card, err := e.takeFromPlayer(st, frame, step.Tuck.CardSource, scope)
		if err != nil {
			return err
		}
		e.placeOnBoard(st, frame.ActingPlayerID, card, true)
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepReturn:
		card, err := e.takeFromPlayer(st, frame, step.Return.CardSource, scope)
		if err != nil {
			return err
		}
		def, ok := e.spec.Card(card.CardID)
		if !ok {
			return fmt.Errorf("cannot return unknown card %q", card.CardID)
		}
		st.SupplyPiles[def.Age] = st.SupplyPiles[def.Age].WithBottom(card)
		frame.SetVariable("returned_age", expr.Int(int64(def.Age)))
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepScore:
		card, err := e.takeFromPlayer(st, frame, step.Score.CardSource, scope)
		if err != nil {
			return err
		}
		player, _ := st.Player(frame.ActingPlayerID)
		player.ScorePile = append(player.ScorePile, card)
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepTransfer:
		if err := e.execTransfer(st, frame, step.Transfer, scope); err != nil {
			return err
		}
		e.markShared(st, frame)
		frame.StepIndex++
		return nil

	case spec.StepSplay:
		if err := e.execSplay(st, frame, step.Splay, scope); err != nil {
			return err
		}
		frame.StepIndex++
		return nil

	case spec.StepAchieve:
		if err := e.execAchieve(st, frame, step.Achieve, scope); err != nil {
			return err
		}
		frame.StepIndex++
		return nil

	case spec.StepChooseCard, spec.StepChoosePlayer, spec.StepChooseOption:
		return e.execChoose(st, idx, step)

	case spec.StepSetVariable:
		frame.SetVariable(step.SetVariable.Name, expr.Eval(step.SetVariable.Value.Node(), scope))
		frame.StepIndex++
		return nil

	case spec.StepConditional:
		var body []spec.EffectStep
		if expr.EvalCondition(step.Conditional.Condition.Node(), scope) {
			body = step.Conditional.Then
		} else {
			body = step.Conditional.Else
		}
		frame.StepIndex++
		if len(body) > 0 {
			e.pushChild(st, idx, body, nil)
		}
		return nil

	case spec.StepForEach:
		source := expr.Eval(step.ForEach.Source.Node(), scope)
		list, ok := source.(expr.List)
		if !ok {
			return fmt.Errorf("for_each source is not a list")
		}
		limit := step.ForEach.MaxIterations
		if limit <= 0 {
			limit = spec.DefaultMaxIterations
		}
		if len(list) > limit {
			list = list[:limit]
		}
		frame.StepIndex++
		// One child frame per element, pushed reversed so the first
		// element runs first. Mid-iteration suspension resumes inside
		// the element's own frame.
		for i := len(list) - 1; i >= 0; i-- {
			e.pushChild(st, idx, step.ForEach.Body, map[string]expr.Value{
				step.ForEach.Var: list[i],
			})
		}
		return nil

	case spec.StepRepeat:
		count, ok := expr.AsInt(expr.Eval(step.Repeat.Count.Node(), scope))
		if !ok || count < 0 {
			count = 0
		}
		limit := step.Repeat.MaxIterations
		if limit <= 0 {
			limit = spec.DefaultMaxIterations
		}
		if count > int64(limit) {
			count = int64(limit)
		}
		frame.StepIndex++
		for i := int64(0); i < count; i++ {
			e.pushChild(st, idx, step.Repeat.Body, nil)
		}
		return nil

	case spec.StepDemand:
		// A demand reached as a plain step (not via beginDogma, which
		// unwraps it) runs its body against the acting player's
		// strictly-weaker opponents.
		actor, _ := st.Player(frame.ActingPlayerID)
		actorIcons := CountIcon(e.spec, actor, frame.TriggerIcon)
		targets := e.playersAfter(st, frame.ActingPlayerID, func(p *state.PlayerState) bool {
			return CountIcon(e.spec, p, frame.TriggerIcon) < actorIcons
		})
		frame.StepIndex++
		for i := len(targets) - 1; i >= 0; i-- {
			st.PendingEffects = append(st.PendingEffects, state.EffectContext{
				EffectID:       frame.EffectID,
				EffectName:     frame.EffectName,
				TriggerIcon:    frame.TriggerIcon,
				Steps:          step.Demand.Body,
				ActivatorID:    frame.ActivatorID,
				ActingPlayerID: targets[i],
				DemandedBy:     frame.ActingPlayerID,
				BestEffort:     true,
			})
		}
		return nil

	case spec.StepShareBonus:
		frame.StepIndex++
		if frame.ShareHappened {
			e.pushChild(st, idx, step.ShareBonus.Body, nil)
		}
		return nil

	case spec.StepExecuteEffect:
		eff, ok := e.spec.EffectByID(step.ExecuteEffect.EffectID)
		if !ok {
			return fmt.Errorf("unknown effect %q", step.ExecuteEffect.EffectID)
		}
		frame.StepIndex++
		f := &st.PendingEffects[idx]
		st.PendingEffects = append(st.PendingEffects, state.EffectContext{
			EffectID:       eff.ID,
			EffectName:     eff.Name,
			TriggerIcon:    f.TriggerIcon,
			Steps:          eff.Steps,
			ActivatorID:    f.ActivatorID,
			ActingPlayerID: f.ActingPlayerID,
			DemandedBy:     f.DemandedBy,
			BestEffort:     f.BestEffort,
		})
		return nil

	default:
		return fmt.Errorf("unhandled step kind %q", step.Kind)
	}
}

// pushChild pushes a body frame inheriting the parent's identity and a
// copy of its variables, plus extra bindings.
func (e *Engine) pushChild(st *state.GameState, parentIdx int, body []spec.EffectStep, extra map[string]expr.Value) {
	parent := &st.PendingEffects[parentIdx]
	vars := maps.Clone(parent.Variables)
	if vars == nil && len(extra) > 0 {
		vars = make(map[string]expr.Value, len(extra))
	}
	maps.Copy(vars, extra)
	st.PendingEffects = append(st.PendingEffects, state.EffectContext{
		EffectID:       parent.EffectID,
		EffectName:     parent.EffectName,
		TriggerIcon:    parent.TriggerIcon,
		Steps:          body,
		ActivatorID:    parent.ActivatorID,
		ActingPlayerID: parent.ActingPlayerID,
		DemandedBy:     parent.DemandedBy,
		Variables:      vars,
		BestEffort:     parent.BestEffort,
	})
}

// markShared arms the share bonus when a sharer (not the activator, not
// a demand target) mutates state. The bottom frame of the stack is the
// activation's bonus frame.
func (e *Engine) markShared(st *state.GameState, frame *state.EffectContext) {
	if frame.ActingPlayerID == frame.ActivatorID || frame.DemandedBy != "" {
		return
	}
	if len(st.PendingEffects) > 0 {
		st.PendingEffects[0].ShareHappened = true
	}
}

// drawAge computes the age for a draw step: the explicit expression, or
// the acting player's highest top card age, minimum 1.
func (e *Engine) drawAge(st *state.GameState, frame *state.EffectContext, step *spec.DrawStep, scope *gameScope) int {
	if !step.Age.IsZero() {
		if n, ok := expr.AsInt(expr.Eval(step.Age.Node(), scope)); ok && n >= 1 {
			return int(n)
		}
		return 1
	}
	player, _ := st.Player(frame.ActingPlayerID)
	age := int(highestTopCardAge(e.spec, player))
	if age < 1 {
		age = 1
	}
	return age
}

// drawCard draws the top card of the pile for an age into the player's
// hand, escalating to the next non-empty higher pile when the requested
// one is empty. Every pile empty at or above the age is exhaustion.
func (e *Engine) drawCard(st *state.GameState, playerID string, age int) (state.Card, error) {
	for a := age; a <= e.spec.MaxAge; a++ {
		pile := st.SupplyPiles[a]
		card, rest, ok := pile.WithoutTop()
		if !ok {
			continue
		}
		st.SupplyPiles[a] = rest
		player, found := st.Player(playerID)
		if !found {
			return state.Card{}, fmt.Errorf("unknown player %q", playerID)
		}
		player.Hand = append(player.Hand, card)
		e.logger.Debug("draw", "player_id", playerID, "requested_age", age, "drawn_age", a, "card_id", card.CardID)
		return card, nil
	}
	return state.Card{}, errExhausted
}

// takeFromPlayer resolves a card source expression to a card owned by
// the acting player and removes it from wherever it sits (hand first,
// then score pile, then board).
func (e *Engine) takeFromPlayer(st *state.GameState, frame *state.EffectContext, source spec.Expr, scope *gameScope) (state.Card, error) {
	v := expr.Eval(source.Node(), scope)
	instanceID, ok := expr.AsString(v)
	if !ok || instanceID == "" {
		return state.Card{}, fmt.Errorf("card source resolved to %s", expr.Format(v))
	}
	player, found := st.Player(frame.ActingPlayerID)
	if !found {
		return state.Card{}, fmt.Errorf("unknown player %q", frame.ActingPlayerID)
	}
	if card, rest, ok := removeCard(player.Hand, instanceID); ok {
		player.Hand = rest
		return card, nil
	}
	if card, rest, ok := removeCard(player.ScorePile, instanceID); ok {
		player.ScorePile = rest
		return card, nil
	}
	for color, stack := range player.Board {
		if card, rest, ok := stack.Without(instanceID); ok {
			player.Board[color] = rest
			return card, nil
		}
	}
	return state.Card{}, fmt.Errorf("card %q not held by player %q", instanceID, frame.ActingPlayerID)
}

func removeCard(cards []state.Card, instanceID string) (state.Card, []state.Card, bool) {
	for i, c := range cards {
		if c.InstanceID == instanceID {
			rest := make([]state.Card, 0, len(cards)-1)
			rest = append(rest, cards[:i]...)
			rest = append(rest, cards[i+1:]...)
			return c, rest, true
		}
	}
	return state.Card{}, cards, false
}

// placeOnBoard melds (top) or tucks (bottom) a card onto the player's
// stack of its color.
func (e *Engine) placeOnBoard(st *state.GameState, playerID string, card state.Card, bottom bool) {
	player, _ := st.Player(playerID)
	color := "unknown"
	if def, ok := e.spec.Card(card.CardID); ok {
		color = def.Color
	}
	if player.Board == nil {
		player.Board = make(map[string]state.ZoneStack)
	}
	stack := player.Board[color]
	if bottom {
		player.Board[color] = stack.WithBottom(card)
	} else {
		player.Board[color] = stack.WithTop(card)
	}
}

func (e *Engine) execTransfer(st *state.GameState, frame *state.EffectContext, step *spec.TransferStep, scope *gameScope) error {
	v := expr.Eval(step.CardSource.Node(), scope)
	instanceID, ok := expr.AsString(v)
	if !ok || instanceID == "" {
		return fmt.Errorf("transfer card resolved to %s", expr.Format(v))
	}

	fromID := e.resolveTransferPlayer(frame, step.FromPlayer, scope)
	toID := e.resolveTransferPlayer(frame, step.ToPlayer, scope)
	from, found := st.Player(fromID)
	if !found {
		return fmt.Errorf("unknown transfer source player %q", fromID)
	}
	to, found := st.Player(toID)
	if !found {
		return fmt.Errorf("unknown transfer target player %q", toID)
	}

	card, err := takeFromZone(from, step.FromZone, instanceID)
	if err != nil {
		return err
	}
	switch step.ToZone {
	case "hand":
		to.Hand = append(to.Hand, card)
	case "score_pile":
		to.ScorePile = append(to.ScorePile, card)
	case "board":
		e.placeOnBoard(st, toID, card, false)
	default:
		return fmt.Errorf("unknown transfer target zone %q", step.ToZone)
	}
	e.logger.Debug("transfer",
		"card_id", card.CardID, "from_player", fromID, "from_zone", step.FromZone,
		"to_player", toID, "to_zone", step.ToZone)
	return nil
}

// resolveTransferPlayer maps a transfer player role to a player id.
func (e *Engine) resolveTransferPlayer(frame *state.EffectContext, role string, scope *gameScope) string {
	switch role {
	case "", "self", "player":
		return frame.ActingPlayerID
	case "activator", "demanding_player":
		return frame.ActivatorID
	case "chosen_player":
		if v, ok := frame.Variable("chosen_player"); ok {
			if id, isStr := expr.AsString(v); isStr {
				return id
			}
		}
		return frame.ActingPlayerID
	default:
		// A variable name or literal player id.
		if v, ok := frame.Variable(role); ok {
			if id, isStr := expr.AsString(v); isStr {
				return id
			}
		}
		return role
	}
}

func takeFromZone(p *state.PlayerState, zone, instanceID string) (state.Card, error) {
	switch zone {
	case "hand":
		if card, rest, ok := removeCard(p.Hand, instanceID); ok {
			p.Hand = rest
			return card, nil
		}
	case "score_pile":
		if card, rest, ok := removeCard(p.ScorePile, instanceID); ok {
			p.ScorePile = rest
			return card, nil
		}
	case "board":
		for color, stack := range p.Board {
			if card, rest, ok := stack.Without(instanceID); ok {
				p.Board[color] = rest
				return card, nil
			}
		}
	default:
		return state.Card{}, fmt.Errorf("unknown transfer source zone %q", zone)
	}
	return state.Card{}, fmt.Errorf("card %q not in %s of player %q", instanceID, zone, p.ID)
}

func (e *Engine) execSplay(st *state.GameState, frame *state.EffectContext, step *spec.SplayStep, scope *gameScope) error {
	color := ""
	if !step.Color.IsZero() {
		if s, ok := expr.AsString(expr.Eval(step.Color.Node(), scope)); ok {
			color = s
		}
	}
	if color == "" {
		return fmt.Errorf("splay color unresolved")
	}
	player, _ := st.Player(frame.ActingPlayerID)
	stack := player.Stack(color)
	// A splay needs at least two cards to be visible; no-op otherwise.
	if stack.Count() < 2 {
		return nil
	}
	dir := state.SplayDirection(step.Direction)
	if stack.Splay != dir {
		player.Board[color] = stack.WithSplay(dir)
		e.markShared(st, frame)
	}
	return nil
}

func (e *Engine) execAchieve(st *state.GameState, frame *state.EffectContext, step *spec.AchieveStep, scope *gameScope) error {
	player, _ := st.Player(frame.ActingPlayerID)

	age := 0
	if !step.Age.IsZero() {
		if n, ok := expr.AsInt(expr.Eval(step.Age.Node(), scope)); ok {
			age = int(n)
		}
	} else {
		// Lowest qualifying achievement still available.
		sorted := slices.Clone(st.AchievementsAvailable)
		slices.Sort(sorted)
		for _, a := range sorted {
			if achievementQualified(e.spec, st, player, a) {
				age = a
				break
			}
		}
	}
	if age == 0 || !slices.Contains(st.AchievementsAvailable, age) {
		return fmt.Errorf("achievement age %d not available", age)
	}
	if !achievementQualified(e.spec, st, player, age) {
		return fmt.Errorf("player %q not qualified for age %d achievement", player.ID, age)
	}

	st.AchievementsAvailable = slices.DeleteFunc(slices.Clone(st.AchievementsAvailable), func(a int) bool {
		return a == age
	})
	player.Achievements = append(player.Achievements, age)
	slices.Sort(player.Achievements)
	e.markShared(st, frame)
	checkAchievementWin(e.spec, st)
	return nil
}

// execChoose suspends on an unanswered choice and completes an answered
// one. idx addresses the frame because enumerating options never pushes
// frames but completing the choice binds variables.
func (e *Engine) execChoose(st *state.GameState, idx int, step *spec.EffectStep) error {
	frame := &st.PendingEffects[idx]
	choiceID := frame.EffectID + "_" + step.ID

	if selections, answered := frame.ResolvedChoices[choiceID]; answered {
		e.bindChoice(frame, step, selections)
		frame.StepIndex++
		return nil
	}

	scope := &gameScope{gs: e.spec, st: st, frame: frame}
	options := e.enumerateOptions(st, frame, step, scope)
	min, max := step.Choose.Bounds()
	if max > len(options) {
		max = len(options)
	}
	if min > max {
		min = max
	}

	if len(options) == 0 {
		if !step.Choose.Optional && !frame.BestEffort {
			return fmt.Errorf("no valid choices available for %s", step.ID)
		}
		// Optional choice with nothing to pick: record the empty answer
		// and move on.
		if frame.ResolvedChoices == nil {
			frame.ResolvedChoices = make(map[string][]string)
		}
		frame.ResolvedChoices[choiceID] = nil
		e.bindChoice(frame, step, nil)
		frame.StepIndex++
		return nil
	}

	chooser := frame.ActingPlayerID
	if step.Choose.Chooser != "" {
		chooser = e.resolveTransferPlayer(frame, step.Choose.Chooser, scope)
	}

	st.ChoiceRequired = &state.PendingChoice{
		ChoiceID:       choiceID,
		PlayerID:       chooser,
		Kind:           spec.ChoiceKindFor(step.Kind),
		Prompt:         step.Choose.Prompt,
		Options:        options,
		MinChoices:     min,
		MaxChoices:     max,
		Optional:       step.Choose.Optional,
		SourceEffectID: frame.EffectID,
		SourceStepID:   step.ID,
	}
	st.Phase = state.PhaseChoice
	return errSuspended
}

// enumerateOptions lists every legal candidate in deterministic order.
func (e *Engine) enumerateOptions(st *state.GameState, frame *state.EffectContext, step *spec.EffectStep, scope *gameScope) []string {
	if step.Kind == spec.StepChooseOption {
		return slices.Clone(step.Choose.Options)
	}

	source := expr.Eval(step.Choose.Source.Node(), scope)
	list, ok := source.(expr.List)
	if !ok {
		return nil
	}
	var options []string
	for _, v := range list {
		id, isStr := expr.AsString(v)
		if !isStr {
			continue
		}
		if !step.Choose.Filter.IsZero() {
			// The filter sees the candidate as a frame variable; the
			// binding is restored after each evaluation.
			prev, had := frame.Variable("candidate")
			frame.SetVariable("candidate", expr.Str(id))
			keep := expr.EvalCondition(step.Choose.Filter.Node(), scope)
			if had {
				frame.SetVariable("candidate", prev)
			} else {
				delete(frame.Variables, "candidate")
			}
			if !keep {
				continue
			}
		}
		options = append(options, id)
	}
	return options
}

// bindChoice exposes an answered choice to later steps.
func (e *Engine) bindChoice(frame *state.EffectContext, step *spec.EffectStep, selections []string) {
	frame.SetVariable("choice_made", expr.Bool(len(selections) > 0))
	selected := make(expr.List, len(selections))
	for i, s := range selections {
		selected[i] = expr.Str(s)
	}
	frame.SetVariable("chosen", selected)

	first := expr.Value(expr.Null{})
	if len(selections) > 0 {
		first = expr.Str(selections[0])
	}
	switch step.Kind {
	case spec.StepChooseCard:
		frame.SetVariable("chosen_card", first)
	case spec.StepChoosePlayer:
		frame.SetVariable("chosen_player", first)
	case spec.StepChooseOption:
		frame.SetVariable("chosen_option", first)
	}
}
