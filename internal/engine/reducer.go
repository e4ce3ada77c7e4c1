package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Engine applies actions to states. It holds no game state of its own:
// the same Engine value serves any number of games over the same spec,
// and Apply is safe for concurrent use across distinct states.
type Engine struct {
	spec       *spec.GameSpec
	logger     *slog.Logger
	reconciler Reconciler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards nothing
// but logs to slog's default handler.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithReconciler installs the vision reconciler. Without one, vision
// updates are rejected with VISION_UNAVAILABLE.
func WithReconciler(r Reconciler) Option {
	return func(e *Engine) { e.reconciler = r }
}

// New creates an engine over a validated spec.
func New(gs *spec.GameSpec, opts ...Option) *Engine {
	e := &Engine{spec: gs, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spec returns the game spec the engine runs.
func (e *Engine) Spec() *spec.GameSpec { return e.spec }

// Apply is the reducer: it validates the action against the current
// state, executes it against a clone, and returns the clone. The input
// state is never modified; on any error the caller keeps using it.
func (e *Engine) Apply(st *state.GameState, act action.Action) (next *state.GameState, err error) {
	if err := act.Validate(); err != nil {
		return nil, newError(ErrCodeInvalidAction, act.PlayerID, "%v", err)
	}
	if err := e.checkPhase(st, act); err != nil {
		return nil, err
	}

	work := st.Clone()

	// A panicking handler must not corrupt the published state; the
	// clone is discarded and the action rejected.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action handler panicked", "action", act.String(), "panic", fmt.Sprint(r))
			next = nil
			err = newError(ErrCodeHandlerError, act.PlayerID, "handler panicked: %v", r)
		}
	}()

	switch act.Kind {
	case action.Draw:
		err = e.applyDraw(work, act)
	case action.Meld:
		err = e.applyMeld(work, act)
	case action.Dogma:
		err = e.applyDogma(work, act)
	case action.Achieve:
		err = e.applyAchieve(work, act)
	case action.Pass:
		work.ActionsRemaining = 0
	case action.Choose:
		err = e.applyChoose(work, act)
	case action.StartTurn:
		err = e.applyStartTurn(work, act)
	case action.EndTurn:
		err = e.applyEndTurn(work, act)
	case action.VisionUpdate:
		err = e.applyVisionUpdate(work, act)
	case action.UserCorrection:
		err = e.applyCorrections(work, act)
	default:
		err = newError(ErrCodeInvalidAction, act.PlayerID, "unknown action kind %q", act.Kind)
	}
	if err != nil {
		return nil, err
	}

	work.ActionHistory = append(work.ActionHistory, act)
	e.logger.Info("action applied",
		"game_id", work.GameID,
		"action", act.String(),
		"phase", string(work.Phase),
		"actions_remaining", work.ActionsRemaining)
	return work, nil
}

// checkPhase gates actions by phase and turn before any state is
// touched. Corrections and vision updates are accepted in every phase
// except a finished game's.
func (e *Engine) checkPhase(st *state.GameState, act action.Action) error {
	if st.Phase == state.PhaseGameOver {
		return newError(ErrCodeGameOver, act.PlayerID, "game is over")
	}

	switch act.Kind {
	case action.UserCorrection, action.VisionUpdate:
		return nil

	case action.Choose:
		if st.Phase != state.PhaseChoice || st.ChoiceRequired == nil {
			return newError(ErrCodeNoChoicePending, act.PlayerID, "no choice pending")
		}
		if st.ChoiceRequired.PlayerID != act.PlayerID {
			return newError(ErrCodeWrongTurn, act.PlayerID, "choice belongs to %s", st.ChoiceRequired.PlayerID)
		}
		return nil

	case action.StartTurn:
		if st.Phase != state.PhaseAction && st.Phase != state.PhaseSetup {
			return newError(ErrCodeWrongPhase, act.PlayerID, "cannot %s in phase %s", act.Kind, st.Phase)
		}
		if act.PlayerID != st.CurrentPlayer().ID {
			return newError(ErrCodeWrongTurn, act.PlayerID, "current player is %s", st.CurrentPlayer().ID)
		}
		return nil

	case action.EndTurn:
		if st.Phase != state.PhaseAction {
			return newError(ErrCodeWrongPhase, act.PlayerID, "cannot %s in phase %s", act.Kind, st.Phase)
		}
		if act.PlayerID != st.CurrentPlayer().ID {
			return newError(ErrCodeWrongTurn, act.PlayerID, "current player is %s", st.CurrentPlayer().ID)
		}
		return nil

	default:
		if st.Phase != state.PhaseAction {
			return newError(ErrCodeWrongPhase, act.PlayerID, "cannot %s in phase %s", act.Kind, st.Phase)
		}
		if act.PlayerID != st.CurrentPlayer().ID {
			return newError(ErrCodeWrongTurn, act.PlayerID, "current player is %s", st.CurrentPlayer().ID)
		}
		if st.ActionsRemaining <= 0 {
			return newError(ErrCodeNoActionsRemaining, act.PlayerID, "no actions remaining this turn")
		}
		return nil
	}
}

func (e *Engine) applyDraw(st *state.GameState, act action.Action) error {
	player, _ := st.Player(act.PlayerID)
	age := 0
	if act.Draw != nil {
		age = act.Draw.Age
	}
	if age == 0 {
		age = int(highestTopCardAge(e.spec, player))
	}
	if age < 1 {
		age = 1
	}
	if _, err := e.drawCard(st, act.PlayerID, age); err != nil {
		if err == errExhausted {
			endByExhaustion(e.spec, st)
			return nil
		}
		return err
	}
	st.ActionsRemaining--
	return nil
}

func (e *Engine) applyMeld(st *state.GameState, act action.Action) error {
	player, _ := st.Player(act.PlayerID)
	card, ok := player.HandCard(act.Meld.CardID)
	if !ok {
		return newError(ErrCodeIllegalAction, act.PlayerID, "card %q not in hand", act.Meld.CardID)
	}
	_, rest, _ := removeHandCard(player, card.InstanceID)
	player.Hand = rest
	e.placeOnBoard(st, act.PlayerID, card, false)
	st.ActionsRemaining--
	return nil
}

func removeHandCard(p *state.PlayerState, instanceID string) (state.Card, []state.Card, bool) {
	return removeCard(p.Hand, instanceID)
}

func (e *Engine) applyDogma(st *state.GameState, act action.Action) error {
	player, _ := st.Player(act.PlayerID)
	card, ok := e.spec.Card(act.Dogma.CardID)
	if !ok {
		return newError(ErrCodeIllegalAction, act.PlayerID, "unknown card %q", act.Dogma.CardID)
	}
	top, hasTop := player.Stack(card.Color).Top()
	if !hasTop || top.CardID != card.ID {
		return newError(ErrCodeIllegalAction, act.PlayerID, "%q is not a top card of player %s", card.ID, act.PlayerID)
	}

	st.ActionsRemaining--
	if err := e.beginDogma(st, act.PlayerID, card); err != nil {
		return err
	}
	return e.runResolution(st)
}

func (e *Engine) applyAchieve(st *state.GameState, act action.Action) error {
	player, _ := st.Player(act.PlayerID)
	age := act.Achieve.Age
	if !slices.Contains(st.AchievementsAvailable, age) {
		return newError(ErrCodeIllegalAction, act.PlayerID, "achievement age %d not available", age)
	}
	if !achievementQualified(e.spec, st, player, age) {
		return newError(ErrCodeIllegalAction, act.PlayerID,
			"not qualified for age %d: need score >= %d and a top card of age >= %d", age, age*5, age)
	}

	st.AchievementsAvailable = slices.DeleteFunc(slices.Clone(st.AchievementsAvailable), func(a int) bool {
		return a == age
	})
	player.Achievements = append(player.Achievements, age)
	slices.Sort(player.Achievements)
	st.ActionsRemaining--
	checkAchievementWin(e.spec, st)
	return nil
}

func (e *Engine) applyChoose(st *state.GameState, act action.Action) error {
	pending := st.ChoiceRequired
	if pending.ChoiceID != act.Choose.ChoiceID {
		return newError(ErrCodeNoChoicePending, act.PlayerID,
			"pending choice is %q, got %q", pending.ChoiceID, act.Choose.ChoiceID)
	}
	if !pending.Allows(act.Choose.Selections) {
		return newError(ErrCodeInvalidChoice, act.PlayerID,
			"selection %v violates choice %q (%d..%d of %d options)",
			act.Choose.Selections, pending.ChoiceID, pending.MinChoices, pending.MaxChoices, len(pending.Options))
	}
	if len(st.PendingEffects) == 0 {
		return newError(ErrCodeNoChoicePending, act.PlayerID, "no effect awaiting the choice")
	}

	// Record the answer on the active frame; the choose step re-runs
	// and picks it up.
	frame := &st.PendingEffects[len(st.PendingEffects)-1]
	if frame.ResolvedChoices == nil {
		frame.ResolvedChoices = make(map[string][]string)
	}
	frame.ResolvedChoices[pending.ChoiceID] = slices.Clone(act.Choose.Selections)
	st.ChoiceRequired = nil
	st.Phase = state.PhaseAction

	return e.runResolution(st)
}

// applyStartTurn grants the turn's action allotment. END_TURN leaves the
// state at the setup phase with no actions; the allotment only exists
// between a START_TURN and the matching END_TURN.
func (e *Engine) applyStartTurn(st *state.GameState, act action.Action) error {
	if st.Phase == state.PhaseAction && st.ActionsRemaining > 0 {
		return newError(ErrCodeIllegalAction, act.PlayerID, "turn already started")
	}
	st.Phase = state.PhaseAction
	st.ActionsRemaining = e.spec.TurnStructure.ActionsFor(st.TurnNumber)
	return nil
}

func (e *Engine) applyEndTurn(st *state.GameState, act action.Action) error {
	if st.ActionsRemaining > 0 && !e.spec.TurnStructure.CanPass {
		return newError(ErrCodeIllegalAction, act.PlayerID,
			"%d actions remaining", st.ActionsRemaining)
	}
	st.CurrentPlayerIdx = (st.CurrentPlayerIdx + 1) % len(st.Players)
	st.TurnNumber++
	st.ActionsRemaining = 0
	st.Phase = state.PhaseSetup
	return nil
}

func (e *Engine) applyVisionUpdate(st *state.GameState, act action.Action) error {
	if e.reconciler == nil {
		return newError(ErrCodeVisionUnavailable, act.PlayerID, "no vision reconciler configured")
	}
	corrections, err := e.reconciler.Reconcile(e.spec, st, act.VisionUpdate.Observations)
	if err != nil {
		return newError(ErrCodeCorrectionError, act.PlayerID, "reconciliation failed: %v", err)
	}
	if len(corrections) == 0 {
		return nil
	}
	return e.applyCorrectionBatch(st, corrections)
}
