package engine

import (
	"errors"
	"fmt"
)

// RuleError represents an action rejected by the engine. Rejection never
// publishes a new state: the caller sees the error, the previous state,
// and an unchanged journal.
type RuleError struct {
	// Code identifies the error category.
	Code RuleErrorCode

	// Message is a human-readable description.
	Message string

	// PlayerID identifies the acting player, when known.
	PlayerID string

	// EffectID and StepID locate the failure for resolution errors.
	EffectID string
	StepID   string
}

// RuleErrorCode categorizes rule errors.
type RuleErrorCode string

const (
	// ErrCodeInvalidAction indicates a structurally malformed action.
	ErrCodeInvalidAction RuleErrorCode = "INVALID_ACTION"

	// ErrCodeWrongTurn indicates the acting player is not the current player.
	ErrCodeWrongTurn RuleErrorCode = "WRONG_TURN"

	// ErrCodeWrongPhase indicates the action is not accepted in the current phase.
	ErrCodeWrongPhase RuleErrorCode = "WRONG_PHASE"

	// ErrCodeNoActionsRemaining indicates the turn's action allotment is spent.
	ErrCodeNoActionsRemaining RuleErrorCode = "NO_ACTIONS_REMAINING"

	// ErrCodeIllegalAction indicates the action fails a rules precondition
	// (card not in hand, achievement not qualified for, ...).
	ErrCodeIllegalAction RuleErrorCode = "ILLEGAL_ACTION"

	// ErrCodeNoChoicePending indicates a choose action with nothing to answer,
	// or a choice id that does not match the pending choice.
	ErrCodeNoChoicePending RuleErrorCode = "NO_CHOICE_PENDING"

	// ErrCodeInvalidChoice indicates a selection outside the enumerated options
	// or bounds of the pending choice.
	ErrCodeInvalidChoice RuleErrorCode = "INVALID_CHOICE"

	// ErrCodeResolutionError indicates an effect step failed mid-resolution.
	ErrCodeResolutionError RuleErrorCode = "RESOLUTION_ERROR"

	// ErrCodeCorrectionError indicates a correction batch failed validation;
	// none of the batch was applied.
	ErrCodeCorrectionError RuleErrorCode = "CORRECTION_ERROR"

	// ErrCodeVisionUnavailable indicates a vision update with no reconciler
	// configured.
	ErrCodeVisionUnavailable RuleErrorCode = "VISION_UNAVAILABLE"

	// ErrCodeHandlerError indicates a handler panicked; the state is unchanged.
	ErrCodeHandlerError RuleErrorCode = "HANDLER_ERROR"

	// ErrCodeGameOver indicates an action against a finished game.
	ErrCodeGameOver RuleErrorCode = "GAME_OVER"
)

// Error implements the error interface.
func (e *RuleError) Error() string {
	switch {
	case e.EffectID != "" && e.StepID != "":
		return fmt.Sprintf("%s: %s (effect=%s, step=%s)", e.Code, e.Message, e.EffectID, e.StepID)
	case e.PlayerID != "":
		return fmt.Sprintf("%s: %s (player=%s)", e.Code, e.Message, e.PlayerID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// ErrorCode extracts the rule error code from a possibly wrapped error.
// Returns empty for non-rule errors.
func ErrorCode(err error) RuleErrorCode {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsResolutionError reports whether the error is a mid-effect failure.
func IsResolutionError(err error) bool {
	return ErrorCode(err) == ErrCodeResolutionError
}

// newError creates a RuleError with a formatted message.
func newError(code RuleErrorCode, playerID, format string, args ...any) *RuleError {
	return &RuleError{Code: code, PlayerID: playerID, Message: fmt.Sprintf(format, args...)}
}

// newResolutionError creates a RuleError locating a failed effect step.
func newResolutionError(effectID, stepID, format string, args ...any) *RuleError {
	return &RuleError{
		Code:     ErrCodeResolutionError,
		Message:  fmt.Sprintf(format, args...),
		EffectID: effectID,
		StepID:   stepID,
	}
}
