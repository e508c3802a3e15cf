package game

import (
	"fmt"
	"strings"

	"github.com/pokefree/tcg-server-go/internal/cards"
)

// ValidationReason classifies why an action is not permitted in the current
// (state, phase, turn-owner) triple.
type ValidationReason string

const (
	ReasonInvalidState  ValidationReason = "INVALID_STATE"
	ReasonNotPlayerTurn ValidationReason = "NOT_PLAYER_TURN"
	ReasonInvalidPhase  ValidationReason = "INVALID_PHASE"
)

// ActionValidationError reports an illegal-state failure. The caller corrects
// and resubmits; no state was touched.
type ActionValidationError struct {
	Reason ValidationReason
	State  MatchState
	Phase  TurnPhase
	Action PlayerActionType
}

func (e *ActionValidationError) Error() string {
	return fmt.Sprintf("action %s not permitted: %s (state=%s phase=%s)", e.Action, e.Reason, e.State, e.Phase)
}

// InputError reports malformed action data: required fields missing for the
// effects being executed. Reasons are flat, human-readable and may be
// prefixed with the index of the offending effect.
type InputError struct {
	Reasons []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid action data: %s", strings.Join(e.Reasons, "; "))
}

// RuleViolationError reports well-formed input that violates a game rule.
type RuleViolationError struct {
	Message string
}

func (e *RuleViolationError) Error() string {
	return e.Message
}

// RuleViolation builds a rule violation error.
func RuleViolation(format string, args ...any) *RuleViolationError {
	return &RuleViolationError{Message: fmt.Sprintf(format, args...)}
}

// Negotiation error codes. The payload is machine-parseable so the caller can
// re-prompt the user and resubmit the same action with the selection filled
// in; the engine keeps no pending-choice state between calls.
const (
	NegotiationEnergySelectionRequired = "ENERGY_SELECTION_REQUIRED"
	NegotiationCardSelectionRequired   = "CARD_SELECTION_REQUIRED"
	NegotiationTargetSelectionRequired = "TARGET_SELECTION_REQUIRED"
)

// NegotiationRequirement describes exactly what input is missing.
type NegotiationRequirement struct {
	Amount int              `json:"amount"`
	Energy cards.EnergyType `json:"energyType,omitempty"`
}

// NegotiationError signals that the submitted action is well-formed but
// incomplete pending a user choice.
type NegotiationError struct {
	Code        string                 `json:"error"`
	Requirement NegotiationRequirement `json:"requirement"`
	// AvailableEnergy lists the currently eligible energy card ids.
	AvailableEnergy []string `json:"availableEnergy,omitempty"`
	// AvailableCards lists the currently eligible card ids for selections
	// that are not energy payments.
	AvailableCards []string `json:"availableCards,omitempty"`
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("%s: %d required", e.Code, e.Requirement.Amount)
}
