package game

import (
	"time"

	"github.com/google/uuid"
)

// ActionSummary is the immutable record of one executed action. History is
// append-only; once-per-turn checks scan it rather than keeping counters.
type ActionSummary struct {
	ActionID   string
	PlayerID   string
	Type       PlayerActionType
	TurnNumber int
	Timestamp  time.Time
	Data       ActionData
}

// NewActionSummary builds a summary with a fresh id and the current time.
func NewActionSummary(playerID string, actionType PlayerActionType, turn int, data ActionData) ActionSummary {
	return ActionSummary{
		ActionID:   uuid.NewString(),
		PlayerID:   playerID,
		Type:       actionType,
		TurnNumber: turn,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	}
}

// ActionData carries the type-specific payload of an action request. Which
// fields are required is discriminated by the action type; the execution
// pipelines validate the shape before anything is applied.
type ActionData struct {
	// CardID names the card being played, evolved into or whose ability is
	// used.
	CardID string `json:"cardId,omitempty"`
	// Target is the board position an action points at.
	Target Position `json:"target,omitempty"`
	// TargetInstanceID names an in-play Pokémon by identity.
	TargetInstanceID string `json:"targetInstanceId,omitempty"`
	// EvolutionCardID names the evolution card for EVOLVE_POKEMON.
	EvolutionCardID string `json:"evolutionCardId,omitempty"`
	// SelectedCardIDs carries user selections (searches, retrievals,
	// discards).
	SelectedCardIDs []string `json:"selectedCardIds,omitempty"`
	// SelectedEnergyIDs carries the energy chosen to pay a retreat or
	// discard cost.
	SelectedEnergyIDs []string `json:"selectedEnergyIds,omitempty"`
	// AttackIndex selects which of the active Pokémon's attacks to use.
	AttackIndex int `json:"attackIndex,omitempty"`
	// Approve records a coin-flip approval for GENERATE_COIN_FLIP.
	Approve bool `json:"approve,omitempty"`
}

// ActionRequest is what an external caller submits to the engine.
type ActionRequest struct {
	MatchID  string           `json:"matchId"`
	PlayerID string           `json:"playerId"`
	Type     PlayerActionType `json:"actionType"`
	Data     ActionData       `json:"actionData"`
}
