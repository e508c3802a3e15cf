package rules

import (
	"github.com/pokefree/tcg-server-go/internal/game"
)

// History scans implement the once-per-turn restrictions. lastAction is
// included because it may not yet appear in the history slice on freshly
// loaded states.

func scanThisTurn(gs game.GameState, playerID string, visit func(game.ActionSummary) bool) bool {
	for _, a := range gs.ActionHistory {
		if a.TurnNumber == gs.TurnNumber && a.PlayerID == playerID && visit(a) {
			return true
		}
	}
	if a := gs.LastAction; a != nil &&
		a.TurnNumber == gs.TurnNumber && a.PlayerID == playerID && visit(*a) {
		return true
	}
	return false
}

// EnergyAttachedThisTurn reports whether the player already attached an
// energy card from hand this turn.
func EnergyAttachedThisTurn(gs game.GameState, playerID string) bool {
	return scanThisTurn(gs, playerID, func(a game.ActionSummary) bool {
		return a.Type == game.ActionAttachEnergy
	})
}

// EvolvedThisTurn reports whether the instance already evolved this turn,
// either through an EVOLVE_POKEMON action or a trainer effect that resolved
// to the same instance.
func EvolvedThisTurn(gs game.GameState, playerID, instanceID string) bool {
	return scanThisTurn(gs, playerID, func(a game.ActionSummary) bool {
		switch a.Type {
		case game.ActionEvolvePokemon, game.ActionPlayTrainer:
			return a.Data.TargetInstanceID == instanceID && a.Data.EvolutionCardID != ""
		}
		return false
	})
}

// EnteredPlayThisTurn reports whether the instance was placed or evolved this
// turn; such Pokémon cannot evolve again until the next turn.
func EnteredPlayThisTurn(gs game.GameState, playerID string, instance game.CardInstance) bool {
	if instance.EvolvedAtTurn == gs.TurnNumber {
		return true
	}
	return EvolvedThisTurn(gs, playerID, instance.InstanceID)
}

// RetreatedThisTurn reports whether the player already retreated this turn.
func RetreatedThisTurn(gs game.GameState, playerID string) bool {
	return scanThisTurn(gs, playerID, func(a game.ActionSummary) bool {
		return a.Type == game.ActionRetreat
	})
}

// AbilityUsedThisGame reports whether the player used the card's ability at
// any point in the match; backs ONCE_PER_GAME card rules.
func AbilityUsedThisGame(gs game.GameState, playerID, cardID string) bool {
	for _, a := range gs.ActionHistory {
		if a.PlayerID == playerID && a.Type == game.ActionUseAbility && a.Data.CardID == cardID {
			return true
		}
	}
	if a := gs.LastAction; a != nil &&
		a.PlayerID == playerID && a.Type == game.ActionUseAbility && a.Data.CardID == cardID {
		return true
	}
	return false
}
