package rules

import (
	"github.com/pokefree/tcg-server-go/internal/game"
)

// AvailableActions computes the actions a UI should offer the player in the
// current state and phase. The result is driven by the same tables as
// ValidateAction and then filtered against recent history so the list never
// offers an action that would be rejected (energy already attached, ability
// already used this turn).
func AvailableActions(
	state game.MatchState,
	phase game.TurnPhase,
	gs *game.GameState,
	playerID string,
) []game.PlayerActionType {
	if state.IsTerminal() {
		return nil
	}
	actions := []game.PlayerActionType{game.ActionConcede}
	if !playableStates[state] {
		return actions
	}

	if state != game.StatePlayerTurn {
		actions = append(actions, stateActions[state]...)
		return actions
	}
	if gs == nil {
		return actions
	}

	if gs.CurrentPlayer != playerID {
		// Cross-player exceptions only.
		for _, a := range []game.PlayerActionType{game.ActionSetActivePokemon, game.ActionGenerateCoinFlip} {
			if crossPlayerAllowed(a, playerID, gs) {
				actions = append(actions, a)
			}
		}
		return actions
	}

	for _, a := range phaseActions[phase] {
		if offerAction(a, gs, playerID) {
			actions = append(actions, a)
		}
	}
	return actions
}

func offerAction(action game.PlayerActionType, gs *game.GameState, playerID string) bool {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return false
	}
	switch action {
	case game.ActionAttachEnergy:
		return !EnergyAttachedThisTurn(*gs, playerID)
	case game.ActionPlayPokemon:
		return len(ps.Bench) < game.MaxBenchSize && len(ps.Hand) > 0
	case game.ActionRetreat:
		return ps.ActivePokemon != nil && len(ps.Bench) > 0
	case game.ActionAttack:
		return ps.ActivePokemon != nil
	case game.ActionEvolvePokemon, game.ActionPlayTrainer, game.ActionUseAbility:
		return len(ps.Hand) > 0 || action == game.ActionUseAbility
	case game.ActionGenerateCoinFlip:
		return gs.CoinFlip != nil && !gs.CoinFlip.IsSettled()
	}
	return true
}
