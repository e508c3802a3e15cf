// Package rules implements the match-level rulebook: the lifecycle state
// machine, action legality, retreat, evolution and static card rules.
package rules

import (
	"github.com/pokefree/tcg-server-go/internal/game"
)

// lifecycleGraph is the fixed set of legal lifecycle transitions. Both
// terminal states are reachable from every non-terminal state (a concession
// can end the match at any point, a cancellation likewise) and are handled
// in CanTransition rather than listed per edge.
var lifecycleGraph = map[game.MatchState][]game.MatchState{
	game.StateCreated:              {game.StateWaitingForPlayers},
	game.StateWaitingForPlayers:    {game.StateDeckValidation},
	game.StateDeckValidation:       {game.StateMatchApproval},
	game.StateMatchApproval:        {game.StatePreGameSetup},
	game.StatePreGameSetup:         {game.StateDrawingCards},
	game.StateDrawingCards:         {game.StateSetPrizeCards},
	game.StateSetPrizeCards:        {game.StateSelectActivePokemon},
	game.StateSelectActivePokemon:  {game.StateSelectBenchPokemon},
	game.StateSelectBenchPokemon:   {game.StateFirstPlayerSelection},
	game.StateFirstPlayerSelection: {game.StatePlayerTurn},
	game.StatePlayerTurn:           {game.StateBetweenTurns},
	game.StateBetweenTurns:         {game.StatePlayerTurn},
	game.StateMatchEnded:           {},
	game.StateCancelled:            {},
}

// CanTransition reports whether the lifecycle may move from one state to
// another.
func CanTransition(from, to game.MatchState) bool {
	if from.IsTerminal() {
		return false
	}
	if to.IsTerminal() {
		return true
	}
	for _, next := range lifecycleGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// playableStates are the states in which the board exists and regular play
// actions can be meaningful. Outside this set only CONCEDE is legal.
var playableStates = map[game.MatchState]bool{
	game.StatePreGameSetup:         true,
	game.StateDrawingCards:         true,
	game.StateSetPrizeCards:        true,
	game.StateSelectActivePokemon:  true,
	game.StateSelectBenchPokemon:   true,
	game.StateFirstPlayerSelection: true,
	game.StatePlayerTurn:           true,
	game.StateBetweenTurns:         true,
}

// stateActions gates the playable non-turn states with per-state allow-lists.
// CONCEDE is always added implicitly.
var stateActions = map[game.MatchState][]game.PlayerActionType{
	game.StatePreGameSetup:         {},
	game.StateDrawingCards:         {game.ActionDrawInitialHand},
	game.StateSetPrizeCards:        {game.ActionSetPrizeCards},
	game.StateSelectActivePokemon:  {game.ActionSetActivePokemon},
	game.StateSelectBenchPokemon:   {game.ActionSelectBenchPokemon, game.ActionSetActivePokemon},
	game.StateFirstPlayerSelection: {game.ActionGenerateCoinFlip},
	game.StateBetweenTurns:         {game.ActionGenerateCoinFlip},
}

// phaseActions gates action types inside PLAYER_TURN per phase.
var phaseActions = map[game.TurnPhase][]game.PlayerActionType{
	game.PhaseDraw: {game.ActionDrawCard},
	game.PhaseMain: {
		game.ActionAttachEnergy,
		game.ActionPlayPokemon,
		game.ActionPlayTrainer,
		game.ActionUseAbility,
		game.ActionEvolvePokemon,
		game.ActionRetreat,
		game.ActionAttack,
		game.ActionGenerateCoinFlip,
		game.ActionEndTurn,
	},
	game.PhaseAttack: {
		game.ActionAttack,
		game.ActionGenerateCoinFlip,
		game.ActionEndTurn,
	},
	game.PhaseEnd: {
		game.ActionEndTurn,
	},
	game.PhaseSelectActivePokemon: {
		game.ActionSetActivePokemon,
	},
}

func contains(list []game.PlayerActionType, action game.PlayerActionType) bool {
	for _, a := range list {
		if a == action {
			return true
		}
	}
	return false
}

// ValidateAction checks whether the player may submit the action in the
// current (state, phase, turn-owner) triple. gs may carry extra context (nil
// active Pokémon, pending coin flip) consulted for the cross-player
// exceptions; it may be nil outside PLAYER_TURN.
func ValidateAction(
	state game.MatchState,
	phase game.TurnPhase,
	actionType game.PlayerActionType,
	currentPlayer, playerID string,
	gs *game.GameState,
) error {
	// CONCEDE is legal in any playable state and is the only action legal
	// outside the playable set (besides nothing at all in terminal states).
	if actionType == game.ActionConcede {
		if state.IsTerminal() {
			return &game.ActionValidationError{
				Reason: game.ReasonInvalidState,
				State:  state,
				Phase:  phase,
				Action: actionType,
			}
		}
		return nil
	}
	if !playableStates[state] {
		return &game.ActionValidationError{
			Reason: game.ReasonInvalidState,
			State:  state,
			Phase:  phase,
			Action: actionType,
		}
	}

	if state != game.StatePlayerTurn {
		if !contains(stateActions[state], actionType) {
			return &game.ActionValidationError{
				Reason: game.ReasonInvalidState,
				State:  state,
				Phase:  phase,
				Action: actionType,
			}
		}
		return nil
	}

	// Inside PLAYER_TURN: non-current players may act only through the
	// explicit exceptions.
	if playerID != currentPlayer && !crossPlayerAllowed(actionType, playerID, gs) {
		return &game.ActionValidationError{
			Reason: game.ReasonNotPlayerTurn,
			State:  state,
			Phase:  phase,
			Action: actionType,
		}
	}

	if !contains(phaseActions[phase], actionType) && !crossPlayerAllowed(actionType, playerID, gs) {
		return &game.ActionValidationError{
			Reason: game.ReasonInvalidPhase,
			State:  state,
			Phase:  phase,
			Action: actionType,
		}
	}
	return nil
}

// crossPlayerAllowed covers the PLAYER_TURN exceptions: a player whose active
// Pokémon was knocked out may SET_ACTIVE_POKEMON on the opponent's turn, and
// both players may GENERATE_COIN_FLIP while a flip awaits approval.
func crossPlayerAllowed(actionType game.PlayerActionType, playerID string, gs *game.GameState) bool {
	if gs == nil {
		return false
	}
	switch actionType {
	case game.ActionSetActivePokemon:
		ps, err := gs.PlayerState(playerID)
		return err == nil && ps.ActivePokemon == nil
	case game.ActionGenerateCoinFlip:
		return gs.CoinFlip != nil && !gs.CoinFlip.IsSettled()
	}
	return false
}

// NextPhase returns the phase after executing actionType in phase. ok=false
// means the turn ends and the match advances to between-turns.
func NextPhase(phase game.TurnPhase, actionType game.PlayerActionType) (game.TurnPhase, bool) {
	if actionType == game.ActionEndTurn {
		return "", false
	}
	switch {
	case phase == game.PhaseDraw && actionType == game.ActionDrawCard:
		return game.PhaseMain, true
	case phase == game.PhaseAttack && actionType == game.ActionAttack:
		return game.PhaseEnd, true
	case phase == game.PhaseSelectActivePokemon && actionType == game.ActionSetActivePokemon:
		return game.PhaseEnd, true
	}
	return phase, true
}

// WinReason explains how a match was won.
type WinReason string

const (
	WinByPrizeCards      WinReason = "ALL_PRIZE_CARDS_TAKEN"
	WinByNoPokemonInPlay WinReason = "OPPONENT_NO_POKEMON"
	WinByDeckOut         WinReason = "OPPONENT_DECK_EMPTY"
	WinByConcession      WinReason = "OPPONENT_CONCEDED"
)

// CheckWinConditions inspects both halves of the board and returns the
// winning player id when a condition is met. Conditions are checked in
// priority order: prize-out, no Pokémon in play, deck-out.
func CheckWinConditions(p1, p2 game.PlayerGameState) (string, WinReason, bool) {
	if len(p2.PrizeCards) == 0 {
		return p2.PlayerID, WinByPrizeCards, true
	}
	if len(p1.PrizeCards) == 0 {
		return p1.PlayerID, WinByPrizeCards, true
	}
	if p2.PokemonInPlay() == 0 {
		return p1.PlayerID, WinByNoPokemonInPlay, true
	}
	if p1.PokemonInPlay() == 0 {
		return p2.PlayerID, WinByNoPokemonInPlay, true
	}
	if len(p2.Deck) == 0 {
		return p1.PlayerID, WinByDeckOut, true
	}
	if len(p1.Deck) == 0 {
		return p2.PlayerID, WinByDeckOut, true
	}
	return "", "", false
}
