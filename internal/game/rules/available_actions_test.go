package rules

import (
	"testing"

	"github.com/pokefree/tcg-server-go/internal/game"
)

var allStates = []game.MatchState{
	game.StateCreated,
	game.StateWaitingForPlayers,
	game.StateDeckValidation,
	game.StateMatchApproval,
	game.StatePreGameSetup,
	game.StateDrawingCards,
	game.StateSetPrizeCards,
	game.StateSelectActivePokemon,
	game.StateSelectBenchPokemon,
	game.StateFirstPlayerSelection,
	game.StatePlayerTurn,
	game.StateBetweenTurns,
	game.StateMatchEnded,
	game.StateCancelled,
}

var allPhases = []game.TurnPhase{
	game.PhaseDraw,
	game.PhaseMain,
	game.PhaseAttack,
	game.PhaseEnd,
	game.PhaseSelectActivePokemon,
}

// Every action the UI is offered must pass validation in the same state and
// phase, for the turn owner and for the opponent alike.
func TestAvailableActions_SubsetOfValidActions(t *testing.T) {
	active1 := activeInstance("a1", "machop", 50, 50)
	active2 := activeInstance("a2", "machop", 50, 50)
	gs := twoPlayerState(&active1, &active2)

	for _, state := range allStates {
		for _, phase := range allPhases {
			for _, playerID := range []string{"p1", "p2"} {
				offered := AvailableActions(state, phase, &gs, playerID)
				for _, action := range offered {
					err := ValidateAction(state, phase, action, gs.CurrentPlayer, playerID, &gs)
					if err != nil {
						t.Errorf("state %s phase %s player %s: offered %s but validation rejected it: %v",
							state, phase, playerID, action, err)
					}
				}
			}
		}
	}
}

func TestAvailableActions_TerminalOffersNothing(t *testing.T) {
	active := activeInstance("a1", "machop", 50, 50)
	gs := twoPlayerState(&active, &active)

	for _, state := range []game.MatchState{game.StateMatchEnded, game.StateCancelled} {
		if got := AvailableActions(state, game.PhaseMain, &gs, "p1"); len(got) != 0 {
			t.Errorf("state %s: expected no actions, got %v", state, got)
		}
	}
}

func TestAvailableActions_FiltersEnergyAlreadyAttached(t *testing.T) {
	active1 := activeInstance("a1", "machop", 50, 50)
	active2 := activeInstance("a2", "machop", 50, 50)
	gs := twoPlayerState(&active1, &active2)
	gs = gs.WithActionAppended(game.ActionSummary{
		PlayerID:   "p1",
		TurnNumber: gs.TurnNumber,
		Type:       game.ActionAttachEnergy,
	})

	offered := AvailableActions(game.StatePlayerTurn, game.PhaseMain, &gs, "p1")
	for _, action := range offered {
		if action == game.ActionAttachEnergy {
			t.Error("Expected ATTACH_ENERGY withheld after attaching this turn")
		}
	}
}
