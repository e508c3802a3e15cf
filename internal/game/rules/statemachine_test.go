package rules

import (
	"errors"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from game.MatchState
		to   game.MatchState
		want bool
	}{
		{game.StateCreated, game.StateWaitingForPlayers, true},
		{game.StateCreated, game.StatePlayerTurn, false},
		{game.StatePlayerTurn, game.StateBetweenTurns, true},
		{game.StateBetweenTurns, game.StatePlayerTurn, true},
		{game.StatePlayerTurn, game.StateMatchEnded, true},
		{game.StateDrawingCards, game.StateCancelled, true},
		{game.StateMatchEnded, game.StateCancelled, false},
		{game.StateCancelled, game.StatePlayerTurn, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// A concession may end the match from any point in the lifecycle, so both
// terminal states must be reachable from every non-terminal state.
func TestCanTransition_TerminalReachableEverywhere(t *testing.T) {
	for _, from := range allStates {
		if from.IsTerminal() {
			continue
		}
		for _, to := range []game.MatchState{game.StateMatchEnded, game.StateCancelled} {
			if !CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = false, want true", from, to)
			}
		}
	}
}

func TestValidateAction_Concede(t *testing.T) {
	if err := ValidateAction(game.StateDrawingCards, "", game.ActionConcede, "p1", "p2", nil); err != nil {
		t.Errorf("Expected concede legal during setup, got %v", err)
	}
	if err := ValidateAction(game.StateMatchEnded, "", game.ActionConcede, "p1", "p1", nil); err == nil {
		t.Error("Expected concede rejected in a terminal state")
	}
}

func TestValidateAction_TurnOwnership(t *testing.T) {
	active := activeInstance("i1", "machop", 50, 50)
	gs := twoPlayerState(&active, &active)

	err := ValidateAction(game.StatePlayerTurn, game.PhaseMain, game.ActionDrawCard, "p1", "p2", &gs)
	if err == nil {
		t.Fatal("Expected rejection for the non-current player")
	}
	var vErr *game.ActionValidationError
	if !errors.As(err, &vErr) || vErr.Reason != game.ReasonNotPlayerTurn {
		t.Errorf("Expected NOT_PLAYER_TURN, got %v", err)
	}

	if err := ValidateAction(game.StatePlayerTurn, game.PhaseMain, game.ActionAttack, "p1", "p1", &gs); err != nil {
		t.Errorf("Expected attack legal in MAIN for the current player, got %v", err)
	}
	if err := ValidateAction(game.StatePlayerTurn, game.PhaseDraw, game.ActionAttack, "p1", "p1", &gs); err == nil {
		t.Error("Expected attack rejected in DRAW phase")
	}
}

func TestValidateAction_CrossPlayerExceptions(t *testing.T) {
	// Opponent lost their active: they may promote on p1's turn.
	p1Active := activeInstance("i1", "machop", 50, 50)
	gs := twoPlayerState(&p1Active, nil)
	err := ValidateAction(game.StatePlayerTurn, game.PhaseMain, game.ActionSetActivePokemon, "p1", "p2", &gs)
	if err != nil {
		t.Errorf("Expected forced promotion allowed cross-player, got %v", err)
	}

	// A pending coin flip lets either player act on it.
	p2Active := activeInstance("i2", "machop", 50, 50)
	withFlip := twoPlayerState(&p1Active, &p2Active).
		WithCoinFlip(coinflip.NewStatusCheckState("i1", cards.StatusAsleep))
	err = ValidateAction(game.StatePlayerTurn, game.PhaseMain, game.ActionGenerateCoinFlip, "p1", "p2", &withFlip)
	if err != nil {
		t.Errorf("Expected coin flip participation allowed cross-player, got %v", err)
	}

	// Without either condition the opponent stays locked out.
	plain := twoPlayerState(&p1Active, &p2Active)
	err = ValidateAction(game.StatePlayerTurn, game.PhaseMain, game.ActionSetActivePokemon, "p1", "p2", &plain)
	if err == nil {
		t.Error("Expected promotion rejected while an active pokemon stands")
	}
}

func TestNextPhase(t *testing.T) {
	if phase, ok := NextPhase(game.PhaseDraw, game.ActionDrawCard); !ok || phase != game.PhaseMain {
		t.Errorf("Expected DRAW -> MAIN, got %s/%v", phase, ok)
	}
	if phase, ok := NextPhase(game.PhaseMain, game.ActionPlayPokemon); !ok || phase != game.PhaseMain {
		t.Errorf("Expected MAIN to persist, got %s/%v", phase, ok)
	}
	if phase, ok := NextPhase(game.PhaseAttack, game.ActionAttack); !ok || phase != game.PhaseEnd {
		t.Errorf("Expected ATTACK -> END, got %s/%v", phase, ok)
	}
	if _, ok := NextPhase(game.PhaseMain, game.ActionEndTurn); ok {
		t.Error("Expected END_TURN to close the turn")
	}
}

func TestCheckWinConditions_PriorityOrder(t *testing.T) {
	active := activeInstance("i1", "machop", 50, 50)

	// Prize-out outranks everything else.
	p1 := game.PlayerGameState{PlayerID: "p1", Deck: []string{"a"}, PrizeCards: nil}.WithActive(&active)
	p2 := game.PlayerGameState{PlayerID: "p2", PrizeCards: []string{"x"}}
	winner, reason, over := CheckWinConditions(p1, p2)
	if !over || winner != "p1" || reason != WinByPrizeCards {
		t.Errorf("Expected p1 wins by prizes, got %s/%s/%v", winner, reason, over)
	}

	// No pokemon in play beats deck-out.
	p1 = game.PlayerGameState{PlayerID: "p1", Deck: []string{"a"}, PrizeCards: []string{"x"}}.WithActive(&active)
	p2 = game.PlayerGameState{PlayerID: "p2", PrizeCards: []string{"x"}}
	winner, reason, over = CheckWinConditions(p1, p2)
	if !over || winner != "p1" || reason != WinByNoPokemonInPlay {
		t.Errorf("Expected p1 wins by board wipe, got %s/%s/%v", winner, reason, over)
	}

	// Nothing met: match continues.
	p2 = p2.WithActive(&active)
	p2.Deck = []string{"b"}
	if _, _, over = CheckWinConditions(p1, p2); over {
		t.Error("Expected no winner on a live board")
	}
}
