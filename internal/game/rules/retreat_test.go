package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

func retreatFixture(activeCardID string, energy []string) game.GameState {
	active := game.CardInstance{
		InstanceID:     "active-1",
		CardID:         activeCardID,
		Position:       game.PositionActive,
		CurrentHP:      50,
		MaxHP:          50,
		AttachedEnergy: energy,
	}
	benched := game.CardInstance{
		InstanceID: "bench-1",
		CardID:     "machop",
		Position:   game.PositionBench0,
		CurrentHP:  50,
		MaxHP:      50,
	}
	p1 := game.PlayerGameState{PlayerID: "p1", Deck: []string{"machop"}, PrizeCards: []string{"x"}}.
		WithActive(&active)
	p1, _ = p1.WithBenchAdded(benched)
	p2 := game.PlayerGameState{PlayerID: "p2", Deck: []string{"machop"}, PrizeCards: []string{"x"}}
	return game.NewGameState(p1, p2, "p1")
}

func TestRetreat_PaysCostAndSwaps(t *testing.T) {
	engine := NewRetreatEngine(NewCardRuleEngine(testCatalog()))
	gs := retreatFixture("machop", []string{"e1", "e2"})

	out, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, []string{"e1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ps := out.Player1
	if ps.ActivePokemon == nil || ps.ActivePokemon.InstanceID != "bench-1" {
		t.Fatal("Expected bench pokemon promoted to active")
	}
	if len(ps.Bench) != 1 || ps.Bench[0].InstanceID != "active-1" {
		t.Fatal("Expected retreating pokemon on the bench")
	}
	if ps.Bench[0].HasEnergyAttached("e1") {
		t.Error("Expected e1 paid into the discard pile")
	}
	if !ps.Bench[0].HasEnergyAttached("e2") {
		t.Error("Expected e2 to stay attached")
	}
	if len(ps.DiscardPile) != 1 || ps.DiscardPile[0] != "e1" {
		t.Errorf("Expected discard pile [e1], got %v", ps.DiscardPile)
	}
}

func TestRetreat_NegotiatesEnergySelection(t *testing.T) {
	engine := NewRetreatEngine(NewCardRuleEngine(testCatalog()))
	gs := retreatFixture("machop", []string{"e1", "e2"})

	_, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, nil)
	var negotiation *game.NegotiationError
	if !errors.As(err, &negotiation) {
		t.Fatalf("Expected negotiation error, got %v", err)
	}
	if negotiation.Code != game.NegotiationEnergySelectionRequired {
		t.Errorf("Expected ENERGY_SELECTION_REQUIRED, got %s", negotiation.Code)
	}
	if negotiation.Requirement.Amount != 1 {
		t.Errorf("Expected requirement of 1 energy, got %d", negotiation.Requirement.Amount)
	}
	if len(negotiation.AvailableEnergy) != 2 {
		t.Errorf("Expected both attached energy offered, got %v", negotiation.AvailableEnergy)
	}
}

func TestRetreat_FreeRetreatRejectsSelection(t *testing.T) {
	engine := NewRetreatEngine(NewCardRuleEngine(testCatalog()))
	gs := retreatFixture("floaty", []string{"e1"})

	if _, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, []string{"e1"}); err == nil {
		t.Error("Expected free retreat to reject an energy selection")
	}

	out, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(out.Player1.Bench) != 1 || !out.Player1.Bench[0].HasEnergyAttached("e1") {
		t.Error("Expected free retreat to keep energy attached")
	}
}

func TestRetreat_BlockedByStatusAndRule(t *testing.T) {
	engine := NewRetreatEngine(NewCardRuleEngine(testCatalog()))

	gs := retreatFixture("machop", []string{"e1"})
	asleep := gs.Player1.ActivePokemon.WithStatus(cards.StatusAsleep)
	p1 := gs.Player1.WithActive(&asleep)
	gs, _ = gs.WithPlayerState("p1", p1)
	if _, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, []string{"e1"}); err == nil {
		t.Error("Expected sleeping pokemon blocked from retreating")
	}

	anchored := retreatFixture("anchor", []string{"e1", "e2"})
	if _, err := engine.Execute(context.Background(), anchored, "p1", game.PositionBench0, []string{"e1", "e2"}); err == nil {
		t.Error("Expected CANNOT_RETREAT rule to block the retreat")
	}
}

func TestRetreat_ClearsStatusesOnSwap(t *testing.T) {
	engine := NewRetreatEngine(NewCardRuleEngine(testCatalog()))
	gs := retreatFixture("machop", []string{"e1"})
	poisoned := gs.Player1.ActivePokemon.WithStatus(cards.StatusPoisoned)
	p1 := gs.Player1.WithActive(&poisoned)
	gs, _ = gs.WithPlayerState("p1", p1)

	out, err := engine.Execute(context.Background(), gs, "p1", game.PositionBench0, []string{"e1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(out.Player1.Bench[0].StatusEffects) != 0 {
		t.Errorf("Expected statuses shed on retreat, got %v", out.Player1.Bench[0].StatusEffects)
	}
}
