package rules

import (
	"context"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

func evolutionFixture(damage int) game.GameState {
	active := game.CardInstance{
		InstanceID:     "active-1",
		CardID:         "machop",
		Position:       game.PositionActive,
		CurrentHP:      50 - damage,
		MaxHP:          50,
		AttachedEnergy: []string{"e1"},
	}
	p1 := game.PlayerGameState{
		PlayerID:   "p1",
		Hand:       []string{"machoke"},
		Deck:       []string{"machop"},
		PrizeCards: []string{"x"},
	}.WithActive(&active)
	p2 := game.PlayerGameState{PlayerID: "p2", Deck: []string{"machop"}, PrizeCards: []string{"x"}}
	gs := game.NewGameState(p1, p2, "p1")
	gs.TurnNumber = 3
	return gs
}

func TestEvolution_DamageCarriesAsAbsoluteDelta(t *testing.T) {
	engine := NewEvolutionEngine(testCatalog())
	gs := evolutionFixture(20)

	out, err := engine.Execute(context.Background(), gs, "p1", game.PositionActive, "machoke")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	evolved := out.Player1.ActivePokemon
	if evolved.CardID != "machoke" {
		t.Fatalf("Expected machoke, got %s", evolved.CardID)
	}
	if evolved.InstanceID != "active-1" {
		t.Error("Expected instance identity preserved")
	}
	if evolved.MaxHP != 80 || evolved.CurrentHP != 60 {
		t.Errorf("Expected 60/80 HP after carrying 20 damage, got %d/%d",
			evolved.CurrentHP, evolved.MaxHP)
	}
	if !evolved.HasEnergyAttached("e1") {
		t.Error("Expected attached energy carried forward")
	}
	if out.Player1.HasInHand("machoke") {
		t.Error("Expected evolution card removed from hand")
	}
}

func TestEvolution_ChainKeepsOldestLast(t *testing.T) {
	base := game.CardInstance{InstanceID: "i1", CardID: "stage1", CurrentHP: 60, MaxHP: 60,
		EvolutionChain: []string{"basic"}}
	evolved := Evolve(base, &cards.CardTemplate{CardID: "stage2", HP: 90}, 4)

	if len(evolved.EvolutionChain) != 2 {
		t.Fatalf("Expected chain of 2, got %v", evolved.EvolutionChain)
	}
	if evolved.EvolutionChain[0] != "stage1" || evolved.EvolutionChain[1] != "basic" {
		t.Errorf("Expected [stage1 basic], got %v", evolved.EvolutionChain)
	}
	if evolved.EvolvedAtTurn != 4 {
		t.Errorf("Expected evolution turn recorded, got %d", evolved.EvolvedAtTurn)
	}
}

func TestEvolution_RevivesZeroHPWhenDamageAllows(t *testing.T) {
	fainted := game.CardInstance{InstanceID: "i1", CardID: "machop", CurrentHP: 0, MaxHP: 50}
	evolved := Evolve(fainted, &cards.CardTemplate{CardID: "machoke", HP: 80}, 2)
	if evolved.CurrentHP != 30 {
		t.Errorf("Expected 30 HP (80 max, 50 damage), got %d", evolved.CurrentHP)
	}
	if evolved.IsKnockedOut() {
		t.Error("Expected evolution to bring the pokemon back")
	}
}

func TestEvolution_ClearsStatuses(t *testing.T) {
	engine := NewEvolutionEngine(testCatalog())
	gs := evolutionFixture(0)
	poisoned := gs.Player1.ActivePokemon.WithStatus(cards.StatusPoisoned)
	p1 := gs.Player1.WithActive(&poisoned)
	gs, _ = gs.WithPlayerState("p1", p1)

	out, err := engine.Execute(context.Background(), gs, "p1", game.PositionActive, "machoke")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(out.Player1.ActivePokemon.StatusEffects) != 0 {
		t.Errorf("Expected statuses cleared, got %v", out.Player1.ActivePokemon.StatusEffects)
	}
}

func TestEvolution_Restrictions(t *testing.T) {
	engine := NewEvolutionEngine(testCatalog())

	// Same-turn evolution of a pokemon that just entered play.
	gs := evolutionFixture(0)
	fresh := *gs.Player1.ActivePokemon
	fresh.EvolvedAtTurn = gs.TurnNumber
	p1 := gs.Player1.WithActive(&fresh)
	blocked, _ := gs.WithPlayerState("p1", p1)
	if _, err := engine.Execute(context.Background(), blocked, "p1", game.PositionActive, "machoke"); err == nil {
		t.Error("Expected same-turn evolution rejected")
	}

	// Stage mismatch.
	gs = evolutionFixture(0)
	wrongBase := *gs.Player1.ActivePokemon
	wrongBase.CardID = "floaty"
	p1 = gs.Player1.WithActive(&wrongBase)
	mismatched, _ := gs.WithPlayerState("p1", p1)
	if _, err := engine.Execute(context.Background(), mismatched, "p1", game.PositionActive, "machoke"); err == nil {
		t.Error("Expected evolution line mismatch rejected")
	}

	// A basic with no lineage is not an evolution card, whatever the target.
	gs = evolutionFixture(0)
	withBasic, _ := gs.WithPlayerState("p1", gs.Player1.WithHand([]string{"floaty"}))
	if _, err := engine.Execute(context.Background(), withBasic, "p1", game.PositionActive, "floaty"); err == nil {
		t.Error("Expected a basic pokemon rejected as an evolution card")
	}

	// Card not in hand.
	gs = evolutionFixture(0)
	noHand, _ := gs.WithPlayerState("p1", gs.Player1.WithHand(nil))
	if _, err := engine.Execute(context.Background(), noHand, "p1", game.PositionActive, "machoke"); err == nil {
		t.Error("Expected missing hand card rejected")
	}
}
