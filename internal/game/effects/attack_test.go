package effects

import (
	"context"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func attackCatalog() cards.StaticLookup {
	return cards.StaticLookup{
		"charmander": {
			CardID:   "charmander",
			Name:     "Charmander",
			Category: cards.CategoryPokemon,
			Stage:    cards.StageBasic,
			HP:       50,
			Type:     cards.EnergyFire,
			Attacks: []cards.Attack{
				{
					Name:       "Ember",
					Cost:       []cards.EnergyType{cards.EnergyFire, cards.EnergyColorless},
					BaseDamage: 30,
					Text:       "Discard 1 Fire Energy attached to this Pokemon.",
					Effects: []cards.AttackEffect{
						cards.DiscardEnergyCostEffect{Count: 1, Energy: cards.EnergyFire},
					},
				},
				{
					Name:       "Flip Jab",
					Cost:       []cards.EnergyType{cards.EnergyFire},
					BaseDamage: 0,
					Text:       "Flip 2 coins. This attack does 20 damage times the number of heads.",
					Effects: []cards.AttackEffect{
						cards.CoinFlipDamageEffect{Amount: 20},
					},
				},
			},
		},
		"stunner": {
			CardID:   "stunner",
			Name:     "Stunner",
			Category: cards.CategoryPokemon,
			Stage:    cards.StageBasic,
			HP:       50,
			Type:     cards.EnergyLightning,
			Attacks: []cards.Attack{
				{
					Name:       "Numbing Bolt",
					Cost:       []cards.EnergyType{cards.EnergyLightning},
					BaseDamage: 10,
					Effects: []cards.AttackEffect{
						cards.AttackStatusEffect{Status: cards.StatusParalyzed},
					},
				},
			},
		},
		"leafling": {
			CardID:      "leafling",
			Name:        "Leafling",
			Category:    cards.CategoryPokemon,
			Stage:       cards.StageBasic,
			HP:          60,
			Type:        cards.EnergyGrass,
			Weakness:    cards.EnergyFire,
			RetreatCost: 1,
		},
		"rockhide": {
			CardID:     "rockhide",
			Name:       "Rockhide",
			Category:   cards.CategoryPokemon,
			Stage:      cards.StageBasic,
			HP:         70,
			Type:       cards.EnergyFighting,
			Resistance: cards.EnergyFire,
		},
		"fire-energy": {
			CardID:         "fire-energy",
			Category:       cards.CategoryEnergy,
			ProvidesEnergy: cards.EnergyFire,
		},
		"lightning-energy": {
			CardID:         "lightning-energy",
			Category:       cards.CategoryEnergy,
			ProvidesEnergy: cards.EnergyLightning,
		},
	}
}

func newAttackPipeline() *AttackPipeline {
	catalog := attackCatalog()
	ruleEngine := rules.NewCardRuleEngine(catalog)
	return NewAttackPipeline(
		catalog,
		conditions.NewEvaluator(catalog),
		ruleEngine,
		rules.NewBetweenTurnsEngine(ruleEngine),
		zap.NewNop(),
	)
}

func attackState(attackerCardID string, attackerEnergy []string, defenderCardID string, defenderHP int) game.GameState {
	attacker := game.CardInstance{
		InstanceID:     "att-1",
		CardID:         attackerCardID,
		Position:       game.PositionActive,
		CurrentHP:      50,
		MaxHP:          50,
		AttachedEnergy: attackerEnergy,
	}
	defender := game.CardInstance{
		InstanceID: "def-1",
		CardID:     defenderCardID,
		Position:   game.PositionActive,
		CurrentHP:  defenderHP,
		MaxHP:      defenderHP,
	}
	p1 := game.PlayerGameState{PlayerID: "p1", Deck: []string{"fire-energy"}, PrizeCards: []string{"x"}}.
		WithActive(&attacker)
	p2 := game.PlayerGameState{PlayerID: "p2", Deck: []string{"fire-energy"}, PrizeCards: []string{"x", "y"}}.
		WithActive(&defender)
	return game.NewGameState(p1, p2, "p1")
}

func TestAttack_WeaknessDoubles(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"fire-energy", "fire-energy"}, "leafling", 90)

	out, pending, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if pending {
		t.Fatal("Expected no coin flip for Ember")
	}
	if out.Player2.ActivePokemon.CurrentHP != 30 {
		t.Errorf("Expected 60 damage (30 doubled by weakness), got HP %d",
			out.Player2.ActivePokemon.CurrentHP)
	}
}

func TestAttack_ResistanceReduces(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"fire-energy", "fire-energy"}, "rockhide", 70)

	out, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Player2.ActivePokemon.CurrentHP != 70 {
		t.Errorf("Expected 0 damage (30 - 30 resistance), got HP %d",
			out.Player2.ActivePokemon.CurrentHP)
	}
}

func TestAttack_EnergyCostEnforced(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"lightning-energy"}, "leafling", 60)

	_, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err == nil {
		t.Fatal("Expected energy cost violation")
	}
}

func TestAttack_BlockedByStatus(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"fire-energy", "fire-energy"}, "leafling", 60)
	asleep := gs.Player1.ActivePokemon.WithStatus(cards.StatusAsleep)
	p1 := gs.Player1.WithActive(&asleep)
	gs, _ = gs.WithPlayerState("p1", p1)

	if _, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0}); err == nil {
		t.Error("Expected sleeping attacker rejected")
	}
}

func TestAttack_CoinFlipTwoPhase(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"fire-energy"}, "leafling", 60)

	out, pending, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 1})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !pending {
		t.Fatal("Expected a pending coin flip sequence")
	}
	flip := out.CoinFlip
	if flip == nil || flip.Context != coinflip.ContextAttack || flip.AttackIndex != 1 {
		t.Fatalf("Expected ATTACK flip for index 1, got %+v", flip)
	}

	// Resubmitting before the flips settle is rejected.
	if _, _, err := p.Execute(context.Background(), out, "p1", game.ActionData{AttackIndex: 1}); err == nil {
		t.Fatal("Expected rejection while the sequence is unsettled")
	}

	settled := *flip
	for _, r := range []coinflip.Result{coinflip.Heads, coinflip.Heads} {
		settled, err = settled.WithResult(r)
		if err != nil {
			t.Fatalf("WithResult: %v", err)
		}
	}
	settled, _ = settled.WithApproval(1)
	settled, _ = settled.WithApproval(2)
	out = out.WithCoinFlip(&settled)

	final, pending, err := p.Execute(context.Background(), out, "p1", game.ActionData{AttackIndex: 1})
	if err != nil {
		t.Fatalf("Execute after settle failed: %v", err)
	}
	if pending {
		t.Fatal("Expected attack resolved after settled flips")
	}
	// 2 heads at 20 each, doubled by fire weakness: enough to knock out.
	if final.Player2.ActivePokemon != nil {
		t.Errorf("Expected defender knocked out, got %+v", final.Player2.ActivePokemon)
	}
	if final.CoinFlip != nil {
		t.Error("Expected consumed flip cleared")
	}
}

func TestAttack_ParalysisSideEffect(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("stunner", []string{"lightning-energy"}, "leafling", 60)

	out, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	defender := out.Player2.ActivePokemon
	if !defender.HasStatus(cards.StatusParalyzed) {
		t.Fatal("Expected defender paralyzed")
	}
	if defender.ParalysisClearsAtTurn != gs.TurnNumber+1 {
		t.Errorf("Expected paralysis scheduled to clear at turn %d, got %d",
			gs.TurnNumber+1, defender.ParalysisClearsAtTurn)
	}
}

func TestAttack_DiscardCostDefaultsToFirstEligible(t *testing.T) {
	p := newAttackPipeline()
	// 90 HP keeps the defender alive so the post-attack board is inspectable.
	gs := attackState("charmander", []string{"fire-energy", "fire-energy"}, "leafling", 90)

	out, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := len(out.Player1.ActivePokemon.AttachedEnergy); got != 1 {
		t.Errorf("Expected 1 energy left after the discard cost, got %d", got)
	}
	if len(out.Player1.DiscardPile) != 1 {
		t.Errorf("Expected discarded energy in the pile, got %v", out.Player1.DiscardPile)
	}
}

func TestAttack_KnockoutAwardsPrize(t *testing.T) {
	p := newAttackPipeline()
	gs := attackState("charmander", []string{"fire-energy", "fire-energy"}, "leafling", 60)

	out, _, err := p.Execute(context.Background(), gs, "p1", game.ActionData{AttackIndex: 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Player2.ActivePokemon != nil {
		t.Fatal("Expected knocked-out defender removed")
	}
	if len(out.Player1.PrizeCards) != 0 || len(out.Player1.Hand) != 1 {
		t.Errorf("Expected attacker to take their prize, prizes=%d hand=%d",
			len(out.Player1.PrizeCards), len(out.Player1.Hand))
	}
}
