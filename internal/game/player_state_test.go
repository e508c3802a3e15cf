package game

import (
	"testing"
)

func benchOf(n int) []CardInstance {
	out := make([]CardInstance, n)
	for i := range out {
		out[i] = CardInstance{
			InstanceID: string(BenchPosition(i)) + "-instance",
			Position:   BenchPosition(i),
			CurrentHP:  50,
			MaxHP:      50,
		}
	}
	return out
}

func TestPlayerState_BenchRenumbering(t *testing.T) {
	ps := PlayerGameState{PlayerID: "p1", Bench: benchOf(3)}

	next, err := ps.WithBenchRemoved(0)
	if err != nil {
		t.Fatalf("WithBenchRemoved failed: %v", err)
	}
	if len(next.Bench) != 2 {
		t.Fatalf("Expected 2 bench pokemon, got %d", len(next.Bench))
	}
	for i, b := range next.Bench {
		if b.Position != BenchPosition(i) {
			t.Errorf("Expected bench slot %d at %s, got %s", i, BenchPosition(i), b.Position)
		}
	}
	if len(ps.Bench) != 3 {
		t.Error("Expected receiver bench unchanged")
	}
}

func TestPlayerState_BenchFull(t *testing.T) {
	ps := PlayerGameState{PlayerID: "p1", Bench: benchOf(MaxBenchSize)}
	if _, err := ps.WithBenchAdded(CardInstance{InstanceID: "extra"}); err == nil {
		t.Error("Expected error when adding to a full bench")
	}
}

func TestPlayerState_DrawsStopAtEmptyDeck(t *testing.T) {
	ps := PlayerGameState{PlayerID: "p1", Deck: []string{"a", "b"}}
	next, drawn := ps.WithCardsDrawn(5)
	if len(drawn) != 2 {
		t.Errorf("Expected 2 cards drawn, got %d", len(drawn))
	}
	if len(next.Deck) != 0 || len(next.Hand) != 2 {
		t.Errorf("Expected empty deck and 2-card hand, got deck=%d hand=%d", len(next.Deck), len(next.Hand))
	}
}

func TestPlayerState_PrizeFlow(t *testing.T) {
	ps := PlayerGameState{PlayerID: "p1", Deck: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}

	withPrizes, err := ps.WithPrizesSet(6)
	if err != nil {
		t.Fatalf("WithPrizesSet failed: %v", err)
	}
	if len(withPrizes.PrizeCards) != 6 || len(withPrizes.Deck) != 2 {
		t.Fatalf("Expected 6 prizes and 2 deck cards, got %d/%d",
			len(withPrizes.PrizeCards), len(withPrizes.Deck))
	}

	taken, err := withPrizes.WithPrizeTaken()
	if err != nil {
		t.Fatalf("WithPrizeTaken failed: %v", err)
	}
	if len(taken.PrizeCards) != 5 || len(taken.Hand) != 1 {
		t.Errorf("Expected prize moved to hand, got prizes=%d hand=%d",
			len(taken.PrizeCards), len(taken.Hand))
	}

	empty := PlayerGameState{PlayerID: "p1"}
	if _, err := empty.WithPrizeTaken(); err == nil {
		t.Error("Expected error taking a prize from an empty pile")
	}
}

func TestPlayerState_ActivePositionForced(t *testing.T) {
	instance := CardInstance{InstanceID: "i1", Position: PositionBench2}
	ps := PlayerGameState{PlayerID: "p1"}.WithActive(&instance)
	if ps.ActivePokemon.Position != PositionActive {
		t.Errorf("Expected ACTIVE position, got %s", ps.ActivePokemon.Position)
	}
}
