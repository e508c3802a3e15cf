package rules

import (
	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

// Catalog used across the rules tests.
func testCatalog() cards.StaticLookup {
	return cards.StaticLookup{
		"machop": {
			CardID:      "machop",
			Name:        "Machop",
			Category:    cards.CategoryPokemon,
			Stage:       cards.StageBasic,
			HP:          50,
			Type:        cards.EnergyFighting,
			RetreatCost: 1,
		},
		"machoke": {
			CardID:      "machoke",
			Name:        "Machoke",
			Category:    cards.CategoryPokemon,
			Stage:       cards.StageOne,
			EvolvesFrom: "machop",
			HP:          80,
			Type:        cards.EnergyFighting,
			RetreatCost: 2,
		},
		"floaty": {
			CardID:      "floaty",
			Name:        "Floaty",
			Category:    cards.CategoryPokemon,
			Stage:       cards.StageBasic,
			HP:          40,
			Type:        cards.EnergyWater,
			RetreatCost: 1,
			Rules: []cards.CardRule{
				{Type: cards.RuleFreeRetreat, Priority: cards.PriorityMedium},
			},
		},
		"anchor": {
			CardID:      "anchor",
			Name:        "Anchor",
			Category:    cards.CategoryPokemon,
			Stage:       cards.StageBasic,
			HP:          70,
			Type:        cards.EnergyMetal,
			RetreatCost: 2,
			Rules: []cards.CardRule{
				{Type: cards.RuleCannotRetreat, Priority: cards.PriorityMedium},
			},
		},
		"boss": {
			CardID:   "boss",
			Name:     "Boss",
			Category: cards.CategoryPokemon,
			Stage:    cards.StageBasic,
			HP:       120,
			Type:     cards.EnergyDarkness,
			Rules: []cards.CardRule{
				{Type: cards.RuleExtraPrizeCards, Priority: cards.PriorityMedium, Amount: 1},
			},
		},
		"fighting-energy": {
			CardID:         "fighting-energy",
			Category:       cards.CategoryEnergy,
			ProvidesEnergy: cards.EnergyFighting,
		},
		"water-energy": {
			CardID:         "water-energy",
			Category:       cards.CategoryEnergy,
			ProvidesEnergy: cards.EnergyWater,
		},
	}
}

func activeInstance(id, cardID string, hp, maxHP int) game.CardInstance {
	return game.CardInstance{
		InstanceID: id,
		CardID:     cardID,
		Position:   game.PositionActive,
		CurrentHP:  hp,
		MaxHP:      maxHP,
	}
}

// twoPlayerState builds a minimal in-turn game state with the given actives.
func twoPlayerState(p1Active, p2Active *game.CardInstance) game.GameState {
	p1 := game.PlayerGameState{PlayerID: "p1", Deck: []string{"machop"}, PrizeCards: []string{"x"}}
	p2 := game.PlayerGameState{PlayerID: "p2", Deck: []string{"machop"}, PrizeCards: []string{"x"}}
	if p1Active != nil {
		p1 = p1.WithActive(p1Active)
	}
	if p2Active != nil {
		p2 = p2.WithActive(p2Active)
	}
	return game.NewGameState(p1, p2, "p1")
}
