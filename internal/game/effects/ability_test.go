package effects

import (
	"context"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func abilityCatalog() cards.StaticLookup {
	return cards.StaticLookup{
		"charger": {
			CardID:   "charger",
			Name:     "Charger",
			Category: cards.CategoryPokemon,
			Stage:    cards.StageBasic,
			HP:       60,
			Type:     cards.EnergyWater,
			Abilities: []cards.Ability{
				{
					AbilityID:   "rain-dance",
					Name:        "Rain Dance",
					OncePerTurn: true,
					Effects: []cards.AbilityEffect{
						cards.EnergyAccelerationEffect{
							Source: cards.SourceHand,
							Energy: cards.EnergyWater,
							Count:  1,
							Target: cards.TargetSelf,
						},
					},
				},
			},
		},
		"oracle": {
			CardID:   "oracle",
			Name:     "Oracle",
			Category: cards.CategoryPokemon,
			Stage:    cards.StageBasic,
			HP:       50,
			Type:     cards.EnergyPsychic,
			Rules: []cards.CardRule{
				{Type: cards.RuleOncePerGame, Priority: cards.PriorityMedium},
			},
			Abilities: []cards.Ability{
				{
					AbilityID: "foresight",
					Name:      "Foresight",
					Effects: []cards.AbilityEffect{
						cards.AbilityDrawEffect{Count: 2},
					},
				},
			},
		},
		"water-energy": {
			CardID:         "water-energy",
			Category:       cards.CategoryEnergy,
			ProvidesEnergy: cards.EnergyWater,
		},
	}
}

func newAbilityPipeline() *AbilityPipeline {
	catalog := abilityCatalog()
	return NewAbilityPipeline(
		catalog,
		conditions.NewEvaluator(catalog),
		rules.NewCardRuleEngine(catalog),
		zap.NewNop(),
	)
}

func abilityState(activeCardID string, hand []string) game.GameState {
	active := game.CardInstance{
		InstanceID: "src-1",
		CardID:     activeCardID,
		Position:   game.PositionActive,
		CurrentHP:  60,
		MaxHP:      60,
	}
	p1 := game.PlayerGameState{
		PlayerID:   "p1",
		Hand:       hand,
		Deck:       []string{"water-energy", "water-energy", "water-energy"},
		PrizeCards: []string{"x"},
	}.WithActive(&active)
	p2 := game.PlayerGameState{PlayerID: "p2", Deck: []string{"water-energy"}, PrizeCards: []string{"x"}}
	return game.NewGameState(p1, p2, "p1")
}

func TestAbility_EnergyAccelerationFromHand(t *testing.T) {
	p := newAbilityPipeline()
	gs := abilityState("charger", []string{"water-energy"})

	out, err := p.Execute(context.Background(), gs, "p1", game.ActionData{
		CardID:          "charger",
		SelectedCardIDs: []string{"water-energy"},
	})
	require.NoError(t, err)

	assert.True(t, out.Player1.ActivePokemon.HasEnergyAttached("water-energy"))
	assert.Empty(t, out.Player1.Hand)
	assert.True(t, out.AbilityUsedThisTurn("p1", "charger"))
}

func TestAbility_OncePerTurnEnforced(t *testing.T) {
	p := newAbilityPipeline()
	gs := abilityState("charger", []string{"water-energy", "water-energy"})

	out, err := p.Execute(context.Background(), gs, "p1", game.ActionData{
		CardID:          "charger",
		SelectedCardIDs: []string{"water-energy"},
	})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), out, "p1", game.ActionData{
		CardID:          "charger",
		SelectedCardIDs: []string{"water-energy"},
	})
	assert.Error(t, err, "second use in the same turn must be rejected")

	// A new turn resets the restriction.
	fresh := out.WithTurnAdvanced().WithTurnAdvanced()
	_, err = p.Execute(context.Background(), fresh, "p1", game.ActionData{
		CardID:          "charger",
		SelectedCardIDs: []string{"water-energy"},
	})
	assert.NoError(t, err)
}

func TestAbility_OncePerGameEnforced(t *testing.T) {
	p := newAbilityPipeline()
	gs := abilityState("oracle", nil)

	out, err := p.Execute(context.Background(), gs, "p1", game.ActionData{CardID: "oracle"})
	require.NoError(t, err)
	assert.Len(t, out.Player1.Hand, 2)

	// Record the use in history the way the match engine does, then advance
	// several turns: the rule still blocks.
	out = out.WithActionAppended(game.ActionSummary{
		PlayerID:   "p1",
		Type:       game.ActionUseAbility,
		TurnNumber: out.TurnNumber,
		Data:       game.ActionData{CardID: "oracle"},
	})
	later := out.WithTurnAdvanced().WithTurnAdvanced()
	_, err = p.Execute(context.Background(), later, "p1", game.ActionData{CardID: "oracle"})
	assert.Error(t, err, "once per game means once per game")
}

func TestAbility_RequiresInPlaySource(t *testing.T) {
	p := newAbilityPipeline()
	gs := abilityState("charger", nil)

	_, err := p.Execute(context.Background(), gs, "p1", game.ActionData{CardID: "oracle"})
	assert.Error(t, err, "ability source must be in play")
}

func TestAbility_InputValidation(t *testing.T) {
	p := newAbilityPipeline()
	gs := abilityState("charger", []string{"water-energy"})

	// Hand-sourced acceleration without a selection is an input error.
	_, err := p.Execute(context.Background(), gs, "p1", game.ActionData{CardID: "charger"})
	var input *game.InputError
	require.ErrorAs(t, err, &input)
	assert.NotEmpty(t, input.Reasons)
}
