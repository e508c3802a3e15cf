package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateJSON_TaggedEffectVariants(t *testing.T) {
	in := CardTemplate{
		CardID:   "zapfish",
		Name:     "Zapfish",
		Category: CategoryPokemon,
		Stage:    StageBasic,
		HP:       60,
		Type:     EnergyLightning,
		Weakness: EnergyFighting,
		Attacks: []Attack{
			{
				Name:       "Spark",
				Cost:       []EnergyType{EnergyLightning, EnergyColorless},
				BaseDamage: 20,
				Text:       "Flip a coin. If heads, the Defending Pokemon is now Paralyzed.",
				Effects: []AttackEffect{
					AttackStatusEffect{
						Status:  StatusParalyzed,
						Require: []Condition{{Type: ConditionCoinFlipSuccess}},
					},
					DiscardEnergyCostEffect{Count: 1, Energy: EnergyLightning},
				},
			},
		},
		Abilities: []Ability{
			{
				AbilityID:   "static-field",
				Name:        "Static Field",
				OncePerTurn: true,
				Effects: []AbilityEffect{
					EnergyAccelerationEffect{
						Source: SourceDiscard,
						Energy: EnergyLightning,
						Count:  1,
						Target: TargetSelf,
					},
				},
			},
		},
		Rules: []CardRule{
			{Type: RuleDamageReduction, Priority: PriorityMedium, Amount: 10},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out CardTemplate
	require.NoError(t, json.Unmarshal(data, &out))

	require.Len(t, out.Attacks, 1)
	require.Len(t, out.Attacks[0].Effects, 2)
	status, ok := out.Attacks[0].Effects[0].(AttackStatusEffect)
	require.True(t, ok, "expected AttackStatusEffect, got %T", out.Attacks[0].Effects[0])
	assert.Equal(t, StatusParalyzed, status.Status)
	require.Len(t, status.Require, 1)
	assert.Equal(t, ConditionCoinFlipSuccess, status.Require[0].Type)

	discard, ok := out.Attacks[0].Effects[1].(DiscardEnergyCostEffect)
	require.True(t, ok)
	assert.Equal(t, EnergyLightning, discard.Energy)

	require.Len(t, out.Abilities, 1)
	accel, ok := out.Abilities[0].Effects[0].(EnergyAccelerationEffect)
	require.True(t, ok)
	assert.Equal(t, SourceDiscard, accel.Source)
	assert.True(t, out.Abilities[0].OncePerTurn)

	assert.Equal(t, in.Rules, out.Rules)
	assert.Equal(t, in.Weakness, out.Weakness)
}

func TestTemplateJSON_TrainerEffects(t *testing.T) {
	in := CardTemplate{
		CardID:   "oak",
		Name:     "Professor Oak",
		Category: CategoryTrainer,
		TrainerEffects: []TrainerEffect{
			DiscardHandEffect{},
			DrawCardsEffect{Count: 7},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out CardTemplate
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.TrainerEffects, 2)
	assert.Equal(t, TrainerDiscardHand, out.TrainerEffects[0].TrainerEffectType())
	draw, ok := out.TrainerEffects[1].(DrawCardsEffect)
	require.True(t, ok)
	assert.Equal(t, 7, draw.Count)
}

func TestTemplateJSON_UnknownEffectTypeFails(t *testing.T) {
	payload := []byte(`{
		"cardId": "bogus",
		"name": "Bogus",
		"category": "TRAINER",
		"trainerEffects": [{"type": "NOT_A_THING", "data": {}}]
	}`)
	var out CardTemplate
	assert.Error(t, json.Unmarshal(payload, &out))
}
