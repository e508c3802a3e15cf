package cards

import (
	"encoding/json"
	"fmt"
)

// Effect variants are interfaces, so templates cross process boundaries
// (cache, database) as tagged envelopes: {"type": ..., "data": {...}}.

type effectEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func marshalEnvelope(tag string, v any) (effectEnvelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return effectEnvelope{}, err
	}
	return effectEnvelope{Type: tag, Data: data}, nil
}

func decodeInto[T any](env effectEnvelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s effect: %w", env.Type, err)
	}
	return v, nil
}

func marshalTrainerEffects(effects []TrainerEffect) ([]effectEnvelope, error) {
	envs := make([]effectEnvelope, 0, len(effects))
	for _, e := range effects {
		env, err := marshalEnvelope(string(e.TrainerEffectType()), e)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func unmarshalTrainerEffect(env effectEnvelope) (TrainerEffect, error) {
	switch TrainerEffectType(env.Type) {
	case TrainerDiscardHand:
		v, err := decodeInto[DiscardHandEffect](env)
		return v, err
	case TrainerDiscardFromHand:
		v, err := decodeInto[DiscardFromHandEffect](env)
		return v, err
	case TrainerRetrieveEnergy:
		v, err := decodeInto[RetrieveEnergyEffect](env)
		return v, err
	case TrainerSearchDeck:
		v, err := decodeInto[SearchDeckEffect](env)
		return v, err
	case TrainerHeal:
		v, err := decodeInto[HealEffect](env)
		return v, err
	case TrainerRemoveEnergy:
		v, err := decodeInto[RemoveEnergyEffect](env)
		return v, err
	case TrainerCureStatus:
		v, err := decodeInto[CureStatusEffect](env)
		return v, err
	case TrainerSwitchPokemon:
		v, err := decodeInto[SwitchPokemonEffect](env)
		return v, err
	case TrainerDrawCards:
		v, err := decodeInto[DrawCardsEffect](env)
		return v, err
	case TrainerShuffleDeck:
		v, err := decodeInto[ShuffleDeckEffect](env)
		return v, err
	}
	return nil, fmt.Errorf("unknown trainer effect type %q", env.Type)
}

func marshalAbilityEffects(effects []AbilityEffect) ([]effectEnvelope, error) {
	envs := make([]effectEnvelope, 0, len(effects))
	for _, e := range effects {
		env, err := marshalEnvelope(string(e.AbilityEffectType()), e)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func unmarshalAbilityEffect(env effectEnvelope) (AbilityEffect, error) {
	switch AbilityEffectType(env.Type) {
	case AbilityEnergyAcceleration:
		v, err := decodeInto[EnergyAccelerationEffect](env)
		return v, err
	case AbilityHeal:
		v, err := decodeInto[AbilityHealEffect](env)
		return v, err
	case AbilityDrawCards:
		v, err := decodeInto[AbilityDrawEffect](env)
		return v, err
	case AbilitySearchDeck:
		v, err := decodeInto[AbilitySearchEffect](env)
		return v, err
	case AbilityApplyStatus:
		v, err := decodeInto[AbilityStatusEffect](env)
		return v, err
	}
	return nil, fmt.Errorf("unknown ability effect type %q", env.Type)
}

func marshalAttackEffects(effects []AttackEffect) ([]effectEnvelope, error) {
	envs := make([]effectEnvelope, 0, len(effects))
	for _, e := range effects {
		env, err := marshalEnvelope(string(e.AttackEffectType()), e)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func unmarshalAttackEffect(env effectEnvelope) (AttackEffect, error) {
	switch AttackEffectType(env.Type) {
	case AttackDamage:
		v, err := decodeInto[DamageEffect](env)
		return v, err
	case AttackCoinFlipDamage:
		v, err := decodeInto[CoinFlipDamageEffect](env)
		return v, err
	case AttackApplyStatus:
		v, err := decodeInto[AttackStatusEffect](env)
		return v, err
	case AttackDiscardEnergyCost:
		v, err := decodeInto[DiscardEnergyCostEffect](env)
		return v, err
	case AttackSelfDamage:
		v, err := decodeInto[SelfDamageEffect](env)
		return v, err
	case AttackDamagePrevention:
		v, err := decodeInto[DamagePreventionEffect](env)
		return v, err
	case AttackDamageReduction:
		v, err := decodeInto[DamageReductionEffect](env)
		return v, err
	case AttackHealSelf:
		v, err := decodeInto[HealSelfEffect](env)
		return v, err
	}
	return nil, fmt.Errorf("unknown attack effect type %q", env.Type)
}

type attackJSON struct {
	Name       string           `json:"name"`
	Cost       []EnergyType     `json:"cost"`
	BaseDamage int              `json:"baseDamage"`
	Text       string           `json:"text,omitempty"`
	Effects    []effectEnvelope `json:"effects,omitempty"`
}

type abilityJSON struct {
	AbilityID   string           `json:"abilityId"`
	Name        string           `json:"name"`
	Text        string           `json:"text,omitempty"`
	OncePerTurn bool             `json:"oncePerTurn,omitempty"`
	Effects     []effectEnvelope `json:"effects,omitempty"`
}

type templateJSON struct {
	CardID         string           `json:"cardId"`
	Name           string           `json:"name"`
	Category       Category         `json:"category"`
	Description    string           `json:"description,omitempty"`
	Stage          Stage            `json:"stage,omitempty"`
	EvolvesFrom    string           `json:"evolvesFrom,omitempty"`
	HP             int              `json:"hp,omitempty"`
	Type           EnergyType       `json:"type,omitempty"`
	Weakness       EnergyType       `json:"weakness,omitempty"`
	Resistance     EnergyType       `json:"resistance,omitempty"`
	RetreatCost    int              `json:"retreatCost,omitempty"`
	Attacks        []attackJSON     `json:"attacks,omitempty"`
	Abilities      []abilityJSON    `json:"abilities,omitempty"`
	Rules          []CardRule       `json:"rules,omitempty"`
	TrainerEffects []effectEnvelope `json:"trainerEffects,omitempty"`
	ProvidesEnergy EnergyType       `json:"providesEnergy,omitempty"`
}

// MarshalJSON encodes the template with tagged effect envelopes.
func (t CardTemplate) MarshalJSON() ([]byte, error) {
	out := templateJSON{
		CardID:         t.CardID,
		Name:           t.Name,
		Category:       t.Category,
		Description:    t.Description,
		Stage:          t.Stage,
		EvolvesFrom:    t.EvolvesFrom,
		HP:             t.HP,
		Type:           t.Type,
		Weakness:       t.Weakness,
		Resistance:     t.Resistance,
		RetreatCost:    t.RetreatCost,
		Rules:          t.Rules,
		ProvidesEnergy: t.ProvidesEnergy,
	}

	for _, a := range t.Attacks {
		effects, err := marshalAttackEffects(a.Effects)
		if err != nil {
			return nil, err
		}
		out.Attacks = append(out.Attacks, attackJSON{
			Name:       a.Name,
			Cost:       a.Cost,
			BaseDamage: a.BaseDamage,
			Text:       a.Text,
			Effects:    effects,
		})
	}
	for _, a := range t.Abilities {
		effects, err := marshalAbilityEffects(a.Effects)
		if err != nil {
			return nil, err
		}
		out.Abilities = append(out.Abilities, abilityJSON{
			AbilityID:   a.AbilityID,
			Name:        a.Name,
			Text:        a.Text,
			OncePerTurn: a.OncePerTurn,
			Effects:     effects,
		})
	}
	var err error
	if out.TrainerEffects, err = marshalTrainerEffects(t.TrainerEffects); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes tagged effect envelopes back into variant structs.
func (t *CardTemplate) UnmarshalJSON(data []byte) error {
	var in templateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = CardTemplate{
		CardID:         in.CardID,
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		Stage:          in.Stage,
		EvolvesFrom:    in.EvolvesFrom,
		HP:             in.HP,
		Type:           in.Type,
		Weakness:       in.Weakness,
		Resistance:     in.Resistance,
		RetreatCost:    in.RetreatCost,
		Rules:          in.Rules,
		ProvidesEnergy: in.ProvidesEnergy,
	}

	for _, a := range in.Attacks {
		attack := Attack{
			Name:       a.Name,
			Cost:       a.Cost,
			BaseDamage: a.BaseDamage,
			Text:       a.Text,
		}
		for _, env := range a.Effects {
			eff, err := unmarshalAttackEffect(env)
			if err != nil {
				return err
			}
			attack.Effects = append(attack.Effects, eff)
		}
		t.Attacks = append(t.Attacks, attack)
	}
	for _, a := range in.Abilities {
		ability := Ability{
			AbilityID:   a.AbilityID,
			Name:        a.Name,
			Text:        a.Text,
			OncePerTurn: a.OncePerTurn,
		}
		for _, env := range a.Effects {
			eff, err := unmarshalAbilityEffect(env)
			if err != nil {
				return err
			}
			ability.Effects = append(ability.Effects, eff)
		}
		t.Abilities = append(t.Abilities, ability)
	}
	for _, env := range in.TrainerEffects {
		eff, err := unmarshalTrainerEffect(env)
		if err != nil {
			return err
		}
		t.TrainerEffects = append(t.TrainerEffects, eff)
	}
	return nil
}
