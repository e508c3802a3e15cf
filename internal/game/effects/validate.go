// Package effects implements the three effect-execution pipelines (ability,
// trainer, attack). Each pipeline validates the submitted action data against
// the card's declared effects, orders the effects, and applies them through
// the immutable game-state API. Validation always runs to completion before
// any state transformation begins, so a failing action never leaves partial
// mutation behind.
package effects

import (
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

// prefixed prepends the effect index when validating a list of effects so a
// reason can be traced back to the offending effect.
func prefixed(index int, reason string) string {
	return fmt.Sprintf("effect %d: %s", index, reason)
}

// ValidateTrainerInput checks the action data shape against every effect the
// trainer card declares. Returns a flat list of reasons, empty when valid.
func ValidateTrainerInput(effects []cards.TrainerEffect, data game.ActionData) []string {
	var reasons []string
	for i, effect := range effects {
		switch e := effect.(type) {
		case cards.DiscardFromHandEffect:
			if len(data.SelectedCardIDs) > e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"selected %d cards to discard, effect allows %d", len(data.SelectedCardIDs), e.Count)))
			}
		case cards.SearchDeckEffect:
			if len(data.SelectedCardIDs) > e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"selected %d cards, search allows up to %d", len(data.SelectedCardIDs), e.Count)))
			}
		case cards.RetrieveEnergyEffect:
			if len(data.SelectedCardIDs) > e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"selected %d cards, retrieval allows up to %d", len(data.SelectedCardIDs), e.Count)))
			}
		case cards.HealEffect:
			if e.Target == cards.TargetOwnPokemon && data.TargetInstanceID == "" {
				reasons = append(reasons, prefixed(i, "targetInstanceId required to heal a chosen pokemon"))
			}
		case cards.SwitchPokemonEffect:
			if !data.Target.IsBench() {
				reasons = append(reasons, prefixed(i, "target bench position required to switch"))
			}
		}
	}
	return reasons
}

// ValidateAbilityInput checks the action data shape against every effect the
// ability declares.
func ValidateAbilityInput(effects []cards.AbilityEffect, data game.ActionData) []string {
	var reasons []string
	for i, effect := range effects {
		switch e := effect.(type) {
		case cards.EnergyAccelerationEffect:
			if e.Target != cards.TargetSelf && data.TargetInstanceID == "" {
				reasons = append(reasons, prefixed(i, "targetPokemon required for energy acceleration"))
			}
			switch e.Source {
			case cards.SourceHand, cards.SourceDiscard, cards.SourceSelf:
				if len(data.SelectedCardIDs) == 0 {
					reasons = append(reasons, prefixed(i, fmt.Sprintf(
						"selectedCardIds required when energy source is %s", e.Source)))
				}
			}
			if len(data.SelectedCardIDs) > e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"selected %d energy cards, effect allows %d", len(data.SelectedCardIDs), e.Count)))
			}
		case cards.AbilityHealEffect:
			if e.Target == cards.TargetOwnPokemon && data.TargetInstanceID == "" {
				reasons = append(reasons, prefixed(i, "targetInstanceId required to heal a chosen pokemon"))
			}
		case cards.AbilitySearchEffect:
			if len(data.SelectedCardIDs) > e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"selected %d cards, search allows up to %d", len(data.SelectedCardIDs), e.Count)))
			}
		}
	}
	return reasons
}

// ValidateAttackInput checks the action data shape against the chosen attack.
func ValidateAttackInput(attack cards.Attack, data game.ActionData) []string {
	var reasons []string
	for i, effect := range attack.Effects {
		if e, ok := effect.(cards.DiscardEnergyCostEffect); ok {
			if len(data.SelectedEnergyIDs) > 0 && len(data.SelectedEnergyIDs) != e.Count {
				reasons = append(reasons, prefixed(i, fmt.Sprintf(
					"attack discards exactly %d energy, %d selected", e.Count, len(data.SelectedEnergyIDs))))
			}
		}
	}
	return reasons
}
