// Package conditions gates conditional effects against the current game
// state. Evaluation is conjunctive: every listed condition must hold. An
// empty list always evaluates to true (the effect is unconditional).
package conditions

import (
	"context"
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
)

// Evaluator resolves effect conditions. Energy-type checks need the static
// card catalog, supplied via cards.Lookup.
type Evaluator struct {
	lookup cards.Lookup
}

// NewEvaluator creates an evaluator backed by the given card lookup.
func NewEvaluator(lookup cards.Lookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// Evaluate reports whether all conditions hold for the acting player.
// flipResults supplies coin results for COIN_FLIP_* conditions; passing nil
// makes those conditions evaluate to false.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	conds []cards.Condition,
	self, opponent game.PlayerGameState,
	flipResults []coinflip.Result,
) (bool, error) {
	for _, cond := range conds {
		ok, err := e.evaluateOne(ctx, cond, self, opponent, flipResults)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) evaluateOne(
	ctx context.Context,
	cond cards.Condition,
	self, opponent game.PlayerGameState,
	flipResults []coinflip.Result,
) (bool, error) {
	switch cond.Type {
	case cards.ConditionAlways:
		return true, nil

	case cards.ConditionCoinFlipSuccess:
		return len(flipResults) > 0 && coinflip.Succeeded(flipResults), nil

	case cards.ConditionCoinFlipFailure:
		return len(flipResults) > 0 && !coinflip.Succeeded(flipResults), nil

	case cards.ConditionSelfHasDamage:
		return self.ActivePokemon != nil && self.ActivePokemon.DamageCounters() > 0, nil

	case cards.ConditionOpponentHasDamage:
		return opponent.ActivePokemon != nil && opponent.ActivePokemon.DamageCounters() > 0, nil

	case cards.ConditionSelfHasEnergyType:
		if self.ActivePokemon == nil {
			return false, nil
		}
		return e.hasEnergyOfType(ctx, self.ActivePokemon.AttachedEnergy, cond.Energy)

	case cards.ConditionSelfMinimumDamage:
		return self.ActivePokemon != nil && self.ActivePokemon.DamageCounters() >= cond.Amount, nil

	case cards.ConditionSelfMinimumEnergy:
		return self.ActivePokemon != nil && len(self.ActivePokemon.AttachedEnergy) >= cond.Amount, nil

	case cards.ConditionSelfHasStatus:
		return self.ActivePokemon != nil && self.ActivePokemon.HasStatus(cond.Status), nil

	case cards.ConditionOpponentHasStatus:
		return opponent.ActivePokemon != nil && opponent.ActivePokemon.HasStatus(cond.Status), nil
	}
	return false, fmt.Errorf("unknown condition type %q", cond.Type)
}

func (e *Evaluator) hasEnergyOfType(ctx context.Context, energyIDs []string, required cards.EnergyType) (bool, error) {
	for _, id := range energyIDs {
		tmpl, err := e.lookup.GetCardEntity(ctx, id)
		if err != nil {
			return false, fmt.Errorf("resolve attached energy %s: %w", id, err)
		}
		if tmpl.ProvidesEnergy == required {
			return true, nil
		}
	}
	return false, nil
}
