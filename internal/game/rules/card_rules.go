package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

// CardRuleEngine answers questions about the static always-on rules carried
// by card templates. Rules are applied in priority order (HIGHEST first) when
// several could govern the same decision point.
type CardRuleEngine struct {
	lookup cards.Lookup
}

// NewCardRuleEngine creates a rule engine backed by the card catalog.
func NewCardRuleEngine(lookup cards.Lookup) *CardRuleEngine {
	return &CardRuleEngine{lookup: lookup}
}

func (r *CardRuleEngine) template(ctx context.Context, cardID string) (*cards.CardTemplate, error) {
	tmpl, err := r.lookup.GetCardEntity(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("resolve card %s: %w", cardID, err)
	}
	return tmpl, nil
}

// rulesByPriority returns the template's rules of the given type, highest
// priority first.
func rulesByPriority(tmpl *cards.CardTemplate, ruleType cards.CardRuleType) []cards.CardRule {
	var matched []cards.CardRule
	for _, rule := range tmpl.Rules {
		if rule.Type == ruleType {
			matched = append(matched, rule)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	return matched
}

// retreatBlockingStatuses block the retreat action itself. This is narrower
// than the general cannot-retreat determination, which also considers the
// CANNOT_RETREAT card rule.
var retreatBlockingStatuses = []cards.StatusCondition{
	cards.StatusAsleep,
	cards.StatusConfused,
	cards.StatusParalyzed,
}

// StatusBlocksRetreat reports whether the instance's special conditions alone
// forbid retreating.
func StatusBlocksRetreat(instance game.CardInstance) bool {
	for _, s := range retreatBlockingStatuses {
		if instance.HasStatus(s) {
			return true
		}
	}
	return false
}

// CannotRetreat reports whether the Pokémon is barred from retreating, by
// status or by a static CANNOT_RETREAT rule.
func (r *CardRuleEngine) CannotRetreat(ctx context.Context, instance game.CardInstance) (bool, error) {
	if StatusBlocksRetreat(instance) {
		return true, nil
	}
	tmpl, err := r.template(ctx, instance.CardID)
	if err != nil {
		return false, err
	}
	return tmpl.HasRule(cards.RuleCannotRetreat), nil
}

// RetreatCost returns the energy cost to retreat the Pokémon, honoring
// FREE_RETREAT rules (cost 0).
func (r *CardRuleEngine) RetreatCost(ctx context.Context, instance game.CardInstance) (int, error) {
	tmpl, err := r.template(ctx, instance.CardID)
	if err != nil {
		return 0, err
	}
	if tmpl.HasRule(cards.RuleFreeRetreat) {
		return 0, nil
	}
	return tmpl.RetreatCost, nil
}

// StatusImmune reports whether a static rule protects the Pokémon from the
// given special condition.
func (r *CardRuleEngine) StatusImmune(ctx context.Context, instance game.CardInstance, status cards.StatusCondition) (bool, error) {
	tmpl, err := r.template(ctx, instance.CardID)
	if err != nil {
		return false, err
	}
	for _, rule := range rulesByPriority(tmpl, cards.RuleStatusImmunity) {
		if rule.Status == "" || rule.Status == status {
			return true, nil
		}
	}
	return false, nil
}

// StaticDamageAdjustment applies DAMAGE_IMMUNITY and DAMAGE_REDUCTION rules
// on the defender's template to incoming damage. Immunity outranks reduction
// when both are present at equal priority.
func (r *CardRuleEngine) StaticDamageAdjustment(ctx context.Context, defender game.CardInstance, damage int) (int, error) {
	tmpl, err := r.template(ctx, defender.CardID)
	if err != nil {
		return 0, err
	}

	immunity := rulesByPriority(tmpl, cards.RuleDamageImmunity)
	reduction := rulesByPriority(tmpl, cards.RuleDamageReduction)
	if len(immunity) > 0 {
		if len(reduction) == 0 || immunity[0].Priority >= reduction[0].Priority {
			return 0, nil
		}
	}
	for _, rule := range reduction {
		damage -= rule.Amount
	}
	if len(immunity) > 0 {
		return 0, nil
	}
	if damage < 0 {
		damage = 0
	}
	return damage, nil
}

// PrizeCount returns how many prize cards knocking out the Pokémon awards,
// honoring EXTRA_PRIZE_CARDS and NO_PRIZE_CARDS rules (highest priority rule
// wins when both are somehow present).
func (r *CardRuleEngine) PrizeCount(ctx context.Context, knockedOut game.CardInstance) (int, error) {
	tmpl, err := r.template(ctx, knockedOut.CardID)
	if err != nil {
		return 0, err
	}
	extra := rulesByPriority(tmpl, cards.RuleExtraPrizeCards)
	none := rulesByPriority(tmpl, cards.RuleNoPrizeCards)
	switch {
	case len(none) > 0 && (len(extra) == 0 || none[0].Priority >= extra[0].Priority):
		return 0, nil
	case len(extra) > 0:
		return 1 + extra[0].Amount, nil
	}
	return 1, nil
}

// EnergyCostAdjustment applies ENERGY_COST_MODIFICATION rules to an attack
// cost expressed as a count of energy of the rule's type. The returned delta
// is added to the required amount (negative = discount).
func (r *CardRuleEngine) EnergyCostAdjustment(ctx context.Context, attacker game.CardInstance, energy cards.EnergyType) (int, error) {
	tmpl, err := r.template(ctx, attacker.CardID)
	if err != nil {
		return 0, err
	}
	delta := 0
	for _, rule := range rulesByPriority(tmpl, cards.RuleEnergyCostModification) {
		if rule.Energy == "" || rule.Energy == energy {
			delta += rule.Amount
		}
	}
	return delta, nil
}

// OncePerGameAvailable reports whether a ONCE_PER_GAME-restricted ability on
// the card may still be used by the player.
func (r *CardRuleEngine) OncePerGameAvailable(ctx context.Context, gs game.GameState, playerID, cardID string) (bool, error) {
	tmpl, err := r.template(ctx, cardID)
	if err != nil {
		return false, err
	}
	if !tmpl.HasRule(cards.RuleOncePerGame) {
		return true, nil
	}
	return !AbilityUsedThisGame(gs, playerID, cardID), nil
}
