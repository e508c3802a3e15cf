package effects

import (
	"context"
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const (
	weaknessMultiplier  = 2
	resistanceReduction = 30
)

// attackBlockingStatuses prevent the active Pokémon from attacking at all.
var attackBlockingStatuses = []cards.StatusCondition{
	cards.StatusAsleep,
	cards.StatusParalyzed,
}

// AttackPipeline executes ATTACK actions. An attack whose text requires coin
// flips resolves in two submissions: the first validates cost and creates the
// flip sequence, the second (after the flips settle under dual approval)
// computes damage and applies effects.
type AttackPipeline struct {
	lookup     cards.Lookup
	evaluator  *conditions.Evaluator
	ruleEngine *rules.CardRuleEngine
	knockouts  *rules.BetweenTurnsEngine
	logger     *zap.Logger
}

// NewAttackPipeline creates an attack pipeline.
func NewAttackPipeline(
	lookup cards.Lookup,
	evaluator *conditions.Evaluator,
	ruleEngine *rules.CardRuleEngine,
	knockouts *rules.BetweenTurnsEngine,
	logger *zap.Logger,
) *AttackPipeline {
	return &AttackPipeline{
		lookup:     lookup,
		evaluator:  evaluator,
		ruleEngine: ruleEngine,
		knockouts:  knockouts,
		logger:     logger,
	}
}

// Execute performs the attack at data.AttackIndex with the player's active
// Pokémon. pending=true means a coin-flip sequence was created and the attack
// must be resubmitted once the flips settle.
func (p *AttackPipeline) Execute(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	data game.ActionData,
) (out game.GameState, pending bool, err error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, false, err
	}
	opponentID := gs.OpponentID(playerID)
	opp, err := gs.PlayerState(opponentID)
	if err != nil {
		return game.GameState{}, false, err
	}
	if ps.ActivePokemon == nil {
		return game.GameState{}, false, game.RuleViolation("no active pokemon to attack with")
	}
	if opp.ActivePokemon == nil {
		return game.GameState{}, false, game.RuleViolation("opponent has no active pokemon")
	}
	attacker := *ps.ActivePokemon
	defender := *opp.ActivePokemon

	for _, status := range attackBlockingStatuses {
		if attacker.HasStatus(status) {
			return game.GameState{}, false, game.RuleViolation("a %s pokemon cannot attack", status)
		}
	}

	tmpl, err := p.lookup.GetCardEntity(ctx, attacker.CardID)
	if err != nil {
		return game.GameState{}, false, fmt.Errorf("resolve card %s: %w", attacker.CardID, err)
	}
	if data.AttackIndex < 0 || data.AttackIndex >= len(tmpl.Attacks) {
		return game.GameState{}, false, game.RuleViolation("card %s has no attack at index %d", attacker.CardID, data.AttackIndex)
	}
	attack := tmpl.Attacks[data.AttackIndex]

	if reasons := ValidateAttackInput(attack, data); len(reasons) > 0 {
		return game.GameState{}, false, &game.InputError{Reasons: reasons}
	}

	if err := p.checkEnergyCost(ctx, attacker, attack.Cost); err != nil {
		return game.GameState{}, false, err
	}

	config, needsFlip := coinflip.ParseConfiguration(attack.Text)
	var flipResults []coinflip.Result
	flipConsumed := false
	if needsFlip {
		if config.CountPolicy == coinflip.CountVariable {
			// "flip a coin for each ..." resolves against attached energy.
			config.Count = len(attacker.AttachedEnergy)
			if config.Count == 0 {
				needsFlip = false
			}
		}
	}
	if needsFlip {
		switch {
		case gs.CoinFlip == nil:
			flip := coinflip.NewAttackState(config, data.AttackIndex)
			return gs.WithCoinFlip(flip), true, nil
		case gs.CoinFlip.Context != coinflip.ContextAttack || gs.CoinFlip.AttackIndex != data.AttackIndex:
			return game.GameState{}, false, game.RuleViolation("another coin flip sequence is pending")
		case !gs.CoinFlip.IsSettled():
			return game.GameState{}, false, game.RuleViolation("coin flip sequence is not settled")
		}
		flipResults = gs.CoinFlip.Results
		flipConsumed = true
	}

	damage, err := p.computeDamage(ctx, gs, playerID, tmpl, attack, config, flipResults, defender)
	if err != nil {
		return game.GameState{}, false, err
	}

	out = gs
	if damage > 0 {
		defender = defender.WithDamage(damage)
		out, err = updateInstance(out, opponentID, defender)
		if err != nil {
			return game.GameState{}, false, err
		}
	}

	for _, effect := range attack.Effects {
		out, err = p.applySideEffect(ctx, out, playerID, opponentID, attacker.InstanceID, defender.InstanceID, effect, flipResults, data)
		if err != nil {
			return game.GameState{}, false, err
		}
	}

	if flipConsumed {
		out = out.WithCoinFlip(nil)
	}

	out, err = p.knockouts.ProcessKnockouts(ctx, out)
	if err != nil {
		return game.GameState{}, false, err
	}

	p.logger.Debug("attack resolved",
		zap.String("player_id", playerID),
		zap.String("attack", attack.Name),
		zap.Int("damage", damage),
		zap.Int("flips", len(flipResults)),
	)
	return out, false, nil
}

// checkEnergyCost verifies the attacker's attached energy covers the attack
// cost: typed slots need matching colors, colorless slots accept anything
// left over. ENERGY_COST_MODIFICATION rules adjust the per-type counts.
func (p *AttackPipeline) checkEnergyCost(ctx context.Context, attacker game.CardInstance, cost []cards.EnergyType) error {
	required := map[cards.EnergyType]int{}
	for _, slot := range cost {
		required[slot]++
	}
	for energy := range required {
		delta, err := p.ruleEngine.EnergyCostAdjustment(ctx, attacker, energy)
		if err != nil {
			return err
		}
		required[energy] += delta
		if required[energy] < 0 {
			required[energy] = 0
		}
	}

	var provides []cards.EnergyType
	for _, id := range attacker.AttachedEnergy {
		tmpl, err := p.lookup.GetCardEntity(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve attached energy %s: %w", id, err)
		}
		provides = append(provides, tmpl.ProvidesEnergy)
	}

	remaining := len(provides)
	for energy, count := range required {
		if energy == cards.EnergyColorless {
			continue
		}
		have := 0
		for _, provided := range provides {
			if provided == energy {
				have++
			}
		}
		if have < count {
			return game.RuleViolation("attack requires %d %s energy, %d attached", count, energy, have)
		}
		remaining -= count
	}
	if remaining < required[cards.EnergyColorless] {
		return game.RuleViolation("attack requires %d more energy", required[cards.EnergyColorless]-remaining)
	}
	return nil
}

// computeDamage runs the full damage formula: base and effect damage, coin
// results, weakness and resistance, then the temporary and static defender
// adjustments.
func (p *AttackPipeline) computeDamage(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	attackerTmpl *cards.CardTemplate,
	attack cards.Attack,
	config coinflip.Configuration,
	flipResults []coinflip.Result,
	defender game.CardInstance,
) (int, error) {
	self, err := gs.PlayerState(playerID)
	if err != nil {
		return 0, err
	}
	opponentID := gs.OpponentID(playerID)
	opponent, err := gs.PlayerState(opponentID)
	if err != nil {
		return 0, err
	}

	damage := attack.BaseDamage
	for _, effect := range attack.Effects {
		ok, err := p.evaluator.Evaluate(ctx, effect.Conditions(), self, opponent, flipResults)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		switch e := effect.(type) {
		case cards.DamageEffect:
			damage += e.Amount
		case cards.CoinFlipDamageEffect:
			amount := e.Amount
			if amount == 0 {
				amount = attack.BaseDamage
			}
			damage = coinflip.DamageForResults(config, amount, flipResults)
		}
	}
	if damage <= 0 {
		return 0, nil
	}

	defenderTmpl, err := p.lookup.GetCardEntity(ctx, defender.CardID)
	if err != nil {
		return 0, fmt.Errorf("resolve card %s: %w", defender.CardID, err)
	}
	if defenderTmpl.Weakness != "" && defenderTmpl.Weakness == attackerTmpl.Type {
		damage *= weaknessMultiplier
	}
	if defenderTmpl.Resistance != "" && defenderTmpl.Resistance == attackerTmpl.Type {
		damage -= resistanceReduction
		if damage < 0 {
			damage = 0
		}
	}

	if _, ok := gs.ActivePrevention(opponentID, defender.InstanceID); ok {
		return 0, nil
	}
	if m, ok := gs.ActiveReduction(opponentID, defender.InstanceID); ok {
		damage -= m.Amount
		if damage < 0 {
			damage = 0
		}
	}
	return p.ruleEngine.StaticDamageAdjustment(ctx, defender, damage)
}

func (p *AttackPipeline) applySideEffect(
	ctx context.Context,
	gs game.GameState,
	playerID, opponentID string,
	attackerInstanceID, defenderInstanceID string,
	effect cards.AttackEffect,
	flipResults []coinflip.Result,
	data game.ActionData,
) (game.GameState, error) {
	self, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	opponent, err := gs.PlayerState(opponentID)
	if err != nil {
		return game.GameState{}, err
	}
	ok, err := p.evaluator.Evaluate(ctx, effect.Conditions(), self, opponent, flipResults)
	if err != nil {
		return game.GameState{}, err
	}
	if !ok {
		return gs, nil
	}

	switch e := effect.(type) {
	case cards.DamageEffect, cards.CoinFlipDamageEffect:
		// Already folded into the damage computation.
		return gs, nil

	case cards.AttackStatusEffect:
		defender, found := opponent.FindInstance(defenderInstanceID)
		if !found {
			return gs, nil
		}
		immune, err := p.ruleEngine.StatusImmune(ctx, defender, e.Status)
		if err != nil {
			return game.GameState{}, err
		}
		if immune {
			return gs, nil
		}
		defender = defender.WithStatus(e.Status)
		switch e.Status {
		case cards.StatusPoisoned:
			if e.PoisonAmount > 0 {
				defender.PoisonDamageAmount = e.PoisonAmount
			}
		case cards.StatusParalyzed:
			defender.ParalysisClearsAtTurn = gs.TurnNumber + 1
		}
		return updateInstance(gs, opponentID, defender)

	case cards.DiscardEnergyCostEffect:
		return p.discardEnergyCost(ctx, gs, playerID, attackerInstanceID, e, data)

	case cards.SelfDamageEffect:
		attacker, found := self.FindInstance(attackerInstanceID)
		if !found {
			return gs, nil
		}
		return updateInstance(gs, playerID, attacker.WithDamage(e.Amount))

	case cards.HealSelfEffect:
		attacker, found := self.FindInstance(attackerInstanceID)
		if !found {
			return gs, nil
		}
		return updateInstance(gs, playerID, attacker.WithHealing(e.Amount))

	case cards.DamagePreventionEffect:
		return gs.WithDamagePrevention(playerID, attackerInstanceID, game.DamageModifier{
			AppliedAtTurn:    gs.TurnNumber,
			ExpiresAfterTurn: gs.TurnNumber + e.DurationTurns,
		}), nil

	case cards.DamageReductionEffect:
		return gs.WithDamageReduction(playerID, attackerInstanceID, game.DamageModifier{
			Amount:           e.Amount,
			AppliedAtTurn:    gs.TurnNumber,
			ExpiresAfterTurn: gs.TurnNumber + e.DurationTurns,
		}), nil
	}
	return game.GameState{}, fmt.Errorf("unhandled attack effect %T", effect)
}

// discardEnergyCost pays an attack's discard cost from the attacker's
// attached energy. Without an explicit selection the first matching cards
// pay it.
func (p *AttackPipeline) discardEnergyCost(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	attackerInstanceID string,
	e cards.DiscardEnergyCostEffect,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	attacker, found := ps.FindInstance(attackerInstanceID)
	if !found {
		return gs, nil
	}

	eligible, err := filterEnergy(ctx, p.lookup, attacker.AttachedEnergy, e.Energy)
	if err != nil {
		return game.GameState{}, err
	}

	selected := data.SelectedEnergyIDs
	if len(selected) == 0 {
		if len(eligible) < e.Count {
			return game.GameState{}, game.RuleViolation(
				"attack discards %d energy, only %d attached", e.Count, len(eligible))
		}
		selected = eligible[:e.Count]
	} else {
		for _, id := range selected {
			if !containsString(eligible, id) {
				return game.GameState{}, game.RuleViolation("energy %s is not eligible for the discard cost", id)
			}
		}
	}

	attacker = attacker.WithEnergyRemoved(selected)
	ps, err = ps.WithUpdatedInstance(attacker)
	if err != nil {
		return game.GameState{}, err
	}
	ps = ps.WithCardsDiscarded(selected)
	return gs.WithPlayerState(playerID, ps)
}
