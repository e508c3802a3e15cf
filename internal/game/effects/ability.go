package effects

import (
	"context"
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// AbilityPipeline executes USE_ABILITY actions. The source Pokémon must be in
// play; once-per-turn abilities and ONCE_PER_GAME card rules are enforced
// before any effect resolves.
type AbilityPipeline struct {
	lookup     cards.Lookup
	evaluator  *conditions.Evaluator
	ruleEngine *rules.CardRuleEngine
	logger     *zap.Logger
}

// NewAbilityPipeline creates an ability pipeline.
func NewAbilityPipeline(lookup cards.Lookup, evaluator *conditions.Evaluator, ruleEngine *rules.CardRuleEngine, logger *zap.Logger) *AbilityPipeline {
	return &AbilityPipeline{lookup: lookup, evaluator: evaluator, ruleEngine: ruleEngine, logger: logger}
}

// Execute uses the ability of the in-play Pokémon whose card id is
// data.CardID. When the card declares several abilities data.AttackIndex
// selects among them.
func (p *AbilityPipeline) Execute(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	source, ok := findByCardID(ps, data.CardID)
	if !ok {
		return game.GameState{}, game.RuleViolation("pokemon %s is not in play", data.CardID)
	}

	tmpl, err := p.lookup.GetCardEntity(ctx, data.CardID)
	if err != nil {
		return game.GameState{}, fmt.Errorf("resolve card %s: %w", data.CardID, err)
	}
	if len(tmpl.Abilities) == 0 {
		return game.GameState{}, game.RuleViolation("card %s has no ability", data.CardID)
	}
	if data.AttackIndex < 0 || data.AttackIndex >= len(tmpl.Abilities) {
		return game.GameState{}, game.RuleViolation("card %s has no ability at index %d", data.CardID, data.AttackIndex)
	}
	ability := tmpl.Abilities[data.AttackIndex]

	if ability.OncePerTurn && gs.AbilityUsedThisTurn(playerID, data.CardID) {
		return game.GameState{}, game.RuleViolation("ability %s already used this turn", ability.Name)
	}
	available, err := p.ruleEngine.OncePerGameAvailable(ctx, gs, playerID, data.CardID)
	if err != nil {
		return game.GameState{}, err
	}
	if !available {
		return game.GameState{}, game.RuleViolation("ability %s already used this game", ability.Name)
	}

	if reasons := ValidateAbilityInput(ability.Effects, data); len(reasons) > 0 {
		return game.GameState{}, &game.InputError{Reasons: reasons}
	}

	out := gs
	for _, effect := range ability.Effects {
		self, err := out.PlayerState(playerID)
		if err != nil {
			return game.GameState{}, err
		}
		opponent, err := out.OpponentState(playerID)
		if err != nil {
			return game.GameState{}, err
		}
		ok, err := p.evaluator.Evaluate(ctx, effect.Conditions(), self, opponent, nil)
		if err != nil {
			return game.GameState{}, err
		}
		if !ok {
			continue
		}
		out, err = p.apply(ctx, out, playerID, source.InstanceID, effect, data)
		if err != nil {
			return game.GameState{}, err
		}
	}

	out = out.WithAbilityUsed(playerID, data.CardID)

	p.logger.Debug("ability resolved",
		zap.String("player_id", playerID),
		zap.String("card_id", data.CardID),
		zap.String("ability", ability.Name),
	)
	return out, nil
}

func findByCardID(ps game.PlayerGameState, cardID string) (game.CardInstance, bool) {
	if ps.ActivePokemon != nil && ps.ActivePokemon.CardID == cardID {
		return *ps.ActivePokemon, true
	}
	for _, instance := range ps.Bench {
		if instance.CardID == cardID {
			return instance, true
		}
	}
	return game.CardInstance{}, false
}

func (p *AbilityPipeline) apply(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	sourceInstanceID string,
	effect cards.AbilityEffect,
	data game.ActionData,
) (game.GameState, error) {
	switch e := effect.(type) {
	case cards.EnergyAccelerationEffect:
		return p.accelerateEnergy(ctx, gs, playerID, sourceInstanceID, e, data)

	case cards.AbilityHealEffect:
		ownerID, instance, err := resolveTargetInstance(gs, playerID, e.Target, data.TargetInstanceID, sourceInstanceID)
		if err != nil {
			return game.GameState{}, err
		}
		return updateInstance(gs, ownerID, instance.WithHealing(e.Amount))

	case cards.AbilityDrawEffect:
		ps, err := gs.PlayerState(playerID)
		if err != nil {
			return game.GameState{}, err
		}
		ps, _ = ps.WithCardsDrawn(e.Count)
		return gs.WithPlayerState(playerID, ps)

	case cards.AbilitySearchEffect:
		return p.searchDeck(ctx, gs, playerID, e, data)

	case cards.AbilityStatusEffect:
		return p.applyStatus(ctx, gs, playerID, sourceInstanceID, e, data)
	}
	return game.GameState{}, fmt.Errorf("unhandled ability effect %T", effect)
}

// accelerateEnergy moves energy cards from the effect's source zone onto the
// target Pokémon.
func (p *AbilityPipeline) accelerateEnergy(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	sourceInstanceID string,
	e cards.EnergyAccelerationEffect,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	targetOwnerID, target, err := resolveTargetInstance(gs, playerID, e.Target, data.TargetInstanceID, sourceInstanceID)
	if err != nil {
		return game.GameState{}, err
	}
	if e.TargetType != "" {
		targetTmpl, err := p.lookup.GetCardEntity(ctx, target.CardID)
		if err != nil {
			return game.GameState{}, fmt.Errorf("resolve card %s: %w", target.CardID, err)
		}
		if targetTmpl.Type != e.TargetType {
			return game.GameState{}, game.RuleViolation(
				"%s can only receive energy on %s pokemon", e.Energy, e.TargetType)
		}
	}

	switch e.Source {
	case cards.SourceHand:
		candidates, err := filterEnergy(ctx, p.lookup, ps.Hand, e.Energy)
		if err != nil {
			return game.GameState{}, err
		}
		if err := requireSelected(data.SelectedCardIDs, candidates, "hand"); err != nil {
			return game.GameState{}, err
		}
		for _, id := range data.SelectedCardIDs {
			if ps, err = ps.WithCardRemovedFromHand(id); err != nil {
				return game.GameState{}, err
			}
			target = target.WithEnergyAttached(id)
		}

	case cards.SourceDiscard:
		candidates, err := filterEnergy(ctx, p.lookup, ps.DiscardPile, e.Energy)
		if err != nil {
			return game.GameState{}, err
		}
		if err := requireSelected(data.SelectedCardIDs, candidates, "discard pile"); err != nil {
			return game.GameState{}, err
		}
		if ps, err = ps.WithCardsRemovedFromDiscard(data.SelectedCardIDs); err != nil {
			return game.GameState{}, err
		}
		for _, id := range data.SelectedCardIDs {
			target = target.WithEnergyAttached(id)
		}

	case cards.SourceDeck:
		// The deck is hidden, so the engine picks the first matching cards.
		candidates, err := filterEnergy(ctx, p.lookup, ps.Deck, e.Energy)
		if err != nil {
			return game.GameState{}, err
		}
		if len(candidates) > e.Count {
			candidates = candidates[:e.Count]
		}
		if ps, err = ps.WithCardsRemovedFromDeck(candidates); err != nil {
			return game.GameState{}, err
		}
		for _, id := range candidates {
			target = target.WithEnergyAttached(id)
		}
		shuffled, err := shuffleStrings(ps.Deck)
		if err != nil {
			return game.GameState{}, err
		}
		ps = ps.WithDeck(shuffled)

	case cards.SourceSelf:
		source, ok := ps.FindInstance(sourceInstanceID)
		if !ok {
			return game.GameState{}, game.RuleViolation("source pokemon is no longer in play")
		}
		if source.InstanceID == target.InstanceID {
			return game.GameState{}, game.RuleViolation("cannot move energy onto the same pokemon")
		}
		for _, id := range data.SelectedCardIDs {
			if !source.HasEnergyAttached(id) {
				return game.GameState{}, game.RuleViolation("energy %s is not attached to the source pokemon", id)
			}
		}
		source = source.WithEnergyRemoved(data.SelectedCardIDs)
		if ps, err = ps.WithUpdatedInstance(source); err != nil {
			return game.GameState{}, err
		}
		for _, id := range data.SelectedCardIDs {
			target = target.WithEnergyAttached(id)
		}

	default:
		return game.GameState{}, fmt.Errorf("unknown energy source %q", e.Source)
	}

	out, err := gs.WithPlayerState(playerID, ps)
	if err != nil {
		return game.GameState{}, err
	}
	return updateInstance(out, targetOwnerID, target)
}

func requireSelected(selected, candidates []string, zone string) error {
	for _, id := range selected {
		if !containsString(candidates, id) {
			return game.RuleViolation("card %s is not eligible energy in the %s", id, zone)
		}
	}
	return nil
}

func (p *AbilityPipeline) searchDeck(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	e cards.AbilitySearchEffect,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	for _, id := range data.SelectedCardIDs {
		tmpl, err := p.lookup.GetCardEntity(ctx, id)
		if err != nil {
			return game.GameState{}, fmt.Errorf("resolve searched card %s: %w", id, err)
		}
		if e.Selector != "" && tmpl.Category != e.Selector {
			return game.GameState{}, game.RuleViolation("card %s does not match the search criteria", id)
		}
		if e.Energy != "" && tmpl.ProvidesEnergy != e.Energy {
			return game.GameState{}, game.RuleViolation("card %s is not %s energy", id, e.Energy)
		}
	}
	ps, err = ps.WithCardsRemovedFromDeck(data.SelectedCardIDs)
	if err != nil {
		return game.GameState{}, game.RuleViolation("selected card is not in the deck")
	}
	ps = ps.WithCardsAddedToHand(data.SelectedCardIDs)
	return gs.WithPlayerState(playerID, ps)
}

func (p *AbilityPipeline) applyStatus(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	sourceInstanceID string,
	e cards.AbilityStatusEffect,
	data game.ActionData,
) (game.GameState, error) {
	ownerID, instance, err := resolveTargetInstance(gs, playerID, e.Target, data.TargetInstanceID, sourceInstanceID)
	if err != nil {
		return game.GameState{}, err
	}
	immune, err := p.ruleEngine.StatusImmune(ctx, instance, e.Status)
	if err != nil {
		return game.GameState{}, err
	}
	if immune {
		return gs, nil
	}
	instance = instance.WithStatus(e.Status)
	if e.Status == cards.StatusParalyzed {
		instance.ParalysisClearsAtTurn = gs.TurnNumber + 1
	}
	return updateInstance(gs, ownerID, instance)
}
