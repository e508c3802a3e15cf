package effects

import (
	"context"
	"fmt"
	"sort"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"go.uber.org/zap"
)

// Trainer effects execute in fixed priority tiers so that, for example, a
// card that both discards the hand and retrieves energy always discards
// first regardless of declaration order.
const (
	tierCost      = 1 // discard / cost-paying
	tierRetrieval = 2 // retrieval / search
	tierPokemon   = 3 // heal / remove energy / cure
	tierBoard     = 4 // switch
	tierDraw      = 5 // draw / shuffle
)

func trainerTier(effect cards.TrainerEffect) int {
	switch effect.(type) {
	case cards.DiscardHandEffect, cards.DiscardFromHandEffect:
		return tierCost
	case cards.RetrieveEnergyEffect, cards.SearchDeckEffect:
		return tierRetrieval
	case cards.HealEffect, cards.RemoveEnergyEffect, cards.CureStatusEffect:
		return tierPokemon
	case cards.SwitchPokemonEffect:
		return tierBoard
	case cards.DrawCardsEffect, cards.ShuffleDeckEffect:
		return tierDraw
	}
	return tierDraw
}

// TrainerPipeline executes trainer card actions.
type TrainerPipeline struct {
	lookup    cards.Lookup
	evaluator *conditions.Evaluator
	logger    *zap.Logger
}

// NewTrainerPipeline creates a trainer pipeline.
func NewTrainerPipeline(lookup cards.Lookup, evaluator *conditions.Evaluator, logger *zap.Logger) *TrainerPipeline {
	return &TrainerPipeline{lookup: lookup, evaluator: evaluator, logger: logger}
}

// Execute plays the trainer card named by data.CardID from the player's
// hand, applying its effects in tier order. The card itself goes to the
// discard pile after its effects resolve.
func (p *TrainerPipeline) Execute(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	if !ps.HasInHand(data.CardID) {
		return game.GameState{}, game.RuleViolation("trainer card %s is not in hand", data.CardID)
	}

	tmpl, err := p.lookup.GetCardEntity(ctx, data.CardID)
	if err != nil {
		return game.GameState{}, fmt.Errorf("resolve trainer card %s: %w", data.CardID, err)
	}
	if tmpl.Category != cards.CategoryTrainer {
		return game.GameState{}, game.RuleViolation("card %s is not a trainer card", data.CardID)
	}

	if reasons := ValidateTrainerInput(tmpl.TrainerEffects, data); len(reasons) > 0 {
		return game.GameState{}, &game.InputError{Reasons: reasons}
	}

	// The trainer card leaves the hand before any effect resolves so a
	// DISCARD_HAND cost never discards the card being played.
	ps, err = ps.WithCardRemovedFromHand(data.CardID)
	if err != nil {
		return game.GameState{}, err
	}
	out, err := gs.WithPlayerState(playerID, ps)
	if err != nil {
		return game.GameState{}, err
	}

	ordered := make([]cards.TrainerEffect, len(tmpl.TrainerEffects))
	copy(ordered, tmpl.TrainerEffects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return trainerTier(ordered[i]) < trainerTier(ordered[j])
	})

	for _, effect := range ordered {
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
		out, err = p.apply(ctx, out, playerID, effect, data)
		if err != nil {
			return game.GameState{}, err
		}
	}

	ps, err = out.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	ps = ps.WithCardsDiscarded([]string{data.CardID})
	out, err = out.WithPlayerState(playerID, ps)
	if err != nil {
		return game.GameState{}, err
	}

	p.logger.Debug("trainer card resolved",
		zap.String("player_id", playerID),
		zap.String("card_id", data.CardID),
		zap.Int("effects", len(ordered)),
	)
	return out, nil
}

func (p *TrainerPipeline) apply(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	effect cards.TrainerEffect,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	switch e := effect.(type) {
	case cards.DiscardHandEffect:
		discarded := append([]string(nil), ps.Hand...)
		ps = ps.WithHand(nil).WithCardsDiscarded(discarded)
		return gs.WithPlayerState(playerID, ps)

	case cards.DiscardFromHandEffect:
		if len(data.SelectedCardIDs) < e.Count {
			return game.GameState{}, &game.NegotiationError{
				Code:           game.NegotiationCardSelectionRequired,
				Requirement:    game.NegotiationRequirement{Amount: e.Count},
				AvailableCards: append([]string(nil), ps.Hand...),
			}
		}
		for _, id := range data.SelectedCardIDs {
			if ps, err = ps.WithCardRemovedFromHand(id); err != nil {
				return game.GameState{}, game.RuleViolation("card %s is not in hand", id)
			}
		}
		ps = ps.WithCardsDiscarded(data.SelectedCardIDs)
		return gs.WithPlayerState(playerID, ps)

	case cards.RetrieveEnergyEffect:
		return p.retrieveEnergy(ctx, gs, playerID, e, data)

	case cards.SearchDeckEffect:
		return p.searchDeck(ctx, gs, playerID, e.Count, e.Selector, e.Energy, data)

	case cards.HealEffect:
		return healTarget(gs, playerID, e.Target, data.TargetInstanceID, e.Amount)

	case cards.RemoveEnergyEffect:
		return p.removeEnergy(gs, playerID, e, data)

	case cards.CureStatusEffect:
		return cureStatus(gs, playerID, e.Target, data.TargetInstanceID, e.Status)

	case cards.SwitchPokemonEffect:
		return switchActive(gs, playerID, data.Target)

	case cards.DrawCardsEffect:
		ps, _ = ps.WithCardsDrawn(e.Count)
		return gs.WithPlayerState(playerID, ps)

	case cards.ShuffleDeckEffect:
		shuffled, err := shuffleStrings(ps.Deck)
		if err != nil {
			return game.GameState{}, err
		}
		ps = ps.WithDeck(shuffled)
		return gs.WithPlayerState(playerID, ps)
	}
	return game.GameState{}, fmt.Errorf("unhandled trainer effect %T", effect)
}

func (p *TrainerPipeline) retrieveEnergy(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	e cards.RetrieveEnergyEffect,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	candidates, err := filterEnergy(ctx, p.lookup, ps.DiscardPile, e.Energy)
	if err != nil {
		return game.GameState{}, err
	}
	if len(data.SelectedCardIDs) == 0 {
		return game.GameState{}, &game.NegotiationError{
			Code:            game.NegotiationCardSelectionRequired,
			Requirement:     game.NegotiationRequirement{Amount: e.Count, Energy: e.Energy},
			AvailableEnergy: candidates,
		}
	}
	for _, id := range data.SelectedCardIDs {
		if !containsString(candidates, id) {
			return game.GameState{}, game.RuleViolation("card %s is not retrievable energy in the discard pile", id)
		}
	}

	ps, err = ps.WithCardsRemovedFromDiscard(data.SelectedCardIDs)
	if err != nil {
		return game.GameState{}, err
	}
	ps = ps.WithCardsAddedToHand(data.SelectedCardIDs)
	return gs.WithPlayerState(playerID, ps)
}

func (p *TrainerPipeline) searchDeck(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	count int,
	selector cards.Category,
	energy cards.EnergyType,
	data game.ActionData,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	// Searching for zero cards is a legal choice; the deck is still
	// shuffled by a companion SHUFFLE_DECK effect when the card carries one.
	if len(data.SelectedCardIDs) > count {
		return game.GameState{}, game.RuleViolation(
			"selected %d cards, search allows up to %d", len(data.SelectedCardIDs), count)
	}
	for _, id := range data.SelectedCardIDs {
		tmpl, err := p.lookup.GetCardEntity(ctx, id)
		if err != nil {
			return game.GameState{}, fmt.Errorf("resolve searched card %s: %w", id, err)
		}
		if selector != "" && tmpl.Category != selector {
			return game.GameState{}, game.RuleViolation("card %s does not match the search criteria", id)
		}
		if energy != "" && tmpl.ProvidesEnergy != energy {
			return game.GameState{}, game.RuleViolation("card %s is not %s energy", id, energy)
		}
	}

	ps, err = ps.WithCardsRemovedFromDeck(data.SelectedCardIDs)
	if err != nil {
		return game.GameState{}, game.RuleViolation("selected card is not in the deck")
	}
	ps = ps.WithCardsAddedToHand(data.SelectedCardIDs)
	return gs.WithPlayerState(playerID, ps)
}

func (p *TrainerPipeline) removeEnergy(
	gs game.GameState,
	playerID string,
	e cards.RemoveEnergyEffect,
	data game.ActionData,
) (game.GameState, error) {
	targetPlayerID := playerID
	if e.Target == cards.TargetOpponentActive {
		targetPlayerID = gs.OpponentID(playerID)
	}
	ps, err := gs.PlayerState(targetPlayerID)
	if err != nil {
		return game.GameState{}, err
	}
	if ps.ActivePokemon == nil {
		return game.GameState{}, game.RuleViolation("no active pokemon to remove energy from")
	}
	active := *ps.ActivePokemon

	selected := data.SelectedEnergyIDs
	if len(selected) == 0 {
		// Without an explicit selection the first N attached pay the cost.
		if len(active.AttachedEnergy) < e.Count {
			selected = append([]string(nil), active.AttachedEnergy...)
		} else {
			selected = append([]string(nil), active.AttachedEnergy[:e.Count]...)
		}
	}
	active = active.WithEnergyRemoved(selected)
	ps = ps.WithActive(&active).WithCardsDiscarded(selected)
	return gs.WithPlayerState(targetPlayerID, ps)
}
