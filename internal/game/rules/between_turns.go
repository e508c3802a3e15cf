package rules

import (
	"context"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
)

// defaultPoisonDamage applies when a poison effect never specified an amount.
const defaultPoisonDamage = 10

// burnDamage is dealt on a failed burn check.
const burnDamage = 20

// BetweenTurnsEngine applies the checkup that runs when a turn ends: poison
// damage, paralysis wear-off, burn and sleep coin checks, knockout and prize
// processing, and expiry of temporary damage modifiers.
type BetweenTurnsEngine struct {
	ruleEngine *CardRuleEngine
}

// NewBetweenTurnsEngine creates a between-turns engine.
func NewBetweenTurnsEngine(ruleEngine *CardRuleEngine) *BetweenTurnsEngine {
	return &BetweenTurnsEngine{ruleEngine: ruleEngine}
}

// Process applies the deterministic checkup steps. When a burn or sleep
// check requires a coin flip, the returned state carries a STATUS_CHECK
// CoinFlipState and needsFlip=true; the caller keeps the match in
// BETWEEN_TURNS until the flip settles and then calls ResolveStatusCheck.
func (b *BetweenTurnsEngine) Process(ctx context.Context, gs game.GameState) (game.GameState, bool, error) {
	out := gs

	for _, playerID := range []string{gs.Player1.PlayerID, gs.Player2.PlayerID} {
		ps, err := out.PlayerState(playerID)
		if err != nil {
			return game.GameState{}, false, err
		}
		if ps.ActivePokemon == nil {
			continue
		}
		active := *ps.ActivePokemon

		if active.HasStatus(cards.StatusPoisoned) {
			amount := active.PoisonDamageAmount
			if amount == 0 {
				amount = defaultPoisonDamage
			}
			active = active.WithDamage(amount)
		}

		if active.HasStatus(cards.StatusParalyzed) &&
			active.ParalysisClearsAtTurn != 0 && out.TurnNumber >= active.ParalysisClearsAtTurn {
			active = active.WithoutStatus(cards.StatusParalyzed)
		}

		ps = ps.WithActive(&active)
		out, err = out.WithPlayerState(playerID, ps)
		if err != nil {
			return game.GameState{}, false, err
		}
	}

	out, err := b.ProcessKnockouts(ctx, out)
	if err != nil {
		return game.GameState{}, false, err
	}

	out = out.WithExpiredModifiersCleared(out.TurnNumber)

	// Burn and sleep are resolved by coin flip, one check at a time.
	if out.CoinFlip == nil {
		for _, playerID := range []string{out.Player1.PlayerID, out.Player2.PlayerID} {
			ps, err := out.PlayerState(playerID)
			if err != nil {
				return game.GameState{}, false, err
			}
			if ps.ActivePokemon == nil {
				continue
			}
			for _, status := range []cards.StatusCondition{cards.StatusBurned, cards.StatusAsleep} {
				if ps.ActivePokemon.HasStatus(status) {
					flip := coinflip.NewStatusCheckState(ps.ActivePokemon.InstanceID, status)
					return out.WithCoinFlip(flip), true, nil
				}
			}
		}
	}

	return out, out.CoinFlip != nil, nil
}

// ResolveStatusCheck applies a settled STATUS_CHECK flip: a sleeping Pokémon
// wakes on heads; a burned Pokémon takes damage on tails. The flip state is
// cleared and knockouts re-processed. More checks may still be pending, so
// callers should run Process again afterwards.
func (b *BetweenTurnsEngine) ResolveStatusCheck(ctx context.Context, gs game.GameState) (game.GameState, error) {
	flip := gs.CoinFlip
	if flip == nil || flip.Context != coinflip.ContextStatusCheck {
		return game.GameState{}, game.RuleViolation("no status check flip to resolve")
	}
	if !flip.IsSettled() {
		return game.GameState{}, game.RuleViolation("status check flip is not settled")
	}

	heads := coinflip.Succeeded(flip.Results)
	out := gs

	for _, playerID := range []string{gs.Player1.PlayerID, gs.Player2.PlayerID} {
		ps, err := out.PlayerState(playerID)
		if err != nil {
			return game.GameState{}, err
		}
		instance, ok := ps.FindInstance(flip.TargetInstanceID)
		if !ok {
			continue
		}

		switch flip.CheckedStatus {
		case cards.StatusAsleep:
			if heads {
				instance = instance.WithoutStatus(cards.StatusAsleep)
			}
		case cards.StatusBurned:
			if !heads {
				instance = instance.WithDamage(burnDamage)
			}
		default:
			return game.GameState{}, game.RuleViolation("unexpected status check for %s", flip.CheckedStatus)
		}

		ps, err = ps.WithUpdatedInstance(instance)
		if err != nil {
			return game.GameState{}, err
		}
		out, err = out.WithPlayerState(playerID, ps)
		if err != nil {
			return game.GameState{}, err
		}
		break
	}

	out = out.WithCoinFlip(nil)
	return b.ProcessKnockouts(ctx, out)
}

// ProcessKnockouts discards every in-play Pokémon at 0 HP together with its
// attachments and evolution history, and moves prizes to the opposing player
// per the knocked-out card's prize rules.
func (b *BetweenTurnsEngine) ProcessKnockouts(ctx context.Context, gs game.GameState) (game.GameState, error) {
	out := gs
	for _, playerID := range []string{gs.Player1.PlayerID, gs.Player2.PlayerID} {
		ps, err := out.PlayerState(playerID)
		if err != nil {
			return game.GameState{}, err
		}
		opponentID := out.OpponentID(playerID)

		prizes := 0
		changed := false

		if ps.ActivePokemon != nil && ps.ActivePokemon.IsKnockedOut() {
			count, discarded, err := b.knockOut(ctx, *ps.ActivePokemon)
			if err != nil {
				return game.GameState{}, err
			}
			prizes += count
			ps = ps.WithActive(nil).WithCardsDiscarded(discarded)
			changed = true
		}
		for i := len(ps.Bench) - 1; i >= 0; i-- {
			if !ps.Bench[i].IsKnockedOut() {
				continue
			}
			count, discarded, err := b.knockOut(ctx, ps.Bench[i])
			if err != nil {
				return game.GameState{}, err
			}
			prizes += count
			ps, err = ps.WithBenchRemoved(i)
			if err != nil {
				return game.GameState{}, err
			}
			ps = ps.WithCardsDiscarded(discarded)
			changed = true
		}

		if !changed {
			continue
		}
		out, err = out.WithPlayerState(playerID, ps)
		if err != nil {
			return game.GameState{}, err
		}

		opp, err := out.PlayerState(opponentID)
		if err != nil {
			return game.GameState{}, err
		}
		for i := 0; i < prizes && len(opp.PrizeCards) > 0; i++ {
			opp, err = opp.WithPrizeTaken()
			if err != nil {
				return game.GameState{}, err
			}
		}
		out, err = out.WithPlayerState(opponentID, opp)
		if err != nil {
			return game.GameState{}, err
		}
	}
	return out, nil
}

// knockOut returns the prize count and the full card list (card, prior
// evolutions, attached energy) to discard for a knocked-out instance.
func (b *BetweenTurnsEngine) knockOut(ctx context.Context, instance game.CardInstance) (int, []string, error) {
	count, err := b.ruleEngine.PrizeCount(ctx, instance)
	if err != nil {
		return 0, nil, err
	}
	discarded := make([]string, 0, 1+len(instance.EvolutionChain)+len(instance.AttachedEnergy))
	discarded = append(discarded, instance.CardID)
	discarded = append(discarded, instance.EvolutionChain...)
	discarded = append(discarded, instance.AttachedEnergy...)
	return count, discarded, nil
}
