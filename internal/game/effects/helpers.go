package effects

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// filterEnergy returns the card ids in pool that resolve to energy cards of
// the required type (any energy when required is empty).
func filterEnergy(ctx context.Context, lookup cards.Lookup, pool []string, required cards.EnergyType) ([]string, error) {
	var out []string
	for _, id := range pool {
		tmpl, err := lookup.GetCardEntity(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve card %s: %w", id, err)
		}
		if !tmpl.IsBasicEnergy() {
			continue
		}
		if required != "" && tmpl.ProvidesEnergy != required {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// shuffleStrings returns a uniformly shuffled copy using Fisher-Yates over
// crypto randomness, matching the coin flip's randomness source.
func shuffleStrings(in []string) ([]string, error) {
	out := append([]string(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// resolveTargetInstance finds the Pokémon an effect target refers to, along
// with the id of the player who owns it.
func resolveTargetInstance(
	gs game.GameState,
	playerID string,
	target cards.EffectTarget,
	targetInstanceID string,
	selfInstanceID string,
) (string, game.CardInstance, error) {
	switch target {
	case cards.TargetSelf:
		ps, err := gs.PlayerState(playerID)
		if err != nil {
			return "", game.CardInstance{}, err
		}
		instance, ok := ps.FindInstance(selfInstanceID)
		if !ok {
			return "", game.CardInstance{}, game.RuleViolation("source pokemon is no longer in play")
		}
		return playerID, instance, nil

	case cards.TargetOwnActive:
		ps, err := gs.PlayerState(playerID)
		if err != nil {
			return "", game.CardInstance{}, err
		}
		if ps.ActivePokemon == nil {
			return "", game.CardInstance{}, game.RuleViolation("no active pokemon")
		}
		return playerID, *ps.ActivePokemon, nil

	case cards.TargetOwnPokemon:
		ps, err := gs.PlayerState(playerID)
		if err != nil {
			return "", game.CardInstance{}, err
		}
		instance, ok := ps.FindInstance(targetInstanceID)
		if !ok {
			return "", game.CardInstance{}, game.RuleViolation("target pokemon %s is not in play", targetInstanceID)
		}
		return playerID, instance, nil

	case cards.TargetOpponentActive:
		opponentID := gs.OpponentID(playerID)
		ps, err := gs.PlayerState(opponentID)
		if err != nil {
			return "", game.CardInstance{}, err
		}
		if ps.ActivePokemon == nil {
			return "", game.CardInstance{}, game.RuleViolation("opponent has no active pokemon")
		}
		return opponentID, *ps.ActivePokemon, nil
	}
	return "", game.CardInstance{}, fmt.Errorf("unknown effect target %q", target)
}

func updateInstance(gs game.GameState, ownerID string, instance game.CardInstance) (game.GameState, error) {
	ps, err := gs.PlayerState(ownerID)
	if err != nil {
		return game.GameState{}, err
	}
	ps, err = ps.WithUpdatedInstance(instance)
	if err != nil {
		return game.GameState{}, err
	}
	return gs.WithPlayerState(ownerID, ps)
}

func healTarget(gs game.GameState, playerID string, target cards.EffectTarget, targetInstanceID string, amount int) (game.GameState, error) {
	ownerID, instance, err := resolveTargetInstance(gs, playerID, target, targetInstanceID, targetInstanceID)
	if err != nil {
		return game.GameState{}, err
	}
	return updateInstance(gs, ownerID, instance.WithHealing(amount))
}

// cureStatus removes the given condition (or all when empty) from the target.
func cureStatus(gs game.GameState, playerID string, target cards.EffectTarget, targetInstanceID string, status cards.StatusCondition) (game.GameState, error) {
	ownerID, instance, err := resolveTargetInstance(gs, playerID, target, targetInstanceID, targetInstanceID)
	if err != nil {
		return game.GameState{}, err
	}
	if status == "" {
		instance = instance.WithStatusesCleared()
	} else {
		instance = instance.WithoutStatus(status)
	}
	return updateInstance(gs, ownerID, instance)
}

// switchActive swaps the active Pokémon with the benched one at target. Like
// a retreat, the departing Pokémon sheds its special conditions, but no
// energy cost is paid.
func switchActive(gs game.GameState, playerID string, target game.Position) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	if ps.ActivePokemon == nil {
		return game.GameState{}, game.RuleViolation("no active pokemon to switch")
	}
	idx, ok := target.BenchIndex()
	if !ok || idx >= len(ps.Bench) {
		return game.GameState{}, game.RuleViolation("no bench pokemon at %s", target)
	}

	promoted := ps.Bench[idx]
	departing := ps.ActivePokemon.WithStatusesCleared()

	ps, err = ps.WithBenchRemoved(idx)
	if err != nil {
		return game.GameState{}, err
	}
	ps = ps.WithActive(&promoted)
	ps, err = ps.WithBenchAdded(departing)
	if err != nil {
		return game.GameState{}, err
	}
	return gs.WithPlayerState(playerID, ps)
}
