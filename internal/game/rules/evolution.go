package rules

import (
	"context"
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

// EvolutionEngine executes the evolve turn action. The instance identity and
// position survive evolution; HP carries over as an absolute damage delta,
// special conditions are cleared unconditionally, attached energy and the
// evolution chain are carried forward.
type EvolutionEngine struct {
	lookup cards.Lookup
}

// NewEvolutionEngine creates an evolution engine.
func NewEvolutionEngine(lookup cards.Lookup) *EvolutionEngine {
	return &EvolutionEngine{lookup: lookup}
}

// Execute evolves the in-play Pokémon at target using evolutionCardID from
// the player's hand.
func (e *EvolutionEngine) Execute(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	target game.Position,
	evolutionCardID string,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}

	if !ps.HasInHand(evolutionCardID) {
		return game.GameState{}, game.RuleViolation("evolution card %s is not in hand", evolutionCardID)
	}

	instance, ok := ps.InstanceAt(target)
	if !ok {
		return game.GameState{}, game.RuleViolation("no pokemon at %s", target)
	}

	if EnteredPlayThisTurn(gs, playerID, instance) {
		return game.GameState{}, game.RuleViolation("pokemon at %s already evolved this turn", target)
	}

	evolution, err := e.lookup.GetCardEntity(ctx, evolutionCardID)
	if err != nil {
		return game.GameState{}, fmt.Errorf("resolve evolution card %s: %w", evolutionCardID, err)
	}
	if !evolution.IsPokemon() {
		return game.GameState{}, game.RuleViolation("card %s is not a pokemon", evolutionCardID)
	}
	if evolution.Stage == cards.StageBasic || evolution.EvolvesFrom == "" {
		return game.GameState{}, game.RuleViolation("%s is not an evolution card", evolution.Name)
	}
	if evolution.EvolvesFrom != instance.CardID {
		return game.GameState{}, game.RuleViolation(
			"%s does not evolve from %s", evolution.Name, instance.CardID)
	}

	evolved := Evolve(instance, evolution, gs.TurnNumber)

	next, err := ps.WithCardRemovedFromHand(evolutionCardID)
	if err != nil {
		return game.GameState{}, err
	}
	next, err = next.WithUpdatedInstance(evolved)
	if err != nil {
		return game.GameState{}, err
	}
	return gs.WithPlayerState(playerID, next)
}

// Evolve applies the evolution transformation to an instance. Damage is
// preserved as an absolute delta: newCurrentHP = newMaxHP - damage taken. A
// Pokémon at 0 HP pre-evolution comes back if the new max HP exceeds its
// accumulated damage. Every special condition and its bookkeeping clears.
func Evolve(instance game.CardInstance, evolution *cards.CardTemplate, turn int) game.CardInstance {
	damage := instance.DamageCounters()
	newCurrent := evolution.HP - damage
	if newCurrent < 0 {
		newCurrent = 0
	}

	out := instance.WithStatusesCleared()
	// Chain keeps prior card ids oldest-last.
	out.EvolutionChain = append([]string{instance.CardID}, instance.EvolutionChain...)
	out.CardID = evolution.CardID
	out.MaxHP = evolution.HP
	out.CurrentHP = newCurrent
	out.EvolvedAtTurn = turn
	return out
}
