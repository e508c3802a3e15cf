package rules

import (
	"context"

	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
)

// RetreatEngine executes the retreat turn action: cost determination, energy
// selection negotiation, the active/bench swap and bench renumbering.
type RetreatEngine struct {
	ruleEngine *CardRuleEngine
}

// NewRetreatEngine creates a retreat engine.
func NewRetreatEngine(ruleEngine *CardRuleEngine) *RetreatEngine {
	return &RetreatEngine{ruleEngine: ruleEngine}
}

// Execute retreats the player's active Pokémon into the bench Pokémon at
// target. selectedEnergyIDs pays the retreat cost; when the cost is positive
// and no energy was pre-selected a negotiation error names the exact
// requirement. Free retreat rejects any energy selection outright.
func (r *RetreatEngine) Execute(
	ctx context.Context,
	gs game.GameState,
	playerID string,
	target game.Position,
	selectedEnergyIDs []string,
) (game.GameState, error) {
	ps, err := gs.PlayerState(playerID)
	if err != nil {
		return game.GameState{}, err
	}
	if ps.ActivePokemon == nil {
		return game.GameState{}, game.RuleViolation("no active pokemon to retreat")
	}
	active := *ps.ActivePokemon

	benchIdx, ok := target.BenchIndex()
	if !ok || benchIdx >= len(ps.Bench) {
		return game.GameState{}, game.RuleViolation("no bench pokemon at %s", target)
	}

	blocked, err := r.ruleEngine.CannotRetreat(ctx, active)
	if err != nil {
		return game.GameState{}, err
	}
	if blocked {
		return game.GameState{}, game.RuleViolation("active pokemon cannot retreat")
	}

	cost, err := r.ruleEngine.RetreatCost(ctx, active)
	if err != nil {
		return game.GameState{}, err
	}

	if cost == 0 {
		if len(selectedEnergyIDs) > 0 {
			return game.GameState{}, game.RuleViolation("no energy selection needed for free retreat")
		}
	} else {
		if len(active.AttachedEnergy) < cost {
			return game.GameState{}, game.RuleViolation(
				"retreat requires %d energy, only %d attached", cost, len(active.AttachedEnergy))
		}
		if len(selectedEnergyIDs) == 0 {
			return game.GameState{}, &game.NegotiationError{
				Code:            game.NegotiationEnergySelectionRequired,
				Requirement:     game.NegotiationRequirement{Amount: cost},
				AvailableEnergy: append([]string(nil), active.AttachedEnergy...),
			}
		}
		if len(selectedEnergyIDs) != cost {
			return game.GameState{}, game.RuleViolation(
				"retreat requires exactly %d energy, %d selected", cost, len(selectedEnergyIDs))
		}
		for _, id := range selectedEnergyIDs {
			if !active.HasEnergyAttached(id) {
				return game.GameState{}, game.RuleViolation("energy %s is not attached to the active pokemon", id)
			}
		}
	}

	promoted := ps.Bench[benchIdx]

	// The retreating Pokémon pays its cost, sheds every special condition
	// and takes the vacated bench slot; slots below it stay contiguous.
	retreating := active.WithEnergyRemoved(selectedEnergyIDs).WithStatusesCleared()

	next, err := ps.WithBenchRemoved(benchIdx)
	if err != nil {
		return game.GameState{}, err
	}
	next = next.WithActive(&promoted)
	next, err = next.WithBenchAdded(retreating)
	if err != nil {
		return game.GameState{}, err
	}
	if cost > 0 {
		next = next.WithCardsDiscarded(selectedEnergyIDs)
	}

	return gs.WithPlayerState(playerID, next)
}

// BlockingStatuses exposes the retreat-blocking status list for callers that
// present the reason to users.
func BlockingStatuses() []cards.StatusCondition {
	return append([]cards.StatusCondition(nil), retreatBlockingStatuses...)
}
