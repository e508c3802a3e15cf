package game

import (
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
)

// DamageModifier is one entry in the temporary prevention/reduction ledgers.
// Amount is the reduction per hit; a prevention entry ignores Amount and
// blocks all damage. ExpiresAfterTurn bounds the effect's lifetime.
type DamageModifier struct {
	Amount           int
	AppliedAtTurn    int
	ExpiresAfterTurn int
}

// GameState is the immutable snapshot of a match in progress. Every mutator
// returns a new GameState; nothing is ever modified in place, so a state may
// be read concurrently and handed to multiple callers without locking.
type GameState struct {
	Player1 PlayerGameState
	Player2 PlayerGameState

	TurnNumber    int // >= 1
	Phase         TurnPhase
	CurrentPlayer string // player id

	LastAction    *ActionSummary
	ActionHistory []ActionSummary // append-only

	CoinFlip *coinflip.State

	// AbilityUsageThisTurn maps player id to the card ids whose abilities
	// were used this turn. Cleared when the turn changes.
	AbilityUsageThisTurn map[string][]string

	// DamagePrevention and DamageReduction map player id -> instance id ->
	// modifier.
	DamagePrevention map[string]map[string]DamageModifier
	DamageReduction  map[string]map[string]DamageModifier
}

// NewGameState creates the initial state for a match at turn 1.
func NewGameState(player1, player2 PlayerGameState, firstPlayer string) GameState {
	return GameState{
		Player1:              player1.clone(),
		Player2:              player2.clone(),
		TurnNumber:           1,
		Phase:                PhaseDraw,
		CurrentPlayer:        firstPlayer,
		AbilityUsageThisTurn: map[string][]string{},
		DamagePrevention:     map[string]map[string]DamageModifier{},
		DamageReduction:      map[string]map[string]DamageModifier{},
	}
}

func copyUsage(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = copyStrings(v)
	}
	return out
}

func copyModifiers(in map[string]map[string]DamageModifier) map[string]map[string]DamageModifier {
	out := make(map[string]map[string]DamageModifier, len(in))
	for player, byInstance := range in {
		inner := make(map[string]DamageModifier, len(byInstance))
		for id, m := range byInstance {
			inner[id] = m
		}
		out[player] = inner
	}
	return out
}

func (g GameState) clone() GameState {
	out := g
	out.Player1 = g.Player1.clone()
	out.Player2 = g.Player2.clone()
	out.ActionHistory = make([]ActionSummary, len(g.ActionHistory))
	copy(out.ActionHistory, g.ActionHistory)
	if g.LastAction != nil {
		last := *g.LastAction
		out.LastAction = &last
	}
	if g.CoinFlip != nil {
		flip := *g.CoinFlip
		flip.Results = append([]coinflip.Result(nil), g.CoinFlip.Results...)
		out.CoinFlip = &flip
	}
	out.AbilityUsageThisTurn = copyUsage(g.AbilityUsageThisTurn)
	out.DamagePrevention = copyModifiers(g.DamagePrevention)
	out.DamageReduction = copyModifiers(g.DamageReduction)
	return out
}

// PlayerState returns the state for the given player id.
func (g GameState) PlayerState(playerID string) (PlayerGameState, error) {
	switch playerID {
	case g.Player1.PlayerID:
		return g.Player1, nil
	case g.Player2.PlayerID:
		return g.Player2, nil
	}
	return PlayerGameState{}, fmt.Errorf("player %s not in match", playerID)
}

// OpponentState returns the state of the other player.
func (g GameState) OpponentState(playerID string) (PlayerGameState, error) {
	switch playerID {
	case g.Player1.PlayerID:
		return g.Player2, nil
	case g.Player2.PlayerID:
		return g.Player1, nil
	}
	return PlayerGameState{}, fmt.Errorf("player %s not in match", playerID)
}

// OpponentID returns the other player's id.
func (g GameState) OpponentID(playerID string) string {
	if playerID == g.Player1.PlayerID {
		return g.Player2.PlayerID
	}
	return g.Player1.PlayerID
}

// PlayerNumber returns 1 or 2 for the given player id.
func (g GameState) PlayerNumber(playerID string) (int, error) {
	switch playerID {
	case g.Player1.PlayerID:
		return 1, nil
	case g.Player2.PlayerID:
		return 2, nil
	}
	return 0, fmt.Errorf("player %s not in match", playerID)
}

// WithPlayerState returns a copy with the given player's half replaced.
func (g GameState) WithPlayerState(playerID string, ps PlayerGameState) (GameState, error) {
	out := g.clone()
	switch playerID {
	case g.Player1.PlayerID:
		out.Player1 = ps.clone()
	case g.Player2.PlayerID:
		out.Player2 = ps.clone()
	default:
		return GameState{}, fmt.Errorf("player %s not in match", playerID)
	}
	return out, nil
}

// WithBothPlayerStates returns a copy with both halves replaced. The order
// of arguments follows player numbering, not turn order.
func (g GameState) WithBothPlayerStates(p1, p2 PlayerGameState) GameState {
	out := g.clone()
	out.Player1 = p1.clone()
	out.Player2 = p2.clone()
	return out
}

// WithPhase returns a copy in the given phase.
func (g GameState) WithPhase(phase TurnPhase) GameState {
	out := g.clone()
	out.Phase = phase
	return out
}

// WithTurnAdvanced returns a copy for the start of the next turn: turn number
// incremented, current player swapped, phase reset to DRAW and the per-turn
// ability usage cleared.
func (g GameState) WithTurnAdvanced() GameState {
	out := g.clone()
	out.TurnNumber++
	out.CurrentPlayer = g.OpponentID(g.CurrentPlayer)
	out.Phase = PhaseDraw
	out.AbilityUsageThisTurn = map[string][]string{}
	return out
}

// WithCurrentPlayer returns a copy with the turn owner replaced.
func (g GameState) WithCurrentPlayer(playerID string) GameState {
	out := g.clone()
	out.CurrentPlayer = playerID
	return out
}

// WithActionAppended returns a copy with the summary recorded as the last
// action and appended to the history.
func (g GameState) WithActionAppended(summary ActionSummary) GameState {
	out := g.clone()
	out.ActionHistory = append(out.ActionHistory, summary)
	out.LastAction = &summary
	return out
}

// WithCoinFlip returns a copy with the coin-flip state replaced (nil clears).
func (g GameState) WithCoinFlip(flip *coinflip.State) GameState {
	out := g.clone()
	if flip == nil {
		out.CoinFlip = nil
		return out
	}
	copied := *flip
	copied.Results = append([]coinflip.Result(nil), flip.Results...)
	out.CoinFlip = &copied
	return out
}

// WithAbilityUsed returns a copy recording that the player used the card's
// ability this turn.
func (g GameState) WithAbilityUsed(playerID, cardID string) GameState {
	out := g.clone()
	out.AbilityUsageThisTurn[playerID] = append(out.AbilityUsageThisTurn[playerID], cardID)
	return out
}

// AbilityUsedThisTurn reports whether the player already used the card's
// ability this turn.
func (g GameState) AbilityUsedThisTurn(playerID, cardID string) bool {
	for _, id := range g.AbilityUsageThisTurn[playerID] {
		if id == cardID {
			return true
		}
	}
	return false
}

// WithDamagePrevention returns a copy with a prevention ledger entry for the
// player's instance.
func (g GameState) WithDamagePrevention(playerID, instanceID string, m DamageModifier) GameState {
	out := g.clone()
	if out.DamagePrevention[playerID] == nil {
		out.DamagePrevention[playerID] = map[string]DamageModifier{}
	}
	out.DamagePrevention[playerID][instanceID] = m
	return out
}

// WithDamageReduction returns a copy with a reduction ledger entry for the
// player's instance.
func (g GameState) WithDamageReduction(playerID, instanceID string, m DamageModifier) GameState {
	out := g.clone()
	if out.DamageReduction[playerID] == nil {
		out.DamageReduction[playerID] = map[string]DamageModifier{}
	}
	out.DamageReduction[playerID][instanceID] = m
	return out
}

// WithExpiredModifiersCleared returns a copy with ledger entries whose
// lifetime ended at or before the given turn removed.
func (g GameState) WithExpiredModifiersCleared(turn int) GameState {
	out := g.clone()
	for _, ledger := range []map[string]map[string]DamageModifier{out.DamagePrevention, out.DamageReduction} {
		for player, byInstance := range ledger {
			for id, m := range byInstance {
				if m.ExpiresAfterTurn > 0 && m.ExpiresAfterTurn <= turn {
					delete(byInstance, id)
				}
			}
			if len(byInstance) == 0 {
				delete(ledger, player)
			}
		}
	}
	return out
}

// ActivePrevention returns the prevention entry for the player's instance,
// if one is live.
func (g GameState) ActivePrevention(playerID, instanceID string) (DamageModifier, bool) {
	m, ok := g.DamagePrevention[playerID][instanceID]
	return m, ok
}

// ActiveReduction returns the reduction entry for the player's instance, if
// one is live.
func (g GameState) ActiveReduction(playerID, instanceID string) (DamageModifier, bool) {
	m, ok := g.DamageReduction[playerID][instanceID]
	return m, ok
}
