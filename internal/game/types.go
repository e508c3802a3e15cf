package game

import "fmt"

// MatchState represents the lifecycle state of a match.
type MatchState string

const (
	StateCreated              MatchState = "CREATED"
	StateWaitingForPlayers    MatchState = "WAITING_FOR_PLAYERS"
	StateDeckValidation       MatchState = "DECK_VALIDATION"
	StateMatchApproval        MatchState = "MATCH_APPROVAL"
	StatePreGameSetup         MatchState = "PRE_GAME_SETUP"
	StateDrawingCards         MatchState = "DRAWING_CARDS"
	StateSetPrizeCards        MatchState = "SET_PRIZE_CARDS"
	StateSelectActivePokemon  MatchState = "SELECT_ACTIVE_POKEMON"
	StateSelectBenchPokemon   MatchState = "SELECT_BENCH_POKEMON"
	StateFirstPlayerSelection MatchState = "FIRST_PLAYER_SELECTION"
	StatePlayerTurn           MatchState = "PLAYER_TURN"
	StateBetweenTurns         MatchState = "BETWEEN_TURNS"
	StateMatchEnded           MatchState = "MATCH_ENDED"
	StateCancelled            MatchState = "CANCELLED"
)

// IsTerminal reports whether the state has no outgoing transitions.
func (s MatchState) IsTerminal() bool {
	return s == StateMatchEnded || s == StateCancelled
}

// TurnPhase subdivides a PLAYER_TURN.
type TurnPhase string

const (
	PhaseDraw                TurnPhase = "DRAW"
	PhaseMain                TurnPhase = "MAIN_PHASE"
	PhaseAttack              TurnPhase = "ATTACK"
	PhaseEnd                 TurnPhase = "END"
	PhaseSelectActivePokemon TurnPhase = "SELECT_ACTIVE_POKEMON"
)

// PlayerActionType enumerates every action a player can submit.
type PlayerActionType string

const (
	ActionJoinMatch          PlayerActionType = "JOIN_MATCH"
	ActionSubmitDeck         PlayerActionType = "SUBMIT_DECK"
	ActionApproveMatch       PlayerActionType = "APPROVE_MATCH"
	ActionDrawInitialHand    PlayerActionType = "DRAW_INITIAL_HAND"
	ActionSetPrizeCards      PlayerActionType = "SET_PRIZE_CARDS"
	ActionSetActivePokemon   PlayerActionType = "SET_ACTIVE_POKEMON"
	ActionSelectBenchPokemon PlayerActionType = "SELECT_BENCH_POKEMON"
	ActionGenerateCoinFlip   PlayerActionType = "GENERATE_COIN_FLIP"
	ActionDrawCard           PlayerActionType = "DRAW_CARD"
	ActionAttachEnergy       PlayerActionType = "ATTACH_ENERGY"
	ActionPlayPokemon        PlayerActionType = "PLAY_POKEMON"
	ActionPlayTrainer        PlayerActionType = "PLAY_TRAINER"
	ActionUseAbility         PlayerActionType = "USE_ABILITY"
	ActionEvolvePokemon      PlayerActionType = "EVOLVE_POKEMON"
	ActionRetreat            PlayerActionType = "RETREAT"
	ActionAttack             PlayerActionType = "ATTACK"
	ActionEndTurn            PlayerActionType = "END_TURN"
	ActionConcede            PlayerActionType = "CONCEDE"
)

// Position locates a card instance in play. Bench positions are contiguous
// from BENCH_0; renumbering after a retreat or knockout keeps them so.
type Position string

const (
	PositionActive Position = "ACTIVE"
	PositionBench0 Position = "BENCH_0"
	PositionBench1 Position = "BENCH_1"
	PositionBench2 Position = "BENCH_2"
	PositionBench3 Position = "BENCH_3"
	PositionBench4 Position = "BENCH_4"
)

// MaxBenchSize is the number of bench slots per player.
const MaxBenchSize = 5

// MaxPrizeCards is the number of prize cards set aside at match start.
const MaxPrizeCards = 6

// BenchPosition returns the position for a bench index.
func BenchPosition(index int) Position {
	return Position(fmt.Sprintf("BENCH_%d", index))
}

// BenchIndex returns the bench slot number for a bench position.
func (p Position) BenchIndex() (int, bool) {
	var idx int
	if _, err := fmt.Sscanf(string(p), "BENCH_%d", &idx); err != nil {
		return 0, false
	}
	if idx < 0 || idx >= MaxBenchSize {
		return 0, false
	}
	return idx, true
}

// IsBench reports whether the position is a bench slot.
func (p Position) IsBench() bool {
	_, ok := p.BenchIndex()
	return ok
}
