// Package match holds the match aggregate and the engine that applies player
// actions to it. The aggregate is what gets persisted; the engine is pure
// except for randomness and never mutates its input.
package match

import (
	"time"

	"github.com/google/uuid"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
)

// Match is the persistent aggregate for one game between two players.
type Match struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournamentId,omitempty"`

	Player1ID string `json:"player1Id"`
	Player2ID string `json:"player2Id"`

	State game.MatchState `json:"state"`

	// Decks holds the submitted deck lists by player id until the game state
	// is built in pre-game setup.
	Decks map[string][]string `json:"decks,omitempty"`
	// Approvals records per-player match approval during MATCH_APPROVAL.
	Approvals map[string]bool `json:"approvals,omitempty"`
	// SetupDone records per-player completion flags for the setup steps that
	// both players perform independently (initial draw, prizes, bench).
	SetupDone map[string]bool `json:"setupDone,omitempty"`

	Game *game.GameState `json:"game,omitempty"`

	WinnerID  string          `json:"winnerId,omitempty"`
	WinReason rules.WinReason `json:"winReason,omitempty"`

	// Version backs optimistic concurrency in the repository.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func nowUTC() time.Time { return time.Now().UTC() }

// New creates a match awaiting its players.
func New(tournamentID string) *Match {
	now := nowUTC()
	return &Match{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		State:        game.StateCreated,
		Decks:        map[string][]string{},
		Approvals:    map[string]bool{},
		SetupDone:    map[string]bool{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasPlayer reports whether the player id belongs to this match.
func (m *Match) HasPlayer(playerID string) bool {
	return playerID != "" && (playerID == m.Player1ID || playerID == m.Player2ID)
}

// PlayerIDs returns the joined player ids.
func (m *Match) PlayerIDs() []string {
	var out []string
	if m.Player1ID != "" {
		out = append(out, m.Player1ID)
	}
	if m.Player2ID != "" {
		out = append(out, m.Player2ID)
	}
	return out
}

// OpponentOf returns the other player's id.
func (m *Match) OpponentOf(playerID string) string {
	if playerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// clone deep-copies the aggregate so the engine can work on a scratch copy.
func (m *Match) clone() *Match {
	out := *m
	out.Decks = make(map[string][]string, len(m.Decks))
	for k, v := range m.Decks {
		out.Decks[k] = append([]string(nil), v...)
	}
	out.Approvals = make(map[string]bool, len(m.Approvals))
	for k, v := range m.Approvals {
		out.Approvals[k] = v
	}
	out.SetupDone = make(map[string]bool, len(m.SetupDone))
	for k, v := range m.SetupDone {
		out.SetupDone[k] = v
	}
	if m.Game != nil {
		g := *m.Game
		out.Game = &g
	}
	return &out
}

// transition moves the lifecycle to the next state, enforcing the graph.
func (m *Match) transition(to game.MatchState) error {
	if !rules.CanTransition(m.State, to) {
		return game.RuleViolation("illegal lifecycle transition %s -> %s", m.State, to)
	}
	m.State = to
	return nil
}
