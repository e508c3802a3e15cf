package server

import (
	"errors"

	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"github.com/pokefree/tcg-server-go/internal/match"
)

// message is the outbound envelope.
type message struct {
	Type  string     `json:"type"`
	Match *matchView `json:"match,omitempty"`
	Error *errorView `json:"error,omitempty"`
}

type errorView struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`

	// Negotiation payload, present for selection-required errors.
	Requirement     *game.NegotiationRequirement `json:"requirement,omitempty"`
	AvailableEnergy []string                     `json:"availableEnergy,omitempty"`
	AvailableCards  []string                     `json:"availableCards,omitempty"`
}

func errorMessage(code, text string, reasons []string) message {
	return message{Type: "error", Error: &errorView{Code: code, Message: text, Reasons: reasons}}
}

// encodeError maps engine errors onto wire codes. Negotiation errors keep
// their full payload so the client can prompt and resubmit.
func encodeError(err error) message {
	var negotiation *game.NegotiationError
	if errors.As(err, &negotiation) {
		req := negotiation.Requirement
		return message{Type: "selection_required", Error: &errorView{
			Code:            negotiation.Code,
			Message:         negotiation.Error(),
			Requirement:     &req,
			AvailableEnergy: negotiation.AvailableEnergy,
			AvailableCards:  negotiation.AvailableCards,
		}}
	}
	var input *game.InputError
	if errors.As(err, &input) {
		return errorMessage("INVALID_INPUT", input.Error(), input.Reasons)
	}
	var validation *game.ActionValidationError
	if errors.As(err, &validation) {
		return errorMessage(string(validation.Reason), validation.Error(), nil)
	}
	var violation *game.RuleViolationError
	if errors.As(err, &violation) {
		return errorMessage("RULE_VIOLATION", violation.Error(), nil)
	}
	return errorMessage("INTERNAL", err.Error(), nil)
}

// matchView is the per-recipient projection of a match. The opponent's hand,
// deck and prizes are reduced to counts.
type matchView struct {
	ID        string          `json:"id"`
	State     game.MatchState `json:"state"`
	Player1ID string          `json:"player1Id,omitempty"`
	Player2ID string          `json:"player2Id,omitempty"`
	WinnerID  string          `json:"winnerId,omitempty"`
	WinReason rules.WinReason `json:"winReason,omitempty"`

	TurnNumber    int             `json:"turnNumber,omitempty"`
	Phase         game.TurnPhase  `json:"phase,omitempty"`
	CurrentPlayer string          `json:"currentPlayer,omitempty"`
	CoinFlip      *coinflip.State `json:"coinFlip,omitempty"`

	You      *playerView `json:"you,omitempty"`
	Opponent *playerView `json:"opponent,omitempty"`
}

type playerView struct {
	PlayerID      string              `json:"playerId"`
	Hand          []string            `json:"hand,omitempty"`
	HandCount     int                 `json:"handCount"`
	DeckCount     int                 `json:"deckCount"`
	PrizeCount    int                 `json:"prizeCount"`
	ActivePokemon *game.CardInstance  `json:"activePokemon,omitempty"`
	Bench         []game.CardInstance `json:"bench,omitempty"`
	DiscardPile   []string            `json:"discardPile,omitempty"`
}

func buildMatchView(m *match.Match, recipientID string) *matchView {
	view := &matchView{
		ID:        m.ID,
		State:     m.State,
		Player1ID: m.Player1ID,
		Player2ID: m.Player2ID,
		WinnerID:  m.WinnerID,
		WinReason: m.WinReason,
	}
	if m.Game == nil {
		return view
	}
	gs := m.Game
	view.TurnNumber = gs.TurnNumber
	view.Phase = gs.Phase
	view.CurrentPlayer = gs.CurrentPlayer
	view.CoinFlip = gs.CoinFlip

	self, err := gs.PlayerState(recipientID)
	if err != nil {
		return view
	}
	opponent, err := gs.OpponentState(recipientID)
	if err != nil {
		return view
	}
	view.You = ownView(self)
	view.Opponent = redactedView(opponent)
	return view
}

func ownView(ps game.PlayerGameState) *playerView {
	return &playerView{
		PlayerID:      ps.PlayerID,
		Hand:          ps.Hand,
		HandCount:     len(ps.Hand),
		DeckCount:     len(ps.Deck),
		PrizeCount:    len(ps.PrizeCards),
		ActivePokemon: ps.ActivePokemon,
		Bench:         ps.Bench,
		DiscardPile:   ps.DiscardPile,
	}
}

func redactedView(ps game.PlayerGameState) *playerView {
	return &playerView{
		PlayerID:      ps.PlayerID,
		HandCount:     len(ps.Hand),
		DeckCount:     len(ps.Deck),
		PrizeCount:    len(ps.PrizeCards),
		ActivePokemon: ps.ActivePokemon,
		Bench:         ps.Bench,
		DiscardPile:   ps.DiscardPile,
	}
}
