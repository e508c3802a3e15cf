package match

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/pokefree/tcg-server-go/internal/cards"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/coinflip"
	"github.com/pokefree/tcg-server-go/internal/game/conditions"
	"github.com/pokefree/tcg-server-go/internal/game/effects"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const (
	// DeckSize is the required deck list length.
	DeckSize = 60
	// InitialHandSize is drawn during setup.
	InitialHandSize = 7
	// MaxCopiesPerCard bounds duplicates in a deck; basic energy is exempt.
	MaxCopiesPerCard = 4
)

// Engine applies player actions to a match. It is stateless between calls;
// every Submit works on a copy of the aggregate and returns the new version.
type Engine struct {
	lookup cards.Lookup
	logger *zap.Logger

	ruleEngine   *rules.CardRuleEngine
	retreat      *rules.RetreatEngine
	evolution    *rules.EvolutionEngine
	betweenTurns *rules.BetweenTurnsEngine
	trainer      *effects.TrainerPipeline
	ability      *effects.AbilityPipeline
	attack       *effects.AttackPipeline
}

// NewEngine wires the rulebook and the effect pipelines onto a card catalog.
func NewEngine(lookup cards.Lookup, logger *zap.Logger) *Engine {
	evaluator := conditions.NewEvaluator(lookup)
	ruleEngine := rules.NewCardRuleEngine(lookup)
	betweenTurns := rules.NewBetweenTurnsEngine(ruleEngine)
	return &Engine{
		lookup:       lookup,
		logger:       logger,
		ruleEngine:   ruleEngine,
		retreat:      rules.NewRetreatEngine(ruleEngine),
		evolution:    rules.NewEvolutionEngine(lookup),
		betweenTurns: betweenTurns,
		trainer:      effects.NewTrainerPipeline(lookup, evaluator, logger),
		ability:      effects.NewAbilityPipeline(lookup, evaluator, ruleEngine, logger),
		attack:       effects.NewAttackPipeline(lookup, evaluator, ruleEngine, betweenTurns, logger),
	}
}

// Submit applies one action request and returns the updated match. The input
// aggregate is never modified; on error the caller's copy is still valid.
func (e *Engine) Submit(ctx context.Context, m *Match, req game.ActionRequest) (*Match, error) {
	if m.State.IsTerminal() {
		return nil, &game.ActionValidationError{
			Reason: game.ReasonInvalidState,
			State:  m.State,
			Action: req.Type,
		}
	}
	out := m.clone()

	// The pre-board lifecycle actions run before a game state exists and are
	// gated here rather than by the turn-action tables.
	switch req.Type {
	case game.ActionJoinMatch:
		if err := e.join(out, req); err != nil {
			return nil, err
		}
		return e.finish(ctx, out, req)
	case game.ActionSubmitDeck:
		if err := e.submitDeck(ctx, out, req); err != nil {
			return nil, err
		}
		return e.finish(ctx, out, req)
	case game.ActionApproveMatch:
		if err := e.approveMatch(out, req); err != nil {
			return nil, err
		}
		return e.finish(ctx, out, req)
	}

	if !out.HasPlayer(req.PlayerID) {
		return nil, game.RuleViolation("player %s is not in match %s", req.PlayerID, out.ID)
	}

	var gsPtr *game.GameState
	phase := game.TurnPhase("")
	currentPlayer := ""
	if out.Game != nil {
		gsPtr = out.Game
		phase = out.Game.Phase
		currentPlayer = out.Game.CurrentPlayer
	}
	if err := rules.ValidateAction(out.State, phase, req.Type, currentPlayer, req.PlayerID, gsPtr); err != nil {
		return nil, err
	}

	var err error
	switch req.Type {
	case game.ActionConcede:
		err = e.concede(out, req)
	case game.ActionDrawInitialHand:
		err = e.drawInitialHand(out, req)
	case game.ActionSetPrizeCards:
		err = e.setPrizeCards(out, req)
	case game.ActionSetActivePokemon:
		err = e.setActivePokemon(ctx, out, req)
	case game.ActionSelectBenchPokemon:
		err = e.selectBenchPokemon(ctx, out, req)
	case game.ActionGenerateCoinFlip:
		err = e.generateCoinFlip(ctx, out, req)
	default:
		err = e.turnAction(ctx, out, req)
	}
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, out, req)
}

// finish records the action, evaluates win conditions and stamps the update.
func (e *Engine) finish(ctx context.Context, out *Match, req game.ActionRequest) (*Match, error) {
	if out.Game != nil {
		gs := out.Game.WithActionAppended(
			game.NewActionSummary(req.PlayerID, req.Type, out.Game.TurnNumber, req.Data))
		out.Game = &gs
	}

	if out.Game != nil && (out.State == game.StatePlayerTurn || out.State == game.StateBetweenTurns) {
		winner, reason, won := rules.CheckWinConditions(out.Game.Player1, out.Game.Player2)
		// Deck-out only triggers on a failed draw, handled in the draw action
		// itself; an empty deck alone is not yet a loss.
		if won && reason != rules.WinByDeckOut {
			if err := e.endMatch(out, winner, reason); err != nil {
				return nil, err
			}
		}
	}

	out.Version++
	out.UpdatedAt = nowUTC()
	e.logger.Debug("action applied",
		zap.String("match_id", out.ID),
		zap.String("player_id", req.PlayerID),
		zap.String("action", string(req.Type)),
		zap.String("state", string(out.State)),
	)
	return out, nil
}

func (e *Engine) endMatch(out *Match, winnerID string, reason rules.WinReason) error {
	if err := out.transition(game.StateMatchEnded); err != nil {
		return err
	}
	out.WinnerID = winnerID
	out.WinReason = reason
	return nil
}

func (e *Engine) join(out *Match, req game.ActionRequest) error {
	if out.State == game.StateCreated {
		if err := out.transition(game.StateWaitingForPlayers); err != nil {
			return err
		}
	}
	if out.State != game.StateWaitingForPlayers {
		return game.RuleViolation("match %s is not accepting players", out.ID)
	}
	if out.HasPlayer(req.PlayerID) {
		return game.RuleViolation("player %s already joined", req.PlayerID)
	}
	switch {
	case out.Player1ID == "":
		out.Player1ID = req.PlayerID
	case out.Player2ID == "":
		out.Player2ID = req.PlayerID
	}
	if out.Player1ID != "" && out.Player2ID != "" {
		return out.transition(game.StateDeckValidation)
	}
	return nil
}

func (e *Engine) submitDeck(ctx context.Context, out *Match, req game.ActionRequest) error {
	if out.State != game.StateDeckValidation {
		return game.RuleViolation("match %s is not validating decks", out.ID)
	}
	if !out.HasPlayer(req.PlayerID) {
		return game.RuleViolation("player %s is not in match %s", req.PlayerID, out.ID)
	}
	deck := req.Data.SelectedCardIDs
	if err := e.validateDeck(ctx, deck); err != nil {
		return err
	}
	out.Decks[req.PlayerID] = append([]string(nil), deck...)
	if len(out.Decks) == 2 {
		return out.transition(game.StateMatchApproval)
	}
	return nil
}

func (e *Engine) validateDeck(ctx context.Context, deck []string) error {
	if len(deck) != DeckSize {
		return game.RuleViolation("deck must contain %d cards, got %d", DeckSize, len(deck))
	}
	counts := map[string]int{}
	for _, id := range deck {
		counts[id]++
	}
	for id, n := range counts {
		tmpl, err := e.lookup.GetCardEntity(ctx, id)
		if err != nil {
			return game.RuleViolation("unknown card %s in deck", id)
		}
		if tmpl.IsBasicEnergy() {
			continue
		}
		if n > MaxCopiesPerCard {
			return game.RuleViolation("deck contains %d copies of %s, limit is %d", n, id, MaxCopiesPerCard)
		}
	}
	return nil
}

func (e *Engine) approveMatch(out *Match, req game.ActionRequest) error {
	if out.State != game.StateMatchApproval {
		return game.RuleViolation("match %s is not awaiting approval", out.ID)
	}
	if !out.HasPlayer(req.PlayerID) {
		return game.RuleViolation("player %s is not in match %s", req.PlayerID, out.ID)
	}
	out.Approvals[req.PlayerID] = true
	if !out.Approvals[out.Player1ID] || !out.Approvals[out.Player2ID] {
		return nil
	}

	if err := out.transition(game.StatePreGameSetup); err != nil {
		return err
	}
	p1, err := e.buildPlayerState(out.Player1ID, out.Decks[out.Player1ID])
	if err != nil {
		return err
	}
	p2, err := e.buildPlayerState(out.Player2ID, out.Decks[out.Player2ID])
	if err != nil {
		return err
	}
	gs := game.NewGameState(p1, p2, out.Player1ID)
	out.Game = &gs
	out.Decks = map[string][]string{}
	out.SetupDone = map[string]bool{}
	return out.transition(game.StateDrawingCards)
}

func (e *Engine) buildPlayerState(playerID string, deck []string) (game.PlayerGameState, error) {
	shuffled, err := shuffleDeck(deck)
	if err != nil {
		return game.PlayerGameState{}, err
	}
	return game.PlayerGameState{PlayerID: playerID, Deck: shuffled}, nil
}

// shuffleDeck returns a uniformly shuffled copy of the deck list.
func shuffleDeck(in []string) ([]string, error) {
	out := append([]string(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("shuffle deck: %w", err)
		}
		j := int(n.Int64())
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (e *Engine) drawInitialHand(out *Match, req game.ActionRequest) error {
	if out.SetupDone[req.PlayerID] {
		return game.RuleViolation("player %s already drew the initial hand", req.PlayerID)
	}
	ps, err := out.Game.PlayerState(req.PlayerID)
	if err != nil {
		return err
	}
	ps, _ = ps.WithCardsDrawn(InitialHandSize)
	gs, err := out.Game.WithPlayerState(req.PlayerID, ps)
	if err != nil {
		return err
	}
	out.Game = &gs
	return e.markSetupDone(out, req.PlayerID, game.StateSetPrizeCards)
}

func (e *Engine) setPrizeCards(out *Match, req game.ActionRequest) error {
	if out.SetupDone[req.PlayerID] {
		return game.RuleViolation("player %s already set prize cards", req.PlayerID)
	}
	ps, err := out.Game.PlayerState(req.PlayerID)
	if err != nil {
		return err
	}
	ps, err = ps.WithPrizesSet(game.MaxPrizeCards)
	if err != nil {
		return err
	}
	gs, err := out.Game.WithPlayerState(req.PlayerID, ps)
	if err != nil {
		return err
	}
	out.Game = &gs
	return e.markSetupDone(out, req.PlayerID, game.StateSelectActivePokemon)
}

// markSetupDone flags the player's setup step and advances the lifecycle once
// both players have completed it.
func (e *Engine) markSetupDone(out *Match, playerID string, next game.MatchState) error {
	out.SetupDone[playerID] = true
	if out.SetupDone[out.Player1ID] && out.SetupDone[out.Player2ID] {
		out.SetupDone = map[string]bool{}
		return out.transition(next)
	}
	return nil
}

// setActivePokemon serves both the setup step (play a basic from hand) and
// the in-turn replacement of a knocked-out active (promote from bench).
func (e *Engine) setActivePokemon(ctx context.Context, out *Match, req game.ActionRequest) error {
	gs := *out.Game
	ps, err := gs.PlayerState(req.PlayerID)
	if err != nil {
		return err
	}

	if out.State == game.StatePlayerTurn {
		if ps.ActivePokemon != nil {
			return game.RuleViolation("player %s already has an active pokemon", req.PlayerID)
		}
		idx, ok := req.Data.Target.BenchIndex()
		if !ok || idx >= len(ps.Bench) {
			return game.RuleViolation("no bench pokemon at %s", req.Data.Target)
		}
		promoted := ps.Bench[idx]
		ps, err = ps.WithBenchRemoved(idx)
		if err != nil {
			return err
		}
		ps = ps.WithActive(&promoted)
		gs, err = gs.WithPlayerState(req.PlayerID, ps)
		if err != nil {
			return err
		}
		if gs.CurrentPlayer == req.PlayerID && gs.Phase == game.PhaseSelectActivePokemon {
			gs = gs.WithPhase(game.PhaseEnd)
		}
		out.Game = &gs
		return nil
	}

	if ps.ActivePokemon != nil {
		return game.RuleViolation("player %s already has an active pokemon", req.PlayerID)
	}
	instance, err := e.placeFromHand(ctx, &ps, req.Data.CardID)
	if err != nil {
		return err
	}
	ps = ps.WithActive(&instance)
	gs, err = gs.WithPlayerState(req.PlayerID, ps)
	if err != nil {
		return err
	}
	out.Game = &gs
	if out.State == game.StateSelectActivePokemon {
		return e.markSetupDone(out, req.PlayerID, game.StateSelectBenchPokemon)
	}
	return nil
}

// selectBenchPokemon places setup bench Pokémon; a request with Approve set
// marks the player done. Both players done moves to first-player selection.
func (e *Engine) selectBenchPokemon(ctx context.Context, out *Match, req game.ActionRequest) error {
	if req.Data.Approve {
		return e.markSetupDone(out, req.PlayerID, game.StateFirstPlayerSelection)
	}
	gs := *out.Game
	ps, err := gs.PlayerState(req.PlayerID)
	if err != nil {
		return err
	}
	instance, err := e.placeFromHand(ctx, &ps, req.Data.CardID)
	if err != nil {
		return err
	}
	ps, err = ps.WithBenchAdded(instance)
	if err != nil {
		return err
	}
	gs, err = gs.WithPlayerState(req.PlayerID, ps)
	if err != nil {
		return err
	}
	out.Game = &gs
	return nil
}

// placeFromHand removes a basic Pokémon card from the hand and builds its
// in-play instance.
func (e *Engine) placeFromHand(ctx context.Context, ps *game.PlayerGameState, cardID string) (game.CardInstance, error) {
	if !ps.HasInHand(cardID) {
		return game.CardInstance{}, game.RuleViolation("card %s is not in hand", cardID)
	}
	tmpl, err := e.lookup.GetCardEntity(ctx, cardID)
	if err != nil {
		return game.CardInstance{}, fmt.Errorf("resolve card %s: %w", cardID, err)
	}
	if !tmpl.IsPokemon() || tmpl.Stage != cards.StageBasic {
		return game.CardInstance{}, game.RuleViolation("card %s is not a basic pokemon", cardID)
	}
	next, err := ps.WithCardRemovedFromHand(cardID)
	if err != nil {
		return game.CardInstance{}, err
	}
	*ps = next
	return game.CardInstance{
		InstanceID: uuid.NewString(),
		CardID:     cardID,
		CurrentHP:  tmpl.HP,
		MaxHP:      tmpl.HP,
	}, nil
}

// generateCoinFlip advances whatever flip sequence is pending: it generates
// the next result, or with Approve set records the player's approval. Settled
// sequences are then routed by context.
func (e *Engine) generateCoinFlip(ctx context.Context, out *Match, req game.ActionRequest) error {
	gs := *out.Game
	if gs.CoinFlip == nil {
		if out.State != game.StateFirstPlayerSelection {
			return game.RuleViolation("no coin flip is pending")
		}
		gs = gs.WithCoinFlip(coinflip.NewFirstPlayerState())
	}

	flip := *gs.CoinFlip
	if req.Data.Approve {
		if !flip.IsComplete() {
			return game.RuleViolation("coin flip sequence is still in progress")
		}
		n, err := gs.PlayerNumber(req.PlayerID)
		if err != nil {
			return err
		}
		flip, err = flip.WithApproval(n)
		if err != nil {
			return err
		}
	} else {
		if flip.IsComplete() {
			return game.RuleViolation("coin flip sequence is awaiting approval")
		}
		result, err := coinflip.Flip()
		if err != nil {
			return err
		}
		flip, err = flip.WithResult(result)
		if err != nil {
			return err
		}
	}
	gs = gs.WithCoinFlip(&flip)
	out.Game = &gs

	if !flip.IsSettled() {
		return nil
	}
	switch flip.Context {
	case coinflip.ContextFirstPlayer:
		first := out.Player1ID
		if !coinflip.Succeeded(flip.Results) {
			first = out.Player2ID
		}
		gs = gs.WithCoinFlip(nil).WithCurrentPlayer(first)
		out.Game = &gs
		return out.transition(game.StatePlayerTurn)
	case coinflip.ContextStatusCheck:
		resolved, err := e.betweenTurns.ResolveStatusCheck(ctx, gs)
		if err != nil {
			return err
		}
		out.Game = &resolved
		return e.continueBetweenTurns(ctx, out)
	case coinflip.ContextAttack:
		// The attacker resubmits the attack now that the results are final.
		return nil
	}
	return fmt.Errorf("unknown coin flip context %q", flip.Context)
}

// turnAction executes the PLAYER_TURN actions and advances the phase.
func (e *Engine) turnAction(ctx context.Context, out *Match, req game.ActionRequest) error {
	gs := *out.Game
	var err error
	advancePhase := true

	switch req.Type {
	case game.ActionDrawCard:
		gs, err = e.drawCard(out, gs, req)
		if err != nil {
			return err
		}
		if out.State.IsTerminal() {
			out.Game = &gs
			return nil
		}

	case game.ActionAttachEnergy:
		gs, err = e.attachEnergy(ctx, gs, req)

	case game.ActionPlayPokemon:
		gs, err = e.playPokemon(ctx, gs, req)

	case game.ActionPlayTrainer:
		gs, err = e.trainer.Execute(ctx, gs, req.PlayerID, req.Data)

	case game.ActionUseAbility:
		gs, err = e.ability.Execute(ctx, gs, req.PlayerID, req.Data)

	case game.ActionEvolvePokemon:
		gs, err = e.evolution.Execute(ctx, gs, req.PlayerID, req.Data.Target, req.Data.EvolutionCardID)

	case game.ActionRetreat:
		if rules.RetreatedThisTurn(gs, req.PlayerID) {
			return game.RuleViolation("already retreated this turn")
		}
		gs, err = e.retreat.Execute(ctx, gs, req.PlayerID, req.Data.Target, req.Data.SelectedEnergyIDs)

	case game.ActionAttack:
		var pending bool
		gs, pending, err = e.attack.Execute(ctx, gs, req.PlayerID, req.Data)
		if err == nil && !pending {
			gs = gs.WithPhase(game.PhaseEnd)
		}
		advancePhase = false

	case game.ActionEndTurn:
		out.Game = &gs
		return e.endTurn(ctx, out, req)

	default:
		return &game.ActionValidationError{
			Reason: game.ReasonInvalidState,
			State:  out.State,
			Phase:  gs.Phase,
			Action: req.Type,
		}
	}
	if err != nil {
		return err
	}

	if advancePhase {
		if next, ok := rules.NextPhase(gs.Phase, req.Type); ok && next != gs.Phase {
			gs = gs.WithPhase(next)
		}
	}
	out.Game = &gs
	return nil
}

// drawCard draws the turn's card. An empty deck means the player cannot draw
// and loses the match.
func (e *Engine) drawCard(out *Match, gs game.GameState, req game.ActionRequest) (game.GameState, error) {
	ps, err := gs.PlayerState(req.PlayerID)
	if err != nil {
		return game.GameState{}, err
	}
	if len(ps.Deck) == 0 {
		if err := e.endMatch(out, gs.OpponentID(req.PlayerID), rules.WinByDeckOut); err != nil {
			return game.GameState{}, err
		}
		return gs, nil
	}
	ps, _ = ps.WithCardsDrawn(1)
	return gs.WithPlayerState(req.PlayerID, ps)
}

func (e *Engine) attachEnergy(ctx context.Context, gs game.GameState, req game.ActionRequest) (game.GameState, error) {
	if rules.EnergyAttachedThisTurn(gs, req.PlayerID) {
		return game.GameState{}, game.RuleViolation("already attached energy this turn")
	}
	ps, err := gs.PlayerState(req.PlayerID)
	if err != nil {
		return game.GameState{}, err
	}
	if !ps.HasInHand(req.Data.CardID) {
		return game.GameState{}, game.RuleViolation("card %s is not in hand", req.Data.CardID)
	}
	tmpl, err := e.lookup.GetCardEntity(ctx, req.Data.CardID)
	if err != nil {
		return game.GameState{}, fmt.Errorf("resolve card %s: %w", req.Data.CardID, err)
	}
	if !tmpl.IsBasicEnergy() {
		return game.GameState{}, game.RuleViolation("card %s is not an energy card", req.Data.CardID)
	}

	target, ok := e.findAttachTarget(ps, req.Data)
	if !ok {
		return game.GameState{}, game.RuleViolation("no pokemon to attach energy to")
	}
	ps, err = ps.WithCardRemovedFromHand(req.Data.CardID)
	if err != nil {
		return game.GameState{}, err
	}
	ps, err = ps.WithUpdatedInstance(target.WithEnergyAttached(req.Data.CardID))
	if err != nil {
		return game.GameState{}, err
	}
	return gs.WithPlayerState(req.PlayerID, ps)
}

func (e *Engine) findAttachTarget(ps game.PlayerGameState, data game.ActionData) (game.CardInstance, bool) {
	if data.TargetInstanceID != "" {
		return ps.FindInstance(data.TargetInstanceID)
	}
	pos := data.Target
	if pos == "" {
		pos = game.PositionActive
	}
	return ps.InstanceAt(pos)
}

func (e *Engine) playPokemon(ctx context.Context, gs game.GameState, req game.ActionRequest) (game.GameState, error) {
	ps, err := gs.PlayerState(req.PlayerID)
	if err != nil {
		return game.GameState{}, err
	}
	if len(ps.Bench) >= game.MaxBenchSize {
		return game.GameState{}, game.RuleViolation("bench is full")
	}
	instance, err := e.placeFromHand(ctx, &ps, req.Data.CardID)
	if err != nil {
		return game.GameState{}, err
	}
	// Marks the entry turn so the Pokémon cannot evolve until next turn.
	instance.EvolvedAtTurn = gs.TurnNumber
	ps, err = ps.WithBenchAdded(instance)
	if err != nil {
		return game.GameState{}, err
	}
	return gs.WithPlayerState(req.PlayerID, ps)
}

// endTurn moves through BETWEEN_TURNS: the checkup runs, and the match either
// waits for a status-check coin flip or advances to the next player's turn.
func (e *Engine) endTurn(ctx context.Context, out *Match, req game.ActionRequest) error {
	if err := out.transition(game.StateBetweenTurns); err != nil {
		return err
	}
	start := *out.Game
	// An attack flip abandoned by ending the turn is discarded so the
	// checkup can queue its own status checks.
	if start.CoinFlip != nil && start.CoinFlip.Context == coinflip.ContextAttack {
		start = start.WithCoinFlip(nil)
	}
	gs, needsFlip, err := e.betweenTurns.Process(ctx, start)
	if err != nil {
		return err
	}
	out.Game = &gs
	if needsFlip {
		return nil
	}
	return e.advanceTurn(out)
}

// continueBetweenTurns re-runs the checkup after a resolved status check; it
// either queues the next check or hands the turn over.
func (e *Engine) continueBetweenTurns(ctx context.Context, out *Match) error {
	gs, needsFlip, err := e.betweenTurns.Process(ctx, *out.Game)
	if err != nil {
		return err
	}
	out.Game = &gs
	if needsFlip {
		return nil
	}
	return e.advanceTurn(out)
}

func (e *Engine) advanceTurn(out *Match) error {
	gs := out.Game.WithTurnAdvanced()
	// A player whose active was knocked out chooses a replacement before
	// anything else happens on their turn.
	ps, err := gs.PlayerState(gs.CurrentPlayer)
	if err != nil {
		return err
	}
	if ps.ActivePokemon == nil {
		gs = gs.WithPhase(game.PhaseSelectActivePokemon)
	}
	out.Game = &gs
	return out.transition(game.StatePlayerTurn)
}

// concede ends the match in the opponent's favor. Before an opponent has
// joined there is nobody to award the win to, so the match is cancelled
// instead.
func (e *Engine) concede(out *Match, req game.ActionRequest) error {
	opponent := out.OpponentOf(req.PlayerID)
	if opponent == "" {
		return out.transition(game.StateCancelled)
	}
	return e.endMatch(out, opponent, rules.WinByConcession)
}
