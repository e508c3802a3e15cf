package match

import (
	"context"
	"sync"

	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Repository persists match aggregates.
type Repository interface {
	Create(ctx context.Context, m *Match) error
	FindByID(ctx context.Context, id string) (*Match, error)
	Save(ctx context.Context, m *Match) error
}

// Notifier pushes updated matches to connected players. A nil notifier is
// legal and means no pushes.
type Notifier interface {
	NotifyMatch(m *Match)
}

// Manager serializes action processing per match: load, apply through the
// engine, save, notify. The engine itself is pure, so a per-match mutex is
// the only synchronization needed.
type Manager struct {
	engine   *Engine
	repo     Repository
	notifier Notifier
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager.
func NewManager(engine *Engine, repo Repository, notifier Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		engine:   engine,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		locks:    map[string]*sync.Mutex{},
	}
}

// SetNotifier installs the push channel after construction; the server that
// implements it needs the manager first.
func (mgr *Manager) SetNotifier(n Notifier) {
	mgr.notifier = n
}

func (mgr *Manager) lockFor(matchID string) *sync.Mutex {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	l, ok := mgr.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		mgr.locks[matchID] = l
	}
	return l
}

// Create starts a new match.
func (mgr *Manager) Create(ctx context.Context, tournamentID string) (*Match, error) {
	m := New(tournamentID)
	if err := mgr.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	mgr.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.String("tournament_id", tournamentID),
	)
	return m, nil
}

// Get loads a match by id.
func (mgr *Manager) Get(ctx context.Context, matchID string) (*Match, error) {
	return mgr.repo.FindByID(ctx, matchID)
}

// SubmitAction applies one player action end to end and returns the new
// aggregate. Negotiation errors pass through untouched so the caller can
// re-prompt; nothing is persisted on any error.
func (mgr *Manager) SubmitAction(ctx context.Context, req game.ActionRequest) (*Match, error) {
	lock := mgr.lockFor(req.MatchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := mgr.repo.FindByID(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}
	next, err := mgr.engine.Submit(ctx, m, req)
	if err != nil {
		return nil, err
	}
	if err := mgr.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	if mgr.notifier != nil {
		mgr.notifier.NotifyMatch(next)
	}
	return next, nil
}

// AvailableActions lists the actions the player may currently submit.
func (mgr *Manager) AvailableActions(ctx context.Context, matchID, playerID string) ([]game.PlayerActionType, error) {
	m, err := mgr.repo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	phase := game.TurnPhase("")
	if m.Game != nil {
		phase = m.Game.Phase
	}
	return rules.AvailableActions(m.State, phase, m.Game, playerID), nil
}
