package match

import (
	"context"
	"sync"
	"testing"

	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepository is a map-backed Repository for manager tests.
type memoryRepository struct {
	mu      sync.Mutex
	matches map[string]*Match
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{matches: map[string]*Match{}}
}

func (r *memoryRepository) Create(_ context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = m
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, game.RuleViolation("match %s not found", id)
	}
	return m, nil
}

func (r *memoryRepository) Save(_ context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = m
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	matches []*Match
}

func (n *recordingNotifier) NotifyMatch(m *Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, m)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.matches)
}

func TestManager_SubmitPersistsAndNotifies(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &recordingNotifier{}
	mgr := NewManager(NewEngine(engineCatalog(), zap.NewNop()), repo, notifier, zap.NewNop())

	m, err := mgr.Create(context.Background(), "tournament-1")
	require.NoError(t, err)

	out, err := mgr.SubmitAction(context.Background(), game.ActionRequest{
		MatchID:  m.ID,
		PlayerID: "p1",
		Type:     game.ActionJoinMatch,
	})
	require.NoError(t, err)
	assert.Equal(t, game.StateWaitingForPlayers, out.State)
	assert.Equal(t, 1, notifier.count())

	stored, err := mgr.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Version, stored.Version)
}

func TestManager_ErrorsAreNotPersisted(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &recordingNotifier{}
	mgr := NewManager(NewEngine(engineCatalog(), zap.NewNop()), repo, notifier, zap.NewNop())

	m, err := mgr.Create(context.Background(), "tournament-1")
	require.NoError(t, err)

	// A deck submission in the wrong state fails and leaves the stored
	// aggregate untouched.
	_, err = mgr.SubmitAction(context.Background(), game.ActionRequest{
		MatchID:  m.ID,
		PlayerID: "p1",
		Type:     game.ActionSubmitDeck,
		Data:     game.ActionData{SelectedCardIDs: testDeck()},
	})
	require.Error(t, err)
	assert.Equal(t, 0, notifier.count())

	stored, err := mgr.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateCreated, stored.State)
}

func TestManager_AvailableActions(t *testing.T) {
	repo := newMemoryRepository()
	mgr := NewManager(NewEngine(engineCatalog(), zap.NewNop()), repo, nil, zap.NewNop())

	m, err := mgr.Create(context.Background(), "tournament-1")
	require.NoError(t, err)

	actions, err := mgr.AvailableActions(context.Background(), m.ID, "p1")
	require.NoError(t, err)
	assert.Contains(t, actions, game.ActionConcede)
	assert.NotContains(t, actions, game.ActionDrawCard)
}
