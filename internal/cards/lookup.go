package cards

import (
	"context"
	"errors"
	"fmt"
)

// ErrCardNotFound is returned when no template exists for a card id.
var ErrCardNotFound = errors.New("card not found")

// Lookup resolves card ids to static templates. Implementations live outside
// the engine (database catalog, cache); the engine only depends on this
// interface.
type Lookup interface {
	GetCardEntity(ctx context.Context, cardID string) (*CardTemplate, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, cardID string) (*CardTemplate, error)

func (f LookupFunc) GetCardEntity(ctx context.Context, cardID string) (*CardTemplate, error) {
	return f(ctx, cardID)
}

// BatchLookup serves templates from a caller-supplied map for the duration of
// a single action, falling back to the wrapped Lookup for ids not in the
// batch. This lets a caller prefetch every card an action touches in one
// round trip without changing the engine contract.
type BatchLookup struct {
	batch    map[string]*CardTemplate
	fallback Lookup
}

// NewBatchLookup creates a batch lookup over the given map. The map may be
// nil, in which case every fetch goes to the fallback.
func NewBatchLookup(batch map[string]*CardTemplate, fallback Lookup) *BatchLookup {
	return &BatchLookup{batch: batch, fallback: fallback}
}

func (b *BatchLookup) GetCardEntity(ctx context.Context, cardID string) (*CardTemplate, error) {
	if t, ok := b.batch[cardID]; ok {
		return t, nil
	}
	if b.fallback == nil {
		return nil, fmt.Errorf("lookup %q: %w", cardID, ErrCardNotFound)
	}
	return b.fallback.GetCardEntity(ctx, cardID)
}

// StaticLookup is a fixed in-memory catalog, used in tests and local play.
type StaticLookup map[string]*CardTemplate

func (s StaticLookup) GetCardEntity(_ context.Context, cardID string) (*CardTemplate, error) {
	if t, ok := s[cardID]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("lookup %q: %w", cardID, ErrCardNotFound)
}
