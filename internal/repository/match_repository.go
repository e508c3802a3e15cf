package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pokefree/tcg-server-go/internal/match"
)

// ErrMatchNotFound is returned when no match row exists for an id.
var ErrMatchNotFound = errors.New("match not found")

// ErrVersionConflict is returned when a concurrent writer bumped the match
// version first. The caller reloads and retries.
var ErrVersionConflict = errors.New("match version conflict")

// MatchRepository stores match aggregates as JSONB with an optimistic
// version column.
//
// Schema:
//
//	CREATE TABLE matches (
//	    id         TEXT PRIMARY KEY,
//	    state      TEXT NOT NULL,
//	    version    INTEGER NOT NULL,
//	    payload    JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a match repository.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a new match.
func (r *MatchRepository) Create(ctx context.Context, m *match.Match) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO matches (id, state, version, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, string(m.State), m.Version, payload, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return nil
}

// FindByID loads a match by id.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*match.Match, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM matches WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrMatchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select match %s: %w", id, err)
	}
	var m match.Match
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("unmarshal match %s: %w", id, err)
	}
	return &m, nil
}

// Save writes the updated aggregate, guarded by the previous version.
func (r *MatchRepository) Save(ctx context.Context, m *match.Match) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE matches
		SET state = $2, version = $3, payload = $4, updated_at = $5
		WHERE id = $1 AND version = $6`,
		m.ID, string(m.State), m.Version, payload, m.UpdatedAt, m.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update match %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save match %s at version %d: %w", m.ID, m.Version, ErrVersionConflict)
	}
	return nil
}
