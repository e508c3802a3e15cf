package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pokefree/tcg-server-go/internal/cards"
)

// CardRepository serves the static card catalog from Postgres. It implements
// cards.Lookup; the redis cache decorates it at wiring time.
//
// Schema:
//
//	CREATE TABLE cards (
//	    id      TEXT PRIMARY KEY,
//	    payload JSONB NOT NULL
//	);
type CardRepository struct {
	db *pgxpool.Pool
}

// NewCardRepository creates a card repository.
func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// GetCardEntity loads one card template.
func (r *CardRepository) GetCardEntity(ctx context.Context, cardID string) (*cards.CardTemplate, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM cards WHERE id = $1`, cardID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", cardID, cards.ErrCardNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select card %s: %w", cardID, err)
	}
	var tmpl cards.CardTemplate
	if err := json.Unmarshal(payload, &tmpl); err != nil {
		return nil, fmt.Errorf("unmarshal card %s: %w", cardID, err)
	}
	return &tmpl, nil
}

// GetBatch loads several templates in one round trip, keyed by card id. Ids
// without a row are simply absent from the result.
func (r *CardRepository) GetBatch(ctx context.Context, cardIDs []string) (map[string]*cards.CardTemplate, error) {
	if len(cardIDs) == 0 {
		return map[string]*cards.CardTemplate{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, payload FROM cards WHERE id = ANY($1)`, cardIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select cards: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*cards.CardTemplate, len(cardIDs))
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		var tmpl cards.CardTemplate
		if err := json.Unmarshal(payload, &tmpl); err != nil {
			return nil, fmt.Errorf("unmarshal card %s: %w", id, err)
		}
		out[id] = &tmpl
	}
	return out, rows.Err()
}

// UpsertCard writes a template, used by catalog import tooling.
func (r *CardRepository) UpsertCard(ctx context.Context, tmpl *cards.CardTemplate) error {
	payload, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("marshal card %s: %w", tmpl.CardID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO cards (id, payload) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		tmpl.CardID, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", tmpl.CardID, err)
	}
	return nil
}
