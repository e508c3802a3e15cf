package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedLookup decorates a Lookup with a redis template cache. Card templates
// are immutable catalog data, so a plain TTL without invalidation is enough.
type CachedLookup struct {
	client *redis.Client
	next   Lookup
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedLookup creates a redis-backed cache in front of next.
func NewCachedLookup(client *redis.Client, next Lookup, ttl time.Duration, logger *zap.Logger) *CachedLookup {
	return &CachedLookup{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(cardID string) string {
	return fmt.Sprintf("card:template:%s", cardID)
}

func (c *CachedLookup) GetCardEntity(ctx context.Context, cardID string) (*CardTemplate, error) {
	raw, err := c.client.Get(ctx, cacheKey(cardID)).Bytes()
	if err == nil {
		var tmpl CardTemplate
		if unmarshalErr := json.Unmarshal(raw, &tmpl); unmarshalErr == nil {
			return &tmpl, nil
		}
		// Corrupt entry: fall through to the source and overwrite.
		c.logger.Warn("discarding corrupt cached card template", zap.String("card_id", cardID))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("card cache read failed", zap.String("card_id", cardID), zap.Error(err))
	}

	tmpl, err := c.next.GetCardEntity(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(tmpl); marshalErr == nil {
		if setErr := c.client.Set(ctx, cacheKey(cardID), raw, c.ttl).Err(); setErr != nil {
			c.logger.Warn("card cache write failed", zap.String("card_id", cardID), zap.Error(setErr))
		}
	}
	return tmpl, nil
}
