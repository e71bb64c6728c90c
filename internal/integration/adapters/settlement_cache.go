package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
)

// settlementListKey is the single cache key for the reconciled dashboard list.
const settlementListKey = "settlements:list"

// settlementCache implements adapter.SettlementCache on Redis. All entries
// share one TTL; mutations drop the key instead of rewriting it.
type settlementCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettlementCache creates a new Redis-backed settlement cache.
func NewSettlementCache(client *redis.Client, ttl time.Duration) adapter.SettlementCache {
	return &settlementCache{
		client: client,
		ttl:    ttl,
	}
}

// GetList retrieves the cached reconciled list. The bool reports a hit.
func (c *settlementCache) GetList(ctx context.Context) ([]*entity.Settlement, bool, error) {
	payload, err := c.client.Get(ctx, settlementListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var settlements []*entity.Settlement
	if err := json.Unmarshal(payload, &settlements); err != nil {
		// A corrupt entry behaves like a miss; the next SetList replaces it.
		return nil, false, err
	}
	return settlements, true, nil
}

// SetList stores the reconciled list with the configured TTL.
func (c *settlementCache) SetList(ctx context.Context, settlements []*entity.Settlement) error {
	payload, err := json.Marshal(settlements)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settlementListKey, payload, c.ttl).Err()
}

// Invalidate drops the cached list after a mutation.
func (c *settlementCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settlementListKey).Err()
}
