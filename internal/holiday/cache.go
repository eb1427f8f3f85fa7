package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache keeps computed holiday sets in redis so repeated planning runs skip the lookup.
// Redis errors are returned to the caller.
type Cache struct {
	rdb  *redis.Client
	next Provider
	ttl  time.Duration
}

func NewCache(rdb *redis.Client, next Provider, ttl time.Duration) *Cache {
	return &Cache{
		rdb:  rdb,
		next: next,
		ttl:  ttl,
	}
}

func cacheKey(region string, year int) string {
	return fmt.Sprintf("holidays_%s_%d", region, year)
}

func (c *Cache) Holidays(ctx context.Context, region string, year int) (Set, error) {
	state, ok := domain.NormalizeFederalState(region)
	if !ok {
		// let the wrapped provider decide how to report it
		return c.next.Holidays(ctx, region, year)
	}

	key := cacheKey(state, year)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var set Set
		if err := json.Unmarshal(raw, &set); err != nil {
			return Set{}, fmt.Errorf("decode cached holidays %s: %w", key, err)
		}
		return set, nil
	case errors.Is(err, redis.Nil):
	default:
		return Set{}, fmt.Errorf("read holiday cache: %w", err)
	}

	set, err := c.next.Holidays(ctx, state, year)
	if err != nil {
		return Set{}, err
	}

	data, err := json.Marshal(set)
	if err != nil {
		return Set{}, err
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return Set{}, fmt.Errorf("write holiday cache: %w", err)
	}

	return set, nil
}
