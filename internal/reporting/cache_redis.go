package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKey = "classroom:stats:v1"

// RedisCache keeps Stats as a JSON string under a single key.
type RedisCache struct {
	rdb *redis.Client
	key string
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, key: statsKey}
}

func (c *RedisCache) Get(ctx context.Context) (Stats, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Stats{}, false, nil
	}
	if err != nil {
		return Stats{}, false, err
	}
	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		return Stats{}, false, nil
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, s Stats, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, ttl).Err()
}
