package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/workdesk/repository"
)

// statsCache namespaces every entry under a generation counter. Invalidate bumps the
// counter so stale entries become unreachable and expire on their own TTL.
type statsCache struct {
	client *redislib.Client
	prefix string
}

// NewStatsCache creates a Redis-backed cache for dashboard results.
func NewStatsCache(client *redislib.Client) repository.StatsCache {
	return &statsCache{client: client, prefix: "stats:"}
}

func (c *statsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	full, err := c.key(ctx, key)
	if err != nil {
		return false, err
	}

	payload, err := c.client.Get(ctx, full).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *statsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	full, err := c.key(ctx, key)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, full, payload, ttl).Err()
}

func (c *statsCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.prefix+"gen").Err()
}

func (c *statsCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.prefix+"gen").Int64()
	if err != nil && !errors.Is(err, redislib.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s", c.prefix, gen, key), nil
}
