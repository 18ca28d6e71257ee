package repository

import (
	"context"
	"time"
)

// StatsCache stores serialised dashboard results. Implementations must treat a miss and
// a backend failure alike: callers recompute.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Invalidate drops every cached entry.
	Invalidate(ctx context.Context) error
}
