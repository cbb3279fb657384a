// Package cache holds the key/value stores and request counters shared by
// the translation pipeline and the HTTP rate limiter. Redis backs both when
// configured; otherwise an in-process implementation is used.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented cache. A miss is reported as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Decision is the outcome of a single counter increment.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

func decide(count int64, limit int, ttl time.Duration) Decision {
	d := Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
	}
	if !d.Allowed {
		d.RetryAfter = max(ttl, time.Second)
	}
	return d
}
