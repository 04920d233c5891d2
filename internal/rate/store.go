package rate

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable reports that the bucket backend could not be reached.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Config holds the bucket parameters shared by all backends.
type Config struct {
	// Rate is the bucket capacity and the number of tokens regenerated
	// per Per window.
	Rate float64
	// Per is the refill window.
	Per time.Duration
	// IdleTTL expires buckets that have not been touched for this long.
	// Zero keeps every bucket for the process lifetime.
	IdleTTL time.Duration
}

func (c Config) refillPerSecond() float64 {
	return c.Rate / c.Per.Seconds()
}

// Store decides whether the request identified by key may proceed.
// Implementations must apply the refill-then-consume sequence atomically
// per key.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}
