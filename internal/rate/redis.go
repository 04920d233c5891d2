package rate

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

//go:embed bucket.lua
var bucketScriptSource string

var bucketScript = redis.NewScript(bucketScriptSource)

const redisKeyPrefix = "fg:bucket:"

// Redis keeps bucket state in a Redis hash so multiple processes share one
// budget per key. The Lua script applies refill and consume atomically.
type Redis struct {
	client redis.Cmdable
	config Config
}

// NewRedis creates a Redis bucket store from a pre-configured client.
func NewRedis(client redis.Cmdable, cfg Config) *Redis {
	return &Redis{client: client, config: cfg}
}

// Allow runs the bucket script for the key. Backend failures are reported
// as ErrStoreUnavailable; the caller decides whether to fail open.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / 1e9

	ttl := int64(0)
	if r.config.IdleTTL > 0 {
		ttl = int64(r.config.IdleTTL.Seconds())
	}

	result, err := bucketScript.Run(ctx, r.client,
		[]string{redisKeyPrefix + key},
		r.config.Rate,
		r.config.refillPerSecond(),
		now,
		ttl,
	).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	allowed, ok := result.(int64)
	if !ok {
		log.Error().Str("key", key).Interface("result", result).Msg("bucket script returned unexpected type")
		return false, fmt.Errorf("%w: unexpected script result %T", ErrStoreUnavailable, result)
	}

	return allowed == 1, nil
}
