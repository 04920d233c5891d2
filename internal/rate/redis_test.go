package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, cfg Config) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedis(client, cfg)
}

func TestRedisBurstDeniesExactlyTheLast(t *testing.T) {
	const rate = 5
	_, r := newTestRedis(t, Config{Rate: rate, Per: time.Hour})

	for i := 0; i < rate; i++ {
		if !mustAllow(t, r, "k") {
			t.Fatalf("request %d of %d denied", i+1, rate)
		}
	}
	if mustAllow(t, r, "k") {
		t.Fatalf("request %d allowed, want denied", rate+1)
	}
}

func TestRedisRefillRestoresTokens(t *testing.T) {
	_, r := newTestRedis(t, Config{Rate: 2, Per: 200 * time.Millisecond})

	mustAllow(t, r, "k")
	mustAllow(t, r, "k")
	if mustAllow(t, r, "k") {
		t.Fatal("bucket not drained")
	}

	time.Sleep(250 * time.Millisecond)
	if !mustAllow(t, r, "k") {
		t.Fatal("denied after a full refill window")
	}
}

func TestRedisKeysAreIndependent(t *testing.T) {
	_, r := newTestRedis(t, Config{Rate: 1, Per: time.Hour})

	mustAllow(t, r, "a")
	if mustAllow(t, r, "a") {
		t.Fatal("key a not exhausted")
	}
	if !mustAllow(t, r, "b") {
		t.Fatal("key b denied, buckets must be per key")
	}
}

func TestRedisIdleTTLExpiresBucketKeys(t *testing.T) {
	mr, r := newTestRedis(t, Config{Rate: 1, Per: time.Second, IdleTTL: time.Minute})

	mustAllow(t, r, "k")
	if !mr.Exists(redisKeyPrefix + "k") {
		t.Fatal("bucket key missing after Allow")
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists(redisKeyPrefix + "k") {
		t.Fatal("bucket key survived past IdleTTL")
	}
}

func TestRedisBackendDownReportsStoreUnavailable(t *testing.T) {
	mr, r := newTestRedis(t, Config{Rate: 1, Per: time.Second})
	mr.Close()

	_, err := r.Allow(context.Background(), "k")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}
