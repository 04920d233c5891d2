package rate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Memory is the in-process bucket store. A single mutex guards the map so
// concurrent requests for the same key cannot double-spend a token.
type Memory struct {
	mu      sync.Mutex
	config  Config
	buckets map[string]*bucket

	lastSweep time.Time
	now       func() time.Time // test hook
}

// NewMemory creates an in-memory bucket store.
func NewMemory(cfg Config) *Memory {
	return &Memory{
		config:  cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow refills the key's bucket by elapsed time and consumes one token.
// It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.maybeSweep(now)

	b, ok := m.buckets[key]
	if !ok {
		// Unknown keys start with a full bucket.
		b = &bucket{tokens: m.config.Rate, lastRefill: now}
		m.buckets[key] = b
	} else {
		elapsed := now.Sub(b.lastRefill).Seconds()
		if elapsed > 0 {
			b.tokens += elapsed * m.config.refillPerSecond()
			if b.tokens > m.config.Rate {
				b.tokens = m.config.Rate
			}
		}
		b.lastRefill = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}

	log.Warn().Str("key", key).Float64("tokens", b.tokens).Msg("rate limit exceeded")
	return false, nil
}

// Len reports the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// maybeSweep drops buckets idle for longer than IdleTTL. Runs at most once
// per refill window; callers hold the mutex.
func (m *Memory) maybeSweep(now time.Time) {
	if m.config.IdleTTL <= 0 {
		return
	}
	if now.Sub(m.lastSweep) < m.config.Per {
		return
	}
	m.lastSweep = now

	for key, b := range m.buckets {
		if now.Sub(b.lastRefill) > m.config.IdleTTL {
			delete(m.buckets, key)
		}
	}
}
