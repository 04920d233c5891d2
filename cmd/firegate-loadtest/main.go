// Command firegate-loadtest measures gate throughput: admission checks
// against the token bucket (in-memory or Redis-backed) and credential
// resolution against a seeded in-memory store.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	firegate "github.com/firegate/firegate"
	"github.com/firegate/firegate/internal/rate"
	"github.com/firegate/firegate/password"
)

func main() {
	var (
		clients     = flag.Int("clients", 10000, "number of distinct client keys")
		users       = flag.Int("users", 1000, "number of seeded user records")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *clients <= 0 || *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	rateCfg := rate.Config{Rate: 1e9, Per: time.Minute}

	memoryStats := runAdmitPhase(ctx, rate.NewMemory(rateCfg), *clients, *ops, *concurrency)
	redisStats := runAdmitPhase(ctx, rate.NewRedis(client, rateCfg), *clients, *ops, *concurrency)
	resolveStats := runResolvePhase(ctx, *users, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("admit/memory", memoryStats)
	printStats("admit/redis", redisStats)
	printStats("resolve", resolveStats)
}

func runAdmitPhase(ctx context.Context, store rate.Store, clients, ops, concurrency int) phaseStats {
	keys := make([]string, clients)
	for i := range keys {
		keys[i] = fmt.Sprintf("10.%d.%d.%d", i>>16&0xFF, i>>8&0xFF, i&0xFF)
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				key := keys[r.Intn(len(keys))]
				t0 := time.Now()
				_, err := store.Allow(ctx, key)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func runResolvePhase(ctx context.Context, users, ops, concurrency int) phaseStats {
	cfg := firegate.DefaultConfig()
	cfg.JWT.Secret = []byte("loadtest-secret")
	cfg.Audit.Enabled = false
	cfg.Password = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

	store := newSeededStore(users)
	engine, err := firegate.New().
		WithConfig(cfg).
		WithStore(store).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	tokens := make([]string, users)
	for i := range tokens {
		token, err := engine.IssueToken(firegate.Identity{
			ID:    fmt.Sprintf("u-%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "token issue failed: %v\n", err)
			os.Exit(1)
		}
		tokens[i] = token
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				_, _, err := engine.Resolve(ctx, token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// seededStore serves a fixed users subtree from memory.
type seededStore struct {
	users map[string]any
}

func newSeededStore(n int) *seededStore {
	users := make(map[string]any, n)
	for i := 0; i < n; i++ {
		users[fmt.Sprintf("u-%d", i)] = map[string]any{
			"username":        fmt.Sprintf("user%d", i),
			"email":           fmt.Sprintf("user%d@example.com", i),
			"hashed_password": "unused",
			"disabled":        false,
			"is_admin":        false,
		}
	}
	return &seededStore{users: users}
}

func (s *seededStore) Read(_ context.Context, path string) map[string]any {
	if path == firegate.UsersPath {
		return s.users
	}
	return nil
}

func (s *seededStore) Write(context.Context, string, any) bool             { return true }
func (s *seededStore) Update(context.Context, string, map[string]any) bool { return true }
func (s *seededStore) Delete(context.Context, string) bool                 { return true }
func (s *seededStore) EnsureDefault(context.Context, string, any) bool     { return true }
