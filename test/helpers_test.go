package test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	firegate "github.com/firegate/firegate"
	"github.com/firegate/firegate/password"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func integrationConfig() firegate.Config {
	cfg := firegate.DefaultConfig()
	cfg.JWT.Secret = []byte("integration-secret")
	cfg.Password = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

// treeStore is a two-level in-memory tree, enough for the users subtree.
type treeStore struct {
	mu    sync.Mutex
	nodes map[string]map[string]any
}

func newTreeStore() *treeStore {
	return &treeStore{nodes: map[string]map[string]any{}}
}

func (s *treeStore) split(path string) (string, string) {
	root, rest, _ := strings.Cut(strings.Trim(path, "/"), "/")
	return root, rest
}

func (s *treeStore) Read(_ context.Context, path string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, rest := s.split(path)
	node := s.nodes[root]
	if node == nil {
		return nil
	}
	if rest == "" {
		out := make(map[string]any, len(node))
		for k, v := range node {
			out[k] = v
		}
		return out
	}
	child, _ := node[rest].(map[string]any)
	return child
}

func (s *treeStore) Write(_ context.Context, path string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, rest := s.split(path)
	if rest == "" {
		node, _ := value.(map[string]any)
		s.nodes[root] = node
		return true
	}
	if s.nodes[root] == nil {
		s.nodes[root] = map[string]any{}
	}
	s.nodes[root][rest] = value
	return true
}

func (s *treeStore) Update(_ context.Context, path string, partial map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, rest := s.split(path)
	if s.nodes[root] == nil {
		s.nodes[root] = map[string]any{}
	}
	if rest == "" {
		for k, v := range partial {
			s.nodes[root][k] = v
		}
		return true
	}
	child, _ := s.nodes[root][rest].(map[string]any)
	if child == nil {
		child = map[string]any{}
		s.nodes[root][rest] = child
	}
	for k, v := range partial {
		child[k] = v
	}
	return true
}

func (s *treeStore) Delete(_ context.Context, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, rest := s.split(path)
	if rest == "" {
		delete(s.nodes, root)
		return true
	}
	if node := s.nodes[root]; node != nil {
		delete(node, rest)
	}
	return true
}

func (s *treeStore) EnsureDefault(_ context.Context, path string, def any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, rest := s.split(path)
	node := s.nodes[root]
	if rest == "" {
		if len(node) > 0 {
			return true
		}
		n, _ := def.(map[string]any)
		s.nodes[root] = n
		return true
	}
	if node != nil {
		if _, ok := node[rest]; ok {
			return true
		}
	} else {
		s.nodes[root] = map[string]any{}
	}
	s.nodes[root][rest] = def
	return true
}
