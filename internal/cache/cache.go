package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrMiss is returned by Get when no sequence is stored under the key.
var ErrMiss = errors.New("cache miss")

// Cache stores generated symbol sequences. Only seeded requests are cached,
// since those are the only ones that replay deterministically.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, symbols []string) error
}

// Params identifies a deterministic generation.
type Params struct {
	Fingerprint string
	NumNotes    int
	Temperature float64
	Seed        int64
}

// Key builds the cache key for p. Temperature is written with full precision
// so distinct floats never collide.
func Key(p Params) string {
	return fmt.Sprintf("melodygen:seq:%s:%d:%s:%d",
		p.Fingerprint,
		p.NumNotes,
		strconv.FormatFloat(p.Temperature, 'g', -1, 64),
		p.Seed,
	)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]string, error) { return nil, ErrMiss }
func (NopCache) Set(context.Context, string, []string) error { return nil }

// MemoryCache is an unbounded in-process cache, used by the CLI and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]string)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return append([]string(nil), v...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]string(nil), symbols...)
	return nil
}

// Ensure implementations satisfy Cache
var (
	_ Cache = NopCache{}
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
