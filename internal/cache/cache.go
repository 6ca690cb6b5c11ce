// Package cache holds the advisory read cache and the invalidation
// coordinator. The datastore stays the sole source of truth: a cache miss or
// a cache failure falls through to the store and never fails the request,
// but a mutation that commits MUST invalidate every key that could contain
// the mutated row.
package cache

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// TTLs mirror the read patterns: reference catalogs churn rarely, search
// results and per-user lists churn more.
const (
	ListTTL   = 24 * time.Hour
	SearchTTL = time.Hour
	UserTTL   = 10 * time.Minute
)

// Store is the key-value invalidation service. Implementations must treat
// DeletePattern as best-effort but report failures so callers can log them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string) error
}

// Default is the process-wide store, set in main. Until then every lookup
// misses, which is the correct degraded behavior.
var Default Store = NewMemory()

// Invalidate evicts all keys matching the given user-scoped patterns after a
// successful commit. Eviction failure is logged loudly; the write itself has
// already committed.
func Invalidate(ctx context.Context, userID string, patterns ...string) {
	for _, p := range patterns {
		if err := Default.DeletePattern(ctx, UserKey(userID, p)); err != nil {
			log.Printf("[cache] invalidate %q failed: %v", p, err)
		}
	}
}

// memoryStore is a map-backed Store used in tests and cache-less deployments.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemory() Store {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *memoryStore) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if matchPattern(pattern, key) {
			delete(m.entries, key)
		}
	}
	return nil
}

// matchPattern supports the glob subset the key scheme uses: literal
// segments with '*' wildcards.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(key, parts[i])
		if idx < 0 {
			return false
		}
		key = key[idx+len(parts[i]):]
	}
	return strings.HasSuffix(key, parts[len(parts)-1])
}
