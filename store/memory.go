package store

import (
	"sync"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

// MemoryStore is a concurrency-safe in-memory Store. It backs tests and
// ephemeral deployments; production uses SQLiteStore.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]CacheEntry
	lastRefresh map[string]time.Time
	unit        weather.Unit

	// Now is the clock used for Put stamps; replaceable in tests.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store defaulting to Celsius.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]CacheEntry),
		lastRefresh: make(map[string]time.Time),
		unit:        weather.Celsius,
		Now:         time.Now,
	}
}

func (m *MemoryStore) Get(key string) (*CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (m *MemoryStore) Put(key string, snapshot weather.ForecastSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	m.entries[key] = CacheEntry{Key: key, Snapshot: snapshot, LastRefreshAt: now}
	m.lastRefresh[key] = now
	return nil
}

func (m *MemoryStore) LastRefresh(key string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRefresh[key], nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *MemoryStore) Unit() (weather.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unit, nil
}

func (m *MemoryStore) SetUnit(u weather.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unit = u
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
