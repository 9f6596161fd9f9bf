// Package store owns forecast cache persistence: one entry per rounded
// coordinate key, the per-key last-refresh timestamps, and the process-wide
// unit preference. The cache outlives the process; staleness and cooldown
// are derived from stored timestamps, never stored themselves.
package store

import (
	"errors"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

// ErrNotFound is returned when no entry exists for a location key.
var ErrNotFound = errors.New("no cached forecast for location")

// CacheEntry is a persisted snapshot for one location key.
type CacheEntry struct {
	Key           string                   `json:"key"`
	Snapshot      weather.ForecastSnapshot `json:"snapshot"`
	LastRefreshAt time.Time                `json:"lastRefreshAt"`
}

// Store is the persistence boundary used by the refresh orchestrator. All
// implementations must leave existing entries untouched when a fetch fails;
// Put is only ever called with a successfully fetched snapshot.
type Store interface {
	// Get returns the entry for key, or ErrNotFound.
	Get(key string) (*CacheEntry, error)

	// Put overwrites the entry for key and stamps its last-refresh time.
	Put(key string, snapshot weather.ForecastSnapshot) error

	// LastRefresh returns the most recent successful refresh time for key.
	// The zero time means the key has never been refreshed.
	LastRefresh(key string) (time.Time, error)

	// Keys lists every location key with a cached entry.
	Keys() ([]string, error)

	// Unit returns the persisted display unit preference.
	Unit() (weather.Unit, error)

	// SetUnit persists the display unit preference.
	SetUnit(u weather.Unit) error

	Close() error
}

// IsCoolingDown reports whether a refresh for the key would arrive inside
// the cooldown window after the last successful refresh. A zero
// lastRefresh (never refreshed) is never cooling down.
func IsCoolingDown(lastRefresh time.Time, cooldown time.Duration, now time.Time) bool {
	if lastRefresh.IsZero() {
		return false
	}
	return now.Sub(lastRefresh) < cooldown
}

// IsStale reports whether the entry's snapshot has aged past the staleness
// threshold. The boundary is inclusive: an entry exactly threshold old is
// stale.
func IsStale(entry *CacheEntry, threshold time.Duration, now time.Time) bool {
	if entry == nil {
		return true
	}
	return now.Sub(entry.Snapshot.FetchedAt) >= threshold
}
