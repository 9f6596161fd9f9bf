package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteRoundTrip(t *testing.T) {
	st := openTestStore(t)
	frozen := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	st.Now = func() time.Time { return frozen }

	key := "40.7357,-74.1724"
	if _, err := st.Get(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty database = %v, want ErrNotFound", err)
	}

	snap := weather.ForecastSnapshot{
		FetchedAt: frozen,
		Current:   weather.CurrentConditions{TemperatureC: 21.5},
	}
	if err := st.Put(key, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, err := st.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Snapshot.Current.TemperatureC != 21.5 {
		t.Errorf("TemperatureC = %v, want 21.5", entry.Snapshot.Current.TemperatureC)
	}
	if !entry.LastRefreshAt.Equal(frozen) {
		t.Errorf("LastRefreshAt = %v, want %v", entry.LastRefreshAt, frozen)
	}
	if !entry.Snapshot.FetchedAt.Equal(frozen) {
		t.Errorf("FetchedAt = %v, want %v", entry.Snapshot.FetchedAt, frozen)
	}
}

func TestSQLitePutOverwrites(t *testing.T) {
	st := openTestStore(t)
	key := "34.0522,-118.2437"

	first := weather.ForecastSnapshot{FetchedAt: time.Now().Add(-time.Hour)}
	second := weather.ForecastSnapshot{FetchedAt: time.Now(),
		Current: weather.CurrentConditions{TemperatureC: 30}}

	if err := st.Put(key, first); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := st.Put(key, second); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	entry, err := st.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Snapshot.Current.TemperatureC != 30 {
		t.Errorf("overwrite did not take: %+v", entry.Snapshot.Current)
	}

	keys, err := st.Keys()
	if err != nil || len(keys) != 1 {
		t.Errorf("Keys = %v, %v, want a single key", keys, err)
	}
}

func TestSQLiteLastRefreshUnknownKey(t *testing.T) {
	st := openTestStore(t)
	last, err := st.LastRefresh("unknown")
	if err != nil {
		t.Fatalf("LastRefresh: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastRefresh for unknown key = %v, want zero time", last)
	}
}

func TestSQLiteCorruptSnapshotIsAMiss(t *testing.T) {
	st := openTestStore(t)
	key := "40.7357,-74.1724"

	if _, err := st.db.Exec(
		`INSERT INTO forecast_cache (key, snapshot, fetched_at) VALUES (?, ?, ?)`,
		key, "{not json", time.Now().UnixMilli()); err != nil {
		t.Fatalf("seeding corrupt row: %v", err)
	}

	if _, err := st.Get(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on corrupt row = %v, want ErrNotFound", err)
	}
}

func TestSQLiteUnitPreference(t *testing.T) {
	st := openTestStore(t)

	u, err := st.Unit()
	if err != nil || u != weather.Celsius {
		t.Fatalf("default unit = %v, %v, want Celsius", u, err)
	}

	if err := st.SetUnit(weather.Fahrenheit); err != nil {
		t.Fatalf("SetUnit: %v", err)
	}
	u, _ = st.Unit()
	if u != weather.Fahrenheit {
		t.Errorf("unit after SetUnit = %v, want Fahrenheit", u)
	}

	// Setting again is an upsert, not an insert conflict.
	if err := st.SetUnit(weather.Celsius); err != nil {
		t.Fatalf("second SetUnit: %v", err)
	}
	u, _ = st.Unit()
	if u != weather.Celsius {
		t.Errorf("unit after toggle back = %v, want Celsius", u)
	}
}

func TestOpenSQLiteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	st.Close()
}
