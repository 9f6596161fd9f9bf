package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Mananajo65/Andaaz-Decorations/internal/errorutil"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

const unitPreferenceName = "display_unit"

// SQLiteStore persists the forecast cache in a local SQLite database so it
// survives restarts. Snapshots are stored as JSON; last-refresh timestamps
// live in their own table keyed by location, matching the cache layout the
// inquiry page uses client-side.
type SQLiteStore struct {
	db *sql.DB

	// Now is the clock used for Put stamps; replaceable in tests.
	Now func() time.Time
}

// OpenSQLite opens (creating if needed) the cache database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if valErr := errorutil.ValidateFilePath("cache.path", path, false); valErr != nil {
		return nil, valErr
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := errorutil.EnsureDirectoryWithLogging(logger.Get().Logger, dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	err = errorutil.ExecuteWithLogging(logger.Get().Logger, "cache schema creation", func() error {
		_, execErr := db.Exec(`
			CREATE TABLE IF NOT EXISTS forecast_cache (
				key         TEXT PRIMARY KEY,
				snapshot    TEXT NOT NULL,
				fetched_at  INTEGER NOT NULL
			);
			CREATE TABLE IF NOT EXISTS last_refresh (
				key          TEXT PRIMARY KEY,
				refreshed_at INTEGER NOT NULL
			);
			CREATE TABLE IF NOT EXISTS preferences (
				name  TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);
		`)
		return execErr
	}, errorutil.FileContext(path)...)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("Forecast cache database ready: %s", path)
	return &SQLiteStore{db: db, Now: time.Now}, nil
}

func (s *SQLiteStore) Get(key string) (*CacheEntry, error) {
	var raw string
	var refreshedAt int64
	err := s.db.QueryRow(`
		SELECT c.snapshot, COALESCE(r.refreshed_at, 0)
		FROM forecast_cache c
		LEFT JOIN last_refresh r ON r.key = c.key
		WHERE c.key = ?`, key).Scan(&raw, &refreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errorutil.LogAndWrap(logger.Get().Logger, "cache entry read", err,
			errorutil.CacheContext(key, 0)...)
	}

	var snapshot weather.ForecastSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		// A corrupt row behaves like a miss so the orchestrator refetches.
		errorutil.LogWarning(logger.Get().Logger, "cache entry decode", err,
			errorutil.CacheContext(key, 0)...)
		return nil, ErrNotFound
	}

	entry := &CacheEntry{Key: key, Snapshot: snapshot}
	if refreshedAt > 0 {
		entry.LastRefreshAt = time.UnixMilli(refreshedAt)
	}
	return entry, nil
}

func (s *SQLiteStore) Put(key string, snapshot weather.ForecastSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", key, err)
	}

	now := s.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting cache write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO forecast_cache (key, snapshot, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET snapshot = excluded.snapshot, fetched_at = excluded.fetched_at`,
		key, string(raw), snapshot.FetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if _, err := tx.Exec(`
		INSERT INTO last_refresh (key, refreshed_at) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET refreshed_at = excluded.refreshed_at`,
		key, now.UnixMilli()); err != nil {
		return fmt.Errorf("stamping last refresh for %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LastRefresh(key string) (time.Time, error) {
	var refreshedAt int64
	err := s.db.QueryRow(`SELECT refreshed_at FROM last_refresh WHERE key = ?`, key).Scan(&refreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading last refresh for %s: %w", key, err)
	}
	return time.UnixMilli(refreshedAt), nil
}

func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM forecast_cache ORDER BY key`)
	if err != nil {
		return nil, errorutil.LogAndReturn(logger.Get().Logger, "cache key listing",
			fmt.Errorf("listing cache keys: %w", err))
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Unit() (weather.Unit, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE name = ?`, unitPreferenceName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Celsius, nil
	}
	if err != nil {
		return weather.Celsius, fmt.Errorf("reading unit preference: %w", err)
	}
	return weather.ParseUnit(value), nil
}

func (s *SQLiteStore) SetUnit(u weather.Unit) error {
	if _, err := s.db.Exec(`
		INSERT INTO preferences (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		unitPreferenceName, string(u)); err != nil {
		return fmt.Errorf("persisting unit preference: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
