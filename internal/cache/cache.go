package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/gitfetch/gitfetch/internal/provider"
	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	// SQLite only supports one writer at a time
	maxOpenConns = 1
	maxIdleConns = 1

	// Retry configuration for database locks
	maxRetries     = 3
	baseRetryDelay = 50 * time.Millisecond
	maxRetryDelay  = 200 * time.Millisecond

	// Operation timeout - keep short so a wedged database never stalls
	// rendering
	dbOperationTimeout = 5 * time.Second

	schemaVersion = 1
)

// Cache persists fetched account data in SQLite. A nil *Cache is valid
// and turns every operation into a no-op miss, which is how --no-cache
// runs.
type Cache struct {
	dbPath string
	db     *sql.DB
	mu     sync.RWMutex
}

// Entry is one cached account: the profile and stats exactly as fetched,
// plus when they were stored.
type Entry struct {
	Profile  stats.Profile
	Bundle   stats.Bundle
	CachedAt time.Time
}

// Fresh reports whether the entry is younger than ttl.
func (e *Entry) Fresh(ttl time.Duration) bool {
	if e == nil {
		return false
	}
	return time.Since(e.CachedAt) < ttl
}

// AccountInfo describes one cached account for --cached listings.
type AccountInfo struct {
	Key      string
	CachedAt time.Time
}

// Stats summarizes cache contents for diagnostics.
type Stats struct {
	Accounts int
	Oldest   time.Time
	Newest   time.Time
}

// DefaultPath returns the cache database location under the user cache
// directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gitfetch", "cache.db")
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, cacheErr(err, "create cache directory")
	}

	// _journal_mode=WAL: concurrent reads while the background refresh
	// writes
	// _busy_timeout=30000: wait for locks instead of failing
	// _txlock=immediate: take the write lock at transaction start
	connStr := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000&_txlock=immediate"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, cacheErr(err, "open cache database")
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	c := &Cache{dbPath: path, db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, cacheErr(err, "initialize cache schema")
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS accounts (
		key TEXT PRIMARY KEY,
		profile_data TEXT NOT NULL,
		stats_data TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cached_at ON accounts(cached_at);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}

	var version int
	err := c.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		_, err = c.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
	}
	return err
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.dbPath
}

// Get returns the cached entry for key, or nil when the account has never
// been cached. Freshness is the caller's policy; see Entry.Fresh.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	if c == nil || c.db == nil {
		return nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetry(ctx, func() (*Entry, error) {
		var profileData, statsData, cachedAt string
		err := c.db.QueryRowContext(ctx,
			"SELECT profile_data, stats_data, cached_at FROM accounts WHERE key = ?",
			key).Scan(&profileData, &statsData, &cachedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, cacheErr(err, "read cache entry")
		}

		entry := &Entry{}
		if err := json.Unmarshal([]byte(profileData), &entry.Profile); err != nil {
			return nil, cacheErr(err, "decode cached profile")
		}
		if err := json.Unmarshal([]byte(statsData), &entry.Bundle); err != nil {
			return nil, cacheErr(err, "decode cached stats")
		}
		if t, err := time.Parse(time.RFC3339Nano, cachedAt); err == nil {
			entry.CachedAt = t
		}
		return entry, nil
	})
}

// Put stores or replaces the entry for key.
func (c *Cache) Put(ctx context.Context, key string, profile stats.Profile, bundle stats.Bundle) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	profileData, err := json.Marshal(profile)
	if err != nil {
		return cacheErr(err, "encode profile")
	}
	statsData, err := json.Marshal(bundle)
	if err != nil {
		return cacheErr(err, "encode stats")
	}

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetryNoResult(ctx, func() error {
		_, err := c.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO accounts (key, profile_data, stats_data, cached_at)
			VALUES (?, ?, ?, ?)
		`, key, string(profileData), string(statsData),
			time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return cacheErr(err, "write cache entry")
		}
		return nil
	})
}

// Delete removes one cached account.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetryNoResult(ctx, func() error {
		_, err := c.db.ExecContext(ctx, "DELETE FROM accounts WHERE key = ?", key)
		if err != nil {
			return cacheErr(err, "delete cache entry")
		}
		return nil
	})
}

// Clear removes every cached account.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetryNoResult(ctx, func() error {
		_, err := c.db.ExecContext(ctx, "DELETE FROM accounts")
		if err != nil {
			return cacheErr(err, "clear cache")
		}
		return nil
	})
}

// Accounts lists cached accounts, most recently refreshed first.
func (c *Cache) Accounts(ctx context.Context) ([]AccountInfo, error) {
	if c == nil || c.db == nil {
		return nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetry(ctx, func() ([]AccountInfo, error) {
		rows, err := c.db.QueryContext(ctx,
			"SELECT key, cached_at FROM accounts ORDER BY cached_at DESC")
		if err != nil {
			return nil, cacheErr(err, "list cached accounts")
		}
		defer rows.Close()

		var accounts []AccountInfo
		for rows.Next() {
			var info AccountInfo
			var cachedAt string
			if err := rows.Scan(&info.Key, &cachedAt); err != nil {
				return nil, cacheErr(err, "scan cached account")
			}
			if t, err := time.Parse(time.RFC3339Nano, cachedAt); err == nil {
				info.CachedAt = t
			}
			accounts = append(accounts, info)
		}
		return accounts, rows.Err()
	})
}

// Stats reports entry count and age range for diagnostics.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	if c == nil || c.db == nil {
		return Stats{}, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	return withRetry(ctx, func() (Stats, error) {
		var s Stats
		var oldest, newest sql.NullString
		err := c.db.QueryRowContext(ctx,
			"SELECT COUNT(*), MIN(cached_at), MAX(cached_at) FROM accounts").
			Scan(&s.Accounts, &oldest, &newest)
		if err != nil {
			return Stats{}, cacheErr(err, "read cache stats")
		}
		if oldest.Valid {
			if t, err := time.Parse(time.RFC3339Nano, oldest.String); err == nil {
				s.Oldest = t
			}
		}
		if newest.Valid {
			if t, err := time.Parse(time.RFC3339Nano, newest.String); err == nil {
				s.Newest = t
			}
		}
		return s, nil
	})
}

func cacheErr(err error, msg string) error {
	return goerr.Wrap(err, msg,
		goerr.T(provider.ErrTagCache),
		goerr.V("hint", "Try clearing the cache with --clear-cache"))
}

// withRetry executes a database operation, backing off and retrying when
// SQLite reports the database locked.
func withRetry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	var result T
	var lastErr error
	delay := baseRetryDelay

	for attempt := 0; attempt < maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result, lastErr = operation()
		if lastErr == nil {
			return result, nil
		}
		if !isLockError(lastErr.Error()) {
			return result, lastErr
		}

		if attempt < maxRetries-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}

	return result, lastErr
}

func withRetryNoResult(ctx context.Context, operation func() error) error {
	_, err := withRetry(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

func isLockError(errStr string) bool {
	lockPhrases := []string{
		"database is locked",
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"database table is locked",
	}
	for _, phrase := range lockPhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
