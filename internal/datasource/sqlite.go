package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
)

// ErrCacheMiss is returned in offline mode for URLs that were never cached.
var ErrCacheMiss = errors.New("not in cache")

const cacheSchema = `
CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// SQLiteCache stores raw page bodies keyed by URL in front of an origin
// transport. Online, fresh entries (younger than MaxAge) are served from the
// cache and everything else is fetched and stored; when the origin is
// unreachable a stale entry is served instead. Offline, only the cache is
// consulted.
type SQLiteCache struct {
	Origin  api.Getter
	Offline bool
	MaxAge  time.Duration

	db   *sql.DB
	path string
	log  *zap.Logger
	now  func() time.Time
}

// OpenSQLiteCache opens or creates the cache database at path.
func OpenSQLiteCache(path string, origin api.Getter) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &SQLiteCache{
		Origin: origin,
		db:     db,
		path:   path,
		log:    debug.Named("cache"),
		now:    time.Now,
	}, nil
}

// Type returns SourceTypeCache.
func (c *SQLiteCache) Type() SourceType { return SourceTypeCache }

// Path returns the database file.
func (c *SQLiteCache) Path() string { return c.path }

// Close closes the database.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get implements api.Getter.
func (c *SQLiteCache) Get(ctx context.Context, rawURL string) ([]byte, error) {
	body, fetchedAt, found, err := c.lookup(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if c.Offline || c.Origin == nil {
		if !found {
			metrics.CacheMisses.Inc()
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, rawURL)
		}
		metrics.CacheHits.Inc()
		return body, nil
	}

	if found && c.MaxAge > 0 && c.now().Sub(fetchedAt) < c.MaxAge {
		metrics.CacheHits.Inc()
		return body, nil
	}
	metrics.CacheMisses.Inc()

	fresh, err := c.Origin.Get(ctx, rawURL)
	if err != nil {
		if found && errors.Is(err, api.ErrNetwork) {
			c.log.Warn("origin unreachable, serving stale page",
				zap.String("url", rawURL), zap.Time("fetched_at", fetchedAt), zap.Error(err))
			return body, nil
		}
		return nil, err
	}
	if err := c.Put(ctx, rawURL, fresh); err != nil {
		c.log.Warn("cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
	return fresh, nil
}

func (c *SQLiteCache) lookup(ctx context.Context, rawURL string) ([]byte, time.Time, bool, error) {
	var body []byte
	var ts int64
	err := c.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM pages WHERE url = ?`, rawURL).Scan(&body, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("reading cache: %w", err)
	}
	return body, time.Unix(0, ts), true, nil
}

// Put stores body for rawURL.
func (c *SQLiteCache) Put(ctx context.Context, rawURL string, body []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		rawURL, body, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Len returns the number of cached pages.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache: %w", err)
	}
	return n, nil
}

// Clear removes every cached page.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM pages`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
