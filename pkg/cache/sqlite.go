package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS judgment_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	confidence REAL NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_judgment_cache_expires ON judgment_cache(expires_at);
`

// SQLiteStore persists cached judgments across restarts. Expiry is
// enforced on read; Prune removes expired rows in bulk and is scheduled by
// the Pruner.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.Mutex
	hits   int64
	misses int64
	writes int64
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("cache db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		payload             []byte
		confidence          float64
		cachedAt, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, confidence, cached_at, expires_at FROM judgment_cache WHERE key = ?`,
		key).Scan(&payload, &confidence, &cachedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.count(&s.misses)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache read failed: %w", err)
	}

	if time.Now().UnixMilli() > expiresAt {
		s.db.ExecContext(ctx, `DELETE FROM judgment_cache WHERE key = ?`, key)
		s.count(&s.misses)
		return nil, nil
	}

	s.count(&s.hits)
	return &Entry{
		Payload:    payload,
		Confidence: confidence,
		CachedAt:   time.UnixMilli(cachedAt),
	}, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	now := time.Now()
	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO judgment_cache (key, payload, confidence, cached_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			confidence = excluded.confidence,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`,
		key, entry.Payload, entry.Confidence, cachedAt.UnixMilli(), now.Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	s.count(&s.writes)
	return nil
}

func (s *SQLiteStore) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	// ESCAPE guards against % and _ inside fingerprint keys.
	pattern := escapeLike(prefix) + "%"
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM judgment_cache WHERE key LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		return 0, fmt.Errorf("cache invalidation failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var entries int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM judgment_cache WHERE expires_at > ?`,
		time.Now().UnixMilli()).Scan(&entries); err != nil {
		return Stats{}, fmt.Errorf("cache stats failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries: entries,
		Hits:    s.hits,
		Misses:  s.misses,
		Writes:  s.writes,
	}, nil
}

// Prune removes expired rows and returns the number removed.
func (s *SQLiteStore) Prune(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM judgment_cache WHERE expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cache prune failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) count(field *int64) {
	s.mu.Lock()
	*field++
	s.mu.Unlock()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
