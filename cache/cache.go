// Package cache persists completion results keyed by request fingerprint.
//
// An entry is served only while it is younger than the TTL and, when it was
// recorded against a source revision, only while the codebase is still at
// that revision. Stale entries are evicted on read. Cache I/O failures are
// logged and treated as misses; they never fail the surrounding completion.
//
// Concurrent identical misses may both call the provider and both write.
// That is acceptable: the operation is idempotent for identical request
// parameters and the store is one row per fingerprint, last writer wins.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

// DefaultTTL is how long an entry stays usable at an unchanged revision.
const DefaultTTL = 24 * time.Hour

const createTable = `
CREATE TABLE IF NOT EXISTS completions (
	fingerprint TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	result BLOB NOT NULL,
	source_revision TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
`

// RevisionFunc reports the current source revision of the codebase under
// analysis, or "" when it cannot be determined.
type RevisionFunc func() string

// Stats summarizes the cache store.
type Stats struct {
	Entries int64
	Bytes   int64
}

// Cache is a SQLite-backed completion result cache.
type Cache struct {
	db       *sql.DB
	ttl      time.Duration
	revision RevisionFunc
	logger   zerolog.Logger

	now func() time.Time // overridable in tests
}

// Open creates or opens the cache store at path. A nil revision func means
// revisions are never recorded and never checked.
func Open(path string, ttl time.Duration, revision RevisionFunc, logger zerolog.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if revision == nil {
		revision = func() string { return "" }
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{
		db:       db,
		ttl:      ttl,
		revision: revision,
		logger:   logger.With().Str("component", "cache").Logger(),
		now:      time.Now,
	}, nil
}

// Get returns the cached result for req, or (nil, false) on a miss. Expired
// and revision-stale entries are evicted as a side effect.
func (c *Cache) Get(req *llm.CompletionRequest) (*llm.CompletionResult, bool) {
	fp := req.Fingerprint()

	query, args, err := sq.Select("result", "source_revision", "created_at").
		From("completions").
		Where(sq.Eq{"fingerprint": fp}).
		ToSql()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Cache query build failed, treating as miss")
		return nil, false
	}

	var (
		blob      []byte
		revision  string
		createdAt time.Time
	)
	err = c.db.QueryRow(query, args...).Scan(&blob, &revision, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Cache read failed, treating as miss")
		return nil, false
	}

	if c.now().Sub(createdAt) > c.ttl {
		c.evict(fp)
		return nil, false
	}
	// An entry recorded without a revision stays valid regardless of what
	// the current revision is (or whether one can be determined at all).
	if revision != "" && revision != c.revision() {
		c.evict(fp)
		return nil, false
	}

	var result llm.CompletionResult
	if err := json.Unmarshal(blob, &result); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fp).Msg("Cache entry corrupt, evicting")
		c.evict(fp)
		return nil, false
	}

	c.logger.Debug().Str("fingerprint", fp).Msg("Cache hit")
	return &result, true
}

// Set persists a result for req at the current time and revision. Errors are
// returned for observability but callers treat them as non-fatal.
func (c *Cache) Set(req *llm.CompletionRequest, result *llm.CompletionResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	query, args, err := sq.Insert("completions").
		Columns("fingerprint", "model", "result", "source_revision", "created_at").
		Values(req.Fingerprint(), req.Model, blob, c.revision(), c.now().UTC()).
		Suffix("ON CONFLICT(fingerprint) DO UPDATE SET model=excluded.model, result=excluded.result, source_revision=excluded.source_revision, created_at=excluded.created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cache insert: %w", err)
	}
	if _, err := c.db.Exec(query, args...); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// Clear removes all entries unconditionally.
func (c *Cache) Clear() error {
	query, args, err := sq.Delete("completions").ToSql()
	if err != nil {
		return fmt.Errorf("build cache clear: %w", err)
	}
	if _, err := c.db.Exec(query, args...); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Stats returns the entry count and aggregate stored payload size.
func (c *Cache) Stats() (Stats, error) {
	query, args, err := sq.Select("COUNT(*)", "COALESCE(SUM(LENGTH(result)), 0)").
		From("completions").
		ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build cache stats: %w", err)
	}

	var s Stats
	if err := c.db.QueryRow(query, args...).Scan(&s.Entries, &s.Bytes); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) evict(fingerprint string) {
	query, args, err := sq.Delete("completions").
		Where(sq.Eq{"fingerprint": fingerprint}).
		ToSql()
	if err != nil {
		return
	}
	if _, err := c.db.Exec(query, args...); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Cache eviction failed")
	}
}
