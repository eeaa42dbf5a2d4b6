package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
	_ "github.com/mattn/go-sqlite3"
)

// Cache stores analysis records keyed by absolute file path. A record is only
// served while the file's size and modification time match what was stored
// and it was produced by the current analysis version under the same
// analyzer options.
type Cache struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// CacheStats summarizes the cache contents
type CacheStats struct {
	Path      string         `json:"path" yaml:"path"`
	Entries   int            `json:"entries" yaml:"entries"`
	Stale     int            `json:"stale" yaml:"stale"`
	WithBPM   int            `json:"with_bpm" yaml:"with_bpm"`
	ByType    map[string]int `json:"by_type" yaml:"by_type"`
	ByGenre   map[string]int `json:"by_genre" yaml:"by_genre"`
	Oldest    *time.Time     `json:"oldest,omitempty" yaml:"oldest,omitempty"`
	Newest    *time.Time     `json:"newest,omitempty" yaml:"newest,omitempty"`
	SizeBytes int64          `json:"size_bytes" yaml:"size_bytes"`
}

// OpenCache opens or creates the cache database at path
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer at a time; scan workers share this handle
	db.SetMaxOpenConns(1)

	c := &Cache{
		db:   db,
		path: path,
		logger: logging.WithFields(logging.Fields{
			"component": "analysis_cache",
		}),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			path TEXT PRIMARY KEY,
			mod_time INTEGER NOT NULL,
			size INTEGER NOT NULL,
			version INTEGER NOT NULL,
			options TEXT NOT NULL DEFAULT '',
			record TEXT NOT NULL,
			bpm INTEGER,
			sample_type TEXT NOT NULL DEFAULT '',
			musical_key TEXT,
			genre TEXT,
			tags TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_version ON analyses(version);
		CREATE INDEX IF NOT EXISTS idx_analyses_genre ON analyses(genre);
	`)
	if err != nil {
		return err
	}

	// databases created before options were recorded; their rows never match
	_, err = c.db.Exec("ALTER TABLE analyses ADD COLUMN options TEXT NOT NULL DEFAULT ''")
	if err != nil && !strings.Contains(err.Error(), "duplicate column") {
		return err
	}
	return nil
}

// Path returns the database file location
func (c *Cache) Path() string {
	return c.path
}

// Close releases the database handle
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached record for path. The second return is false on a
// miss, including when the file changed, the record is from an older
// analysis version or it was produced with options other than fingerprint
// (see sample.Options.Fingerprint).
func (c *Cache) Get(path, fingerprint string) (*sample.Analysis, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, nil
	}

	var (
		modTime int64
		size    int64
		version int
		options string
		record  string
	)
	err = c.db.QueryRow(
		"SELECT mod_time, size, version, options, record FROM analyses WHERE path = ?", path,
	).Scan(&modTime, &size, &version, &options, &record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", path, err)
	}

	if version != sample.AnalysisVersion || modTime != info.ModTime().UnixNano() || size != info.Size() ||
		options != fingerprint {
		c.logger.Debug("Cache entry outdated", logging.Fields{
			"path":           path,
			"stored_version": version,
			"stored_options": options,
		})
		return nil, false, nil
	}

	var analysis sample.Analysis
	if err := json.Unmarshal([]byte(record), &analysis); err != nil {
		c.logger.Warn("Discarding unreadable cache record", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return nil, false, nil
	}
	return &analysis, true, nil
}

// Put stores a record made under the options identified by fingerprint,
// stamping it with the file's current size and modification time.
func (c *Cache) Put(analysis *sample.Analysis, fingerprint string) error {
	if analysis == nil {
		return errors.New("nil analysis")
	}
	info, err := os.Stat(analysis.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", analysis.Path, err)
	}

	record, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	var bpm sql.NullInt64
	if analysis.BPM != nil {
		bpm = sql.NullInt64{Int64: int64(*analysis.BPM), Valid: true}
	}

	_, err = c.db.Exec(`INSERT OR REPLACE INTO analyses
		(path, mod_time, size, version, options, record, bpm, sample_type, musical_key, genre, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.Path,
		info.ModTime().UnixNano(),
		info.Size(),
		analysis.Version,
		fingerprint,
		string(record),
		bpm,
		string(analysis.Type),
		nullString(analysis.Key),
		nullString(analysis.Genre),
		strings.Join(analysis.Tags, ","),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", analysis.Path, err)
	}
	return nil
}

// Invalidate drops the record for path
func (c *Cache) Invalidate(path string) error {
	_, err := c.db.Exec("DELETE FROM analyses WHERE path = ?", path)
	return err
}

// Purge removes records from older analysis versions and records whose file
// no longer exists. It returns the number of rows removed.
func (c *Cache) Purge() (int, error) {
	res, err := c.db.Exec("DELETE FROM analyses WHERE version != ?", sample.AnalysisVersion)
	if err != nil {
		return 0, fmt.Errorf("purge stale versions: %w", err)
	}
	removed, _ := res.RowsAffected()

	rows, err := c.db.Query("SELECT path FROM analyses")
	if err != nil {
		return int(removed), fmt.Errorf("list paths: %w", err)
	}
	var missing []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, path)
		}
	}
	rows.Close()

	for _, path := range missing {
		if err := c.Invalidate(path); err != nil {
			return int(removed), fmt.Errorf("purge %s: %w", path, err)
		}
		removed++
	}

	c.logger.Debug("Purged cache", logging.Fields{
		"removed": removed,
		"missing": len(missing),
	})
	return int(removed), nil
}

// Clear removes every record
func (c *Cache) Clear() (int, error) {
	res, err := c.db.Exec("DELETE FROM analyses")
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats summarizes the cache contents
func (c *Cache) Stats() (*CacheStats, error) {
	stats := &CacheStats{
		Path:    c.path,
		ByType:  map[string]int{},
		ByGenre: map[string]int{},
	}

	err := c.db.QueryRow(`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN version != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN bpm IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM analyses`, sample.AnalysisVersion,
	).Scan(&stats.Entries, &stats.Stale, &stats.WithBPM)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	if err := c.countBy("sample_type", stats.ByType); err != nil {
		return nil, err
	}
	if err := c.countBy("genre", stats.ByGenre); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullInt64
	if err := c.db.QueryRow("SELECT MIN(updated_at), MAX(updated_at) FROM analyses").Scan(&oldest, &newest); err != nil {
		return nil, fmt.Errorf("query timestamps: %w", err)
	}
	stats.Oldest = parseTimestamp(oldest)
	stats.Newest = parseTimestamp(newest)

	for _, suffix := range []string{"", "-wal"} {
		if info, err := os.Stat(c.path + suffix); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

func (c *Cache) countBy(column string, into map[string]int) error {
	rows, err := c.db.Query(fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM analyses WHERE %s IS NOT NULL AND %s != '' GROUP BY %s",
		column, column, column, column))
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			continue
		}
		into[key] = n
	}
	return rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func parseTimestamp(s sql.NullInt64) *time.Time {
	if !s.Valid {
		return nil
	}
	t := time.Unix(s.Int64, 0).UTC()
	return &t
}
