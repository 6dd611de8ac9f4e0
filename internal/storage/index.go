package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/san-kum/chladni/internal/metrics"
)

// Index is a SQLite table of saved runs for queries the per-run
// directories cannot answer cheaply, such as the best-settling seeds of a
// pattern.
type Index struct {
	conn *sqlx.DB
}

// IndexEntry is one row of the runs table.
type IndexEntry struct {
	ID        string  `db:"id"`
	Pattern   string  `db:"pattern"`
	Width     int     `db:"width"`
	Height    int     `db:"height"`
	Particles int     `db:"particles"`
	Frames    int     `db:"frames"`
	Seed      int64   `db:"seed"`
	Settled   float64 `db:"settled"`
	SavedAt   string  `db:"saved_at"`
}

func OpenIndex(path string) (*Index, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	idx := &Index{conn: conn}
	if err := idx.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return idx, nil
}

func (idx *Index) Close() error {
	return idx.conn.Close()
}

func (idx *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pattern TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		particles INTEGER NOT NULL,
		frames INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		settled REAL NOT NULL,
		saved_at TEXT NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_pattern ON runs(pattern);
	`
	_, err := idx.conn.Exec(schema)
	return err
}

// Put inserts or replaces the row for meta.
func (idx *Index) Put(meta RunMetadata) error {
	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	_, err = idx.conn.Exec(`INSERT OR REPLACE INTO runs
		(id, pattern, width, height, particles, frames, seed, settled, saved_at, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Pattern, meta.Width, meta.Height, meta.Particles, meta.Frames,
		meta.Seed, meta.Metrics[metrics.NameSettled],
		meta.Timestamp.UTC().Format(time.RFC3339Nano), string(metricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", meta.ID, err)
	}
	return nil
}

// Sync indexes every run in the store, for directories saved before the
// index existed.
func (idx *Index) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}

	tx, err := idx.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, meta := range runs {
		metricsJSON, _ := json.Marshal(meta.Metrics)
		_, err := tx.Exec(`INSERT OR IGNORE INTO runs
			(id, pattern, width, height, particles, frames, seed, settled, saved_at, metrics_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.ID, meta.Pattern, meta.Width, meta.Height, meta.Particles, meta.Frames,
			meta.Seed, meta.Metrics[metrics.NameSettled],
			meta.Timestamp.UTC().Format(time.RFC3339Nano), string(metricsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("index run %s: %w", meta.ID, err)
		}
	}
	return len(runs), tx.Commit()
}

// Top returns up to limit runs ordered by final settled fraction, highest
// first. An empty pattern matches every pattern.
func (idx *Index) Top(pattern string, limit int) ([]IndexEntry, error) {
	var entries []IndexEntry
	err := idx.conn.Select(&entries,
		`SELECT id, pattern, width, height, particles, frames, seed, settled, saved_at
		FROM runs
		WHERE ? = '' OR pattern = ?
		ORDER BY settled DESC, id
		LIMIT ?`,
		pattern, pattern, limit,
	)
	return entries, err
}

func (idx *Index) Count() (int, error) {
	var n int
	err := idx.conn.Get(&n, "SELECT COUNT(*) FROM runs")
	return n, err
}
