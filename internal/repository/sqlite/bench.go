// Package sqlite stores bench harness runs in a local SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Run is one botmatch invocation.
type Run struct {
	ID        string    `db:"id"`
	Seed      int64     `db:"seed"`
	Maps      int       `db:"maps"`
	Width     int       `db:"width"`
	Height    int       `db:"height"`
	StartedAt time.Time `db:"started_at"`
}

// VariantResult aggregates one policy's decisions across a run.
type VariantResult struct {
	RunID      string  `db:"run_id"`
	Variant    string  `db:"variant"`
	Turns      int     `db:"turns"`
	Actions    int     `db:"actions"`
	Moves      int     `db:"moves"`
	Builds     int     `db:"builds"`
	Workers    int     `db:"workers"`
	Research   int     `db:"research"`
	Passes     int     `db:"passes"`
	Unresolved int     `db:"unresolved"`
	MeanMs     float64 `db:"mean_ms"`
}

// BenchStore wraps a SQLite connection for bench results.
type BenchStore struct {
	conn *sqlx.DB
}

// Open opens or creates the bench database at path.
func Open(path string) (*BenchStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open bench db: %w", err)
	}
	s := &BenchStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *BenchStore) Close() error {
	return s.conn.Close()
}

func (s *BenchStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		maps INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS variant_results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		variant TEXT NOT NULL,
		turns INTEGER NOT NULL,
		actions INTEGER NOT NULL,
		moves INTEGER NOT NULL,
		builds INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		research INTEGER NOT NULL,
		passes INTEGER NOT NULL,
		unresolved INTEGER NOT NULL,
		mean_ms REAL NOT NULL,
		PRIMARY KEY (run_id, variant)
	);

	CREATE INDEX IF NOT EXISTS idx_results_variant ON variant_results(variant);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun writes a run and its per-variant results in one transaction.
func (s *BenchStore) SaveRun(ctx context.Context, run Run, results []VariantResult) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO runs (id, seed, maps, width, height, started_at)
		 VALUES (:id, :seed, :maps, :width, :height, :started_at)`, run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, r := range results {
		r.RunID = run.ID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO variant_results (run_id, variant, turns, actions, moves, builds, workers, research, passes, unresolved, mean_ms)
			 VALUES (:run_id, :variant, :turns, :actions, :moves, :builds, :workers, :research, :passes, :unresolved, :mean_ms)`, r); err != nil {
			return fmt.Errorf("insert result %s: %w", r.Variant, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first.
func (s *BenchStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.conn.SelectContext(ctx, &runs,
		`SELECT id, seed, maps, width, height, started_at FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	return runs, nil
}

// Results returns a run's per-variant results ordered by variant.
func (s *BenchStore) Results(ctx context.Context, runID string) ([]VariantResult, error) {
	var out []VariantResult
	err := s.conn.SelectContext(ctx, &out,
		`SELECT run_id, variant, turns, actions, moves, builds, workers, research, passes, unresolved, mean_ms
		 FROM variant_results WHERE run_id = ? ORDER BY variant`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	return out, nil
}
