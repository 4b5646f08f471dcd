// Package history persists one record per build in a SQLite database,
// backing the `blogbuilder history` command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
)

// Record is one persisted build.
type Record struct {
	BuildID       string
	Start         time.Time
	DurationMS    int64
	PagesRendered int
	PagesSkipped  int
	Artifacts     int
	Outcome       string
}

// Store persists build records.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates a SQLite-backed store. Use ":memory:" for an in-memory
// database, or a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		start INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_rendered INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL,
		artifacts INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_start ON builds(start);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one finished build.
func (s *Store) Append(ctx context.Context, report *build.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, start, duration_ms, pages_rendered, pages_skipped, artifacts, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID,
		report.Start.Unix(),
		report.Duration().Milliseconds(),
		report.PagesRendered,
		report.TotalSkipped()+report.FrontMatterSkips,
		report.Artifacts,
		string(report.Outcome),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, start, duration_ms, pages_rendered, pages_skipped, artifacts, outcome
		 FROM builds ORDER BY start DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var start int64
		if err := rows.Scan(&r.BuildID, &start, &r.DurationMS, &r.PagesRendered,
			&r.PagesSkipped, &r.Artifacts, &r.Outcome); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Start = time.Unix(start, 0).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
