// Package store persists monitor snapshots to a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const dayLayout = "2006-01-02"

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// Run is one recording session of the monitor loop
type Run struct {
	ID        string
	Root      string
	StartedAt time.Time
}

// DefaultPath returns the snapshot database location, creating its directory
func DefaultPath(appName string) (string, error) {
	return xdg.DataFile(filepath.Join(appName, "snapshots.db"))
}

// Open opens a SQLite database connection
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// WAL lets `history --local` read while a recorder writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	return &DB{db}, nil
}

// Migrate creates the database schema
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		taken_at TEXT NOT NULL,
		day TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cache_creation_tokens INTEGER NOT NULL,
		cache_read_tokens INTEGER NOT NULL,
		message_count INTEGER NOT NULL,
		cost REAL NOT NULL DEFAULT 0,
		files INTEGER NOT NULL DEFAULT 0,
		failed_files INTEGER NOT NULL DEFAULT 0,
		skipped_lines INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
		UNIQUE(run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_day ON snapshots(day);
	`

	_, err := db.Exec(schema)
	return err
}

// StartRun records a new run over root and returns it
func (db *DB) StartRun(ctx context.Context, id, root string, startedAt time.Time) (*Run, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO runs (id, root, started_at) VALUES (?, ?, ?)`,
		id, root, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return &Run{ID: id, Root: root, StartedAt: startedAt}, nil
}

// InsertSnapshot stores a snapshot for a run, replacing an existing one for the same tick
func (db *DB) InsertSnapshot(ctx context.Context, runID string, snap model.Snapshot) error {
	u := snap.Usage
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots
		(run_id, tick, taken_at, day, input_tokens, output_tokens, cache_creation_tokens,
		 cache_read_tokens, message_count, cost, files, failed_files, skipped_lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, snap.Tick, snap.TakenAt.UTC().Format(time.RFC3339Nano), snap.TakenAt.Format(dayLayout),
		int64(u.TotalInput), int64(u.TotalOutput), int64(u.TotalCacheCreation),
		int64(u.TotalCacheRead), int64(u.MessageCount),
		snap.Cost, snap.Files, snap.FailedFiles, snap.SkippedLines,
	)
	return err
}

const snapshotColumns = `tick, taken_at, input_tokens, output_tokens, cache_creation_tokens,
	cache_read_tokens, message_count, cost, files, failed_files, skipped_lines`

// Latest returns the most recently stored snapshot, or nil if there is none
func (db *DB) Latest(ctx context.Context) (*model.Snapshot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	snaps, err := scanSnapshots(rows)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// DailyLatest returns the last snapshot of each day recorded over root, newest day first
func (db *DB) DailyLatest(ctx context.Context, root string, days int) ([]model.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id IN (
			SELECT MAX(s.id)
			FROM snapshots s
			JOIN runs r ON r.id = s.run_id
			WHERE r.root = ?
			GROUP BY s.day
		)
		ORDER BY day DESC
		LIMIT ?`, root, days)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

// RunSnapshots returns every snapshot of a run in tick order
func (db *DB) RunSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]model.Snapshot, error) {
	defer rows.Close()

	var results []model.Snapshot
	for rows.Next() {
		var (
			s       model.Snapshot
			takenAt string
		)
		if err := rows.Scan(&s.Tick, &takenAt,
			&s.Usage.TotalInput, &s.Usage.TotalOutput, &s.Usage.TotalCacheCreation,
			&s.Usage.TotalCacheRead, &s.Usage.MessageCount,
			&s.Cost, &s.Files, &s.FailedFiles, &s.SkippedLines); err != nil {
			return nil, err
		}

		t, err := time.Parse(time.RFC3339Nano, takenAt)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot time %q: %w", takenAt, err)
		}
		s.TakenAt = t.Local()
		results = append(results, s)
	}
	return results, rows.Err()
}
