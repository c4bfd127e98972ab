package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PSXPipeline/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_time      INTEGER NOT NULL,
			source        TEXT,
			ticker_count  INTEGER,
			added         INTEGER,
			removed       INTEGER,
			renamed       INTEGER,
			conflicts     INTEGER,
			snapshot_path TEXT,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_time ON sync_runs(run_time)`,

		`CREATE TABLE IF NOT EXISTS change_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_time    INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			prev_symbol TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_time ON change_events(run_time)`,
		`CREATE INDEX IF NOT EXISTS idx_events_symbol ON change_events(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sync_runs
		(run_time, source, ticker_count, added, removed, renamed, conflicts, snapshot_path, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.RunTime.Unix(), run.Source, run.TickerCount,
		run.Added, run.Removed, run.Renamed, run.Conflicts,
		run.SnapshotPath, run.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordEvents(runTime time.Time, events []model.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, e := range events {
		if _, err := tx.Exec(`INSERT INTO change_events (run_time, kind, symbol, prev_symbol)
			VALUES (?,?,?,?)`,
			runTime.Unix(), string(e.Kind), e.Symbol, e.PrevSymbol,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
