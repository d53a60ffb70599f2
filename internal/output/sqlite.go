package output

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/daryltucker/bench-runner/internal/model"
)

// SQLiteStore appends result rows to a SQLite database. Unlike the CSV table
// it keeps rows of earlier runs, distinguished by run_id.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		status TEXT NOT NULL,
		cause TEXT,
		error TEXT,
		framework TEXT NOT NULL,
		model TEXT,
		device TEXT,
		batch_size INTEGER,
		executor TEXT,
		infrastructure TEXT,
		exit_code INTEGER,
		duration_s REAL,
		average_time_s REAL,
		latency_s REAL,
		fps REAL,
		command TEXT,
		test_json TEXT,
		started_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS results_run_id ON results (run_id);
	`
	_, err := s.db.Exec(query)
	return err
}

// Write inserts one row.
func (s *SQLiteStore) Write(r model.ResultRow) error {
	test, err := json.Marshal(r.Test)
	if err != nil {
		return fmt.Errorf("failed to encode test: %w", err)
	}

	query := `INSERT INTO results (
		run_id, idx, status, cause, error, framework, model, device, batch_size,
		executor, infrastructure, exit_code, duration_s, average_time_s, latency_s, fps,
		command, test_json, started_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query,
		r.RunID, r.Index, r.Status.String(), string(r.Cause), r.Error,
		r.Test.Framework, r.Test.Model.Name, r.Test.Parameters.Device, r.Test.Parameters.BatchSize,
		r.Executor, r.Infrastructure, r.ExitCode, r.Duration.Seconds(),
		r.Metrics.AverageTime, r.Metrics.Latency, r.Metrics.FPS,
		r.Command, string(test), r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result row: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
