package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"drakyn/config"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const DefaultListLimit = 20

// RunRecord is the journal entry for one agent run. Only metadata is kept;
// prompts, completions and tool output are never stored.
type RunRecord struct {
	ID         string
	Model      string
	Outcome    string // "answer", "error" or "cancelled"
	Iterations int
	ToolCalls  int
	ToolErrors int
	Error      string
	StartedAt  time.Time
	Duration   time.Duration
}

type RunStorage struct {
	db *sql.DB
}

// NewRunStorage opens (or creates) runs.db in dataDir.
func NewRunStorage(dataDir string) (*RunStorage, error) {
	return OpenRunStorage(filepath.Join(dataDir, "runs.db"))
}

// OpenRunStorage opens the journal at dbPath.
func OpenRunStorage(dbPath string) (*RunStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &RunStorage{db: db}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (rs *RunStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		outcome TEXT NOT NULL,
		iterations INTEGER NOT NULL DEFAULT 0,
		tool_calls INTEGER NOT NULL DEFAULT 0,
		tool_errors INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := rs.db.Exec(schema)
	return err
}

// Record stores run, assigning an ID when it has none. The stored record is
// returned with its final ID.
func (rs *RunStorage) Record(ctx context.Context, run RunRecord) (RunRecord, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `
	INSERT OR REPLACE INTO runs (id, model, outcome, iterations, tool_calls, tool_errors, error, started_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := rs.db.ExecContext(ctx, query,
		run.ID,
		run.Model,
		run.Outcome,
		run.Iterations,
		run.ToolCalls,
		run.ToolErrors,
		run.Error,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return run, fmt.Errorf("failed to record run: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Storage] Recorded run %s (%s, %d iterations)", run.ID, run.Outcome, run.Iterations)
	}
	return run, nil
}

// Load returns the run with id, or nil when it doesn't exist.
func (rs *RunStorage) Load(ctx context.Context, id string) (*RunRecord, error) {
	query := `
	SELECT id, model, outcome, iterations, tool_calls, tool_errors, error, started_at, duration_ms
	FROM runs
	WHERE id = ?
	`

	run, err := scanRun(rs.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs, newest first. A non-positive limit uses
// DefaultListLimit.
func (rs *RunStorage) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
	SELECT id, model, outcome, iterations, tool_calls, tool_errors, error, started_at, duration_ms
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := rs.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	var errText sql.NullString
	var durationMS int64

	err := row.Scan(
		&run.ID,
		&run.Model,
		&run.Outcome,
		&run.Iterations,
		&run.ToolCalls,
		&run.ToolErrors,
		&errText,
		&run.StartedAt,
		&durationMS,
	)
	if err != nil {
		return run, err
	}

	run.Error = errText.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

func (rs *RunStorage) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
