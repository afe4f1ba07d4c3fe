package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/agentpatterns/store"
)

// RunStore implements store.RunStore using SQLite
type RunStore struct {
	db        *sql.DB
	tableName string
}

// Options configuration for SQLite connection
type Options struct {
	Path      string
	TableName string // Default "runs"
}

// NewRunStore opens the database and creates the runs table if needed.
func NewRunStore(opts Options) (*RunStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	s := NewRunStoreWithDB(db, opts.TableName)
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewRunStoreWithDB wraps an open database without touching its schema.
func NewRunStoreWithDB(db *sql.DB, tableName string) *RunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &RunStore{db: db, tableName: tableName}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *RunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			input TEXT NOT NULL,
			artifacts TEXT NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_workflow ON %s (workflow, created_at);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a run
func (s *RunStore) Save(ctx context.Context, run *store.Run) error {
	artifactsJSON, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workflow, input, artifacts, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workflow = excluded.workflow,
			input = excluded.input,
			artifacts = excluded.artifacts,
			error = excluded.error,
			created_at = excluded.created_at
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Workflow,
		run.Input,
		string(artifactsJSON),
		run.Error,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*store.Run, error) {
	var (
		run           store.Run
		artifactsJSON string
		errText       sql.NullString
		createdAt     string
	)
	if err := row.Scan(&run.ID, &run.Workflow, &run.Input, &artifactsJSON, &errText, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(artifactsJSON), &run.Artifacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifacts: %w", err)
	}
	run.Error = errText.String

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	run.CreatedAt = ts
	return &run, nil
}

// Load retrieves a run by ID
func (s *RunStore) Load(ctx context.Context, id string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow, input, artifacts, error, created_at
		FROM %s
		WHERE id = ?
	`, s.tableName)

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// List returns the runs of a workflow, oldest first
func (s *RunStore) List(ctx context.Context, workflow string) ([]*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow, input, artifacts, error, created_at
		FROM %s
		WHERE (? = '' OR workflow = ?)
		ORDER BY created_at ASC, id ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, workflow, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// Delete removes a run
func (s *RunStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return nil
}
