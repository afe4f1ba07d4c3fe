package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/agentpatterns/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// RunStore implements store.RunStore using PostgreSQL
type RunStore struct {
	pool      DBPool
	tableName string
}

// Options configuration for Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "runs"
}

// NewRunStore connects to Postgres and creates the runs table if needed.
func NewRunStore(ctx context.Context, opts Options) (*RunStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	s := NewRunStoreWithPool(pool, opts.TableName)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewRunStoreWithPool creates a run store with an existing pool
// Useful for testing with mocks
func NewRunStoreWithPool(pool DBPool, tableName string) *RunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &RunStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *RunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			input TEXT NOT NULL,
			artifacts JSONB NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_workflow ON %s (workflow, created_at);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *RunStore) Close() {
	s.pool.Close()
}

// Save inserts or replaces a run
func (s *RunStore) Save(ctx context.Context, run *store.Run) error {
	artifactsJSON, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workflow, input, artifacts, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			workflow = EXCLUDED.workflow,
			input = EXCLUDED.input,
			artifacts = EXCLUDED.artifacts,
			error = EXCLUDED.error,
			created_at = EXCLUDED.created_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		run.ID,
		run.Workflow,
		run.Input,
		artifactsJSON,
		run.Error,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func scanRun(row pgx.Row) (*store.Run, error) {
	var run store.Run
	var artifactsJSON []byte

	if err := row.Scan(
		&run.ID,
		&run.Workflow,
		&run.Input,
		&artifactsJSON,
		&run.Error,
		&run.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(artifactsJSON) > 0 {
		if err := json.Unmarshal(artifactsJSON, &run.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifacts: %w", err)
		}
	}
	return &run, nil
}

// Load retrieves a run by ID
func (s *RunStore) Load(ctx context.Context, id string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow, input, artifacts, error, created_at
		FROM %s
		WHERE id = $1
	`, s.tableName)

	run, err := scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		WHERE ($1 = '' OR workflow = $1)
		ORDER BY created_at ASC, id ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, workflow)
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
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return nil
}
