// Package sqldb manages the demo product transactions database used by the
// SQL workflow: creation and seeding, schema description and query execution.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tmc/langchaingo/tools/sqldatabase"
	"github.com/tmc/langchaingo/tools/sqldatabase/sqlite3"

	"github.com/smallnest/agentpatterns/display"
)

// DB is an open SQLite database. Schema inspection goes through database/sql,
// query execution through langchaingo's sqldatabase.
type DB struct {
	conn  *sql.DB
	query *sqldatabase.SQLDatabase
}

// Open opens the SQLite database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	q, err := sqldatabase.NewSQLDatabaseWithDSN(sqlite3.EngineName, path, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open query engine: %w", err)
	}
	return &DB{conn: conn, query: q}, nil
}

// New wraps existing handles.
func New(conn *sql.DB, query *sqldatabase.SQLDatabase) *DB {
	return &DB{conn: conn, query: query}
}

// Close releases both handles.
func (d *DB) Close() error {
	var errs []string
	if d.query != nil {
		if err := d.query.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close database: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Schema describes every user table as
//
//	Table name: <name>
//	<column> (<TYPE>)
//	...
//
// with tables separated by a blank line.
func (d *DB) Schema(ctx context.Context) (string, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return "", fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating tables: %w", err)
	}

	blocks := make([]string, 0, len(tables))
	for _, table := range tables {
		block, err := d.tableSchema(ctx, table)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (d *DB) tableSchema(ctx context.Context, table string) (string, error) {
	rows, err := d.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return "", fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	var sb strings.Builder
	sb.WriteString("Table name: " + table)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return "", fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		fmt.Fprintf(&sb, "\n%s (%s)", name, colType)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return sb.String(), nil
}

// Result is the tabular output of a query.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Markdown renders the result as a Markdown table.
func (r *Result) Markdown() string {
	if r == nil || len(r.Columns) == 0 {
		return "(no rows)"
	}
	return display.MarkdownTable(r.Columns, r.Rows)
}

// Execute runs query and returns all rows as strings.
func (d *DB) Execute(ctx context.Context, query string) (*Result, error) {
	cols, rows, err := d.query.Engine.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Result{Columns: cols, Rows: rows}, nil
}
