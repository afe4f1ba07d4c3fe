package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expectedSchema = `Table name: transactions
id (INTEGER)
product_id (INTEGER)
product_name (TEXT)
brand (TEXT)
category (TEXT)
color (TEXT)
action (TEXT)
qty_delta (INTEGER)
unit_price (REAL)
notes (TEXT)
ts (DATETIME)`

func openDemo(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.db")
	require.NoError(t, CreateTransactionsDB(context.Background(), path))
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSchema(t *testing.T) {
	db := openDemo(t)
	schema, err := db.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectedSchema, schema)
}

func TestExecute(t *testing.T) {
	db := openDemo(t)
	ctx := context.Background()

	res, err := db.Execute(ctx, "SELECT COUNT(*) AS n FROM transactions WHERE action = 'restock'")
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "32", res.Rows[0][0])

	res, err = db.Execute(ctx, "SELECT DISTINCT action FROM transactions ORDER BY action")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"price_update"}, {"restock"}, {"return"}, {"sale"}}, res.Rows)

	res, err = db.Execute(ctx, "SELECT color, SUM(-qty_delta) AS sold FROM transactions WHERE action = 'sale' GROUP BY color ORDER BY sold DESC")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Rows)
	md := res.Markdown()
	assert.Contains(t, md, "color")
	assert.Contains(t, md, "sold")

	res, err = db.Execute(ctx, "SELECT id, action FROM transactions WHERE qty_delta > 100000")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "action"}, res.Columns)
	assert.Empty(t, res.Rows)

	_, err = db.Execute(ctx, "SELECT nope FROM missing_table")
	assert.ErrorContains(t, err, "failed to execute query")
}

func TestCreateTransactionsDB_Deterministic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "products.db")

	total := func() string {
		db, err := Open(path)
		require.NoError(t, err)
		defer db.Close()
		res, err := db.Execute(ctx, "SELECT COUNT(*), SUM(qty_delta), ROUND(SUM(unit_price), 2) FROM transactions")
		require.NoError(t, err)
		return res.Rows[0][0] + "/" + res.Rows[0][1] + "/" + res.Rows[0][2]
	}

	require.NoError(t, CreateTransactionsDB(ctx, path))
	first := total()
	require.NoError(t, CreateTransactionsDB(ctx, path))
	assert.Equal(t, first, total())

	short := Seed{Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Days: 0}
	require.NoError(t, CreateTransactionsDBWithSeed(ctx, path, short))
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	res, err := db.Execute(ctx, "SELECT COUNT(*) FROM transactions")
	require.NoError(t, err)
	assert.Equal(t, "8", res.Rows[0][0])
}

func TestResultMarkdown_Empty(t *testing.T) {
	var r *Result
	assert.Equal(t, "(no rows)", r.Markdown())
	assert.Equal(t, "(no rows)", (&Result{}).Markdown())
}

func TestSchema_ListError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").WillReturnError(errors.New("disk I/O error"))

	_, err = New(conn, nil).Schema(context.Background())
	assert.ErrorContains(t, err, "failed to list tables")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_DescribeError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("transactions"))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("transactions")`)).
		WillReturnError(errors.New("locked"))

	_, err = New(conn, nil).Schema(context.Background())
	assert.ErrorContains(t, err, "failed to describe table transactions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_FromMockRows(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").AddRow("b"))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("a")`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("b")`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "label", "TEXT", 1, "''", 0))

	schema, err := New(conn, nil).Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Table name: a\nid (INTEGER)\n\nTable name: b\nlabel (TEXT)", schema)
	assert.NoError(t, mock.ExpectationsWereMet())
}
