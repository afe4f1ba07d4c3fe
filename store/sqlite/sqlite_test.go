package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentpatterns/store"
	"github.com/smallnest/agentpatterns/store/storetest"
)

func TestRunStore(t *testing.T) {
	s, err := NewRunStore(Options{Path: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	defer s.Close()

	storetest.Run(t, s)
}

func TestRunStore_CustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewRunStore(Options{Path: path, TableName: "history"})
	require.NoError(t, err)

	ctx := context.Background()
	run := store.NewRun("chart", "plot it")
	run.Set("chart_v1", "out_v1.png")
	require.NoError(t, s.Save(ctx, run))
	require.NoError(t, s.Close())

	reopened, err := NewRunStore(Options{Path: path, TableName: "history"})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "out_v1.png", loaded.Artifacts["chart_v1"])
	assert.True(t, run.CreatedAt.Equal(loaded.CreatedAt))
}

func TestRunStore_QueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewRunStoreWithDB(db, "")
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, workflow").WillReturnError(assert.AnError)
	_, err = s.Load(ctx, "x")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, store.ErrRunNotFound)

	mock.ExpectExec("DELETE FROM runs").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(ctx, "x"), store.ErrRunNotFound)

	mock.ExpectExec("INSERT INTO runs").WillReturnError(assert.AnError)
	err = s.Save(ctx, store.NewRun("sql", "q"))
	assert.ErrorContains(t, err, "failed to save run")

	assert.NoError(t, mock.ExpectationsWereMet())
}
