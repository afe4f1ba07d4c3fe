// Package storetest holds the behaviour every store.RunStore implementation
// must share, as a reusable test suite.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentpatterns/store"
)

// Run exercises s. The store must start empty.
func Run(t *testing.T, s store.RunStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	sql1 := &store.Run{ID: "run-1", Workflow: "sql", Input: "Which color sells best?", CreatedAt: base,
		Artifacts: map[string]string{"sql_v1": "SELECT 1", "feedback": "fine"}}
	chart := &store.Run{ID: "run-2", Workflow: "chart", Input: "Q1 2024 vs 2025", CreatedAt: base.Add(time.Minute),
		Artifacts: map[string]string{"chart_v1": "drink_sales_v1.png"}}
	sql2 := &store.Run{ID: "run-3", Workflow: "sql", Input: "Total returns?", CreatedAt: base.Add(2 * time.Minute),
		Error: "failed to execute query", Artifacts: map[string]string{}}

	for _, r := range []*store.Run{sql2, chart, sql1} {
		require.NoError(t, s.Save(ctx, r))
	}

	loaded, err := s.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "sql", loaded.Workflow)
	assert.Equal(t, "Which color sells best?", loaded.Input)
	assert.Equal(t, sql1.Artifacts, loaded.Artifacts)
	assert.True(t, base.Equal(loaded.CreatedAt))

	loaded, err = s.Load(ctx, "run-3")
	require.NoError(t, err)
	assert.Equal(t, "failed to execute query", loaded.Error)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	list, err := s.List(ctx, "sql")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "run-1", list[0].ID)
	assert.Equal(t, "run-3", list[1].ID)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"run-1", "run-2", "run-3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	none, err := s.List(ctx, "tools")
	require.NoError(t, err)
	assert.Empty(t, none)

	// Saving again replaces the run.
	sql1.Artifacts["sql_v2"] = "SELECT 2"
	require.NoError(t, s.Save(ctx, sql1))
	loaded, err = s.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", loaded.Artifacts["sql_v2"])
	list, err = s.List(ctx, "sql")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Delete(ctx, "run-1"))
	_, err = s.Load(ctx, "run-1")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "run-1"), store.ErrRunNotFound)

	list, err = s.List(ctx, "sql")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "run-3", list[0].ID)
}
