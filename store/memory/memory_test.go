package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentpatterns/store"
	"github.com/smallnest/agentpatterns/store/storetest"
)

func TestRunStore(t *testing.T) {
	var _ store.RunStore = NewRunStore()
	storetest.Run(t, NewRunStore())
}

func TestRunStore_Isolation(t *testing.T) {
	s := NewRunStore()
	ctx := context.Background()

	run := store.NewRun("sql", "q")
	run.Set("sql_v1", "SELECT 1")
	require.NoError(t, s.Save(ctx, run))

	run.Set("sql_v1", "mutated")
	loaded, err := s.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", loaded.Artifacts["sql_v1"])

	loaded.Set("sql_v1", "mutated again")
	again, err := s.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", again.Artifacts["sql_v1"])
}
