package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ToolDispatched("get_current_time", StatusOK)
	c.ToolDispatched("get_current_time", StatusOK)
	c.ToolDispatched("nope", StatusUnknownTool)
	c.LLMCalled("generate_sql")
	c.ObserveStep("sql", "execute_v1", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ToolDispatches.WithLabelValues("get_current_time", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ToolDispatches.WithLabelValues("nope", StatusUnknownTool)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LLMCalls.WithLabelValues("generate_sql")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.StepDuration))

	count, err := testutil.GatherAndCount(reg, "agentpatterns_tool_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollector_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	c := Discard()
	assert.NotPanics(t, func() {
		c.ToolDispatched("x", StatusOK)
		c.LLMCalled("y")
		c.ObserveStep("z", "w", time.Second)
	})

	c, err := New(nil)
	require.NoError(t, err)
	c.LLMCalled("unregistered")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LLMCalls.WithLabelValues("unregistered")))
}
