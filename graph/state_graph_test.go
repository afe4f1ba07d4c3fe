package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Count int
	Path  []string
}

func visit(name string) func(ctx context.Context, s counterState) (counterState, error) {
	return func(ctx context.Context, s counterState) (counterState, error) {
		s.Count++
		s.Path = append(s.Path, name)
		return s, nil
	}
}

func TestStateGraph_LinearExecution(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("a", "first", visit("a"))
	g.AddNode("b", "second", visit("b"))
	g.AddNode("c", "third", visit("c"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), counterState{})
	require.NoError(t, err)
	assert.Equal(t, 3, final.Count)
	assert.Equal(t, []string{"a", "b", "c"}, final.Path)
}

func TestStateGraph_ConditionalEdge(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("loop", "loop until three", visit("loop"))
	g.AddNode("done", "finish", visit("done"))
	g.SetEntryPoint("loop")
	g.AddConditionalEdge("loop", func(ctx context.Context, s counterState) string {
		if s.Count < 3 {
			return "loop"
		}
		return "done"
	})
	g.AddEdge("done", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), counterState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"loop", "loop", "loop", "done"}, final.Path)
}

func TestStateGraph_CompileErrors(t *testing.T) {
	g := NewStateGraph[counterState]()
	_, err := g.Compile()
	assert.ErrorIs(t, err, ErrEntryPointNotSet)

	g.SetEntryPoint("missing")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)

	g = NewStateGraph[counterState]()
	g.AddNode("a", "", visit("a"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "ghost")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestStateGraph_NoOutgoingEdge(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", visit("a"))
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), counterState{})
	assert.ErrorIs(t, err, ErrNoOutgoingEdge)
}

func TestStateGraph_NodeErrorReturnsNodeState(t *testing.T) {
	boom := errors.New("boom")
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", visit("a"))
	g.AddNode("b", "", func(ctx context.Context, s counterState) (counterState, error) {
		s.Path = append(s.Path, "b-partial")
		return s, boom
	})
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	state, err := runnable.Invoke(context.Background(), counterState{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error in node b")
	assert.Equal(t, 1, state.Count)
	assert.Equal(t, []string{"a", "b-partial"}, state.Path)
}

func TestStateGraph_MaxSteps(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("spin", "", visit("spin"))
	g.SetEntryPoint("spin")
	g.AddEdge("spin", "spin")
	g.SetMaxSteps(4)

	runnable, err := g.Compile()
	require.NoError(t, err)

	state, err := runnable.Invoke(context.Background(), counterState{})
	assert.ErrorIs(t, err, ErrMaxStepsExceeded)
	assert.Equal(t, 4, state.Count)
}

func TestStateGraph_ContextCancelled(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", visit("a"))
	g.SetEntryPoint("a")
	g.AddEdge("a", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runnable.Invoke(ctx, counterState{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStateGraph_Listeners(t *testing.T) {
	var events []string
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", visit("a"))
	g.AddNode("b", "", func(ctx context.Context, s counterState) (counterState, error) {
		return s, errors.New("fail")
	})
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.AddListener(NodeListenerFunc[counterState](func(ctx context.Context, event NodeEvent, info StepInfo, s counterState) {
		events = append(events, info.Node+":"+string(event))
	}))

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), counterState{})
	require.Error(t, err)
	assert.Equal(t, []string{"a:start", "a:complete", "b:start", "b:error"}, events)
}
