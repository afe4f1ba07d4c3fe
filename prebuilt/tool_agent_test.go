package prebuilt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentpatterns/metrics"
	"github.com/smallnest/agentpatterns/tool"
)

// scriptedToolLLM returns one choice per call and records the requests.
type scriptedToolLLM struct {
	choices  []*llms.ContentChoice
	requests [][]llms.MessageContent
	tools    [][]llms.Tool
}

func (m *scriptedToolLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.requests = append(m.requests, append([]llms.MessageContent(nil), messages...))
	m.tools = append(m.tools, opts.Tools)

	if len(m.requests) > len(m.choices) {
		return nil, errors.New("no scripted choice left")
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{m.choices[len(m.requests)-1]}}, nil
}

func (m *scriptedToolLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func toolCall(id, name, args string) llms.ToolCall {
	return llms.ToolCall{
		ID:           id,
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
	}
}

func demoRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	r, err := tool.NewRegistry(tool.DemoTools(now)...)
	require.NoError(t, err)
	return r
}

func TestToolAgent_DispatchesEveryCallInOrder(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{
			toolCall("call_1", "get_weather", `{"city":"Paris"}`),
			toolCall("call_2", "calculate_distance", `{"city1":"London","city2":"Paris"}`),
		}},
		{Content: "Paris is clear and 450 km from London."},
	}}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	agent, err := CreateToolAgent(llm, demoRegistry(t).WithMetrics(m), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTurns, agent.MaxTurns())

	run, err := RunToolAgent(context.Background(), agent, "Weather in Paris and distance to London?")
	require.NoError(t, err)

	assert.Equal(t, "Paris is clear and 450 km from London.", run.Final)
	assert.Equal(t, 2, run.Turns)
	require.Len(t, run.Calls, 2)
	assert.Equal(t, "get_weather", run.Calls[0].Name)
	assert.Equal(t, "calculate_distance", run.Calls[1].Name)

	var dist map[string]any
	require.NoError(t, json.Unmarshal([]byte(run.Calls[1].Result), &dist))
	assert.Equal(t, 450.0, dist["distance_km"])

	// The second request carries the AI tool calls and both tool responses.
	require.Len(t, llm.requests, 2)
	second := llm.requests[1]
	require.Len(t, second, 4)
	assert.Equal(t, llms.ChatMessageTypeAI, second[1].Role)
	assert.Len(t, second[1].Parts, 2)
	resp, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", resp.ToolCallID)
	assert.Equal(t, "get_weather", resp.Name)
	assert.Equal(t, llms.ChatMessageTypeTool, second[3].Role)

	require.Len(t, llm.tools[0], 5)
	assert.Equal(t, "function", llm.tools[0][0].Type)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolDispatches.WithLabelValues("get_weather", metrics.StatusOK)))
}

func TestToolAgent_NoToolCall(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{{Content: "The current time is 19:43:26."}}}
	agent, err := CreateToolAgent(llm, demoRegistry(t), 3)
	require.NoError(t, err)

	run, err := RunToolAgent(context.Background(), agent, "What time is it?")
	require.NoError(t, err)
	assert.Equal(t, "The current time is 19:43:26.", run.Final)
	assert.Empty(t, run.Calls)
	assert.Equal(t, 1, run.Turns)
}

func TestToolAgent_MaxTurns(t *testing.T) {
	call := &llms.ContentChoice{ToolCalls: []llms.ToolCall{toolCall("c", "get_time", `{"timezone":"UTC"}`)}}
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{call, call, call}}

	agent, err := CreateToolAgent(llm, demoRegistry(t), 2)
	require.NoError(t, err)

	run, err := RunToolAgent(context.Background(), agent, "loop forever")
	require.NoError(t, err)
	assert.Equal(t, MaxTurnsMessage, run.Final)
	assert.Equal(t, 2, run.Turns)
	assert.Len(t, llm.requests, 2)
	assert.Len(t, run.Calls, 2)
	assert.Equal(t, `{"time":"12:00","timezone":"UTC"}`, run.Calls[0].Result)
}

func TestToolAgent_UnknownToolAborts(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{toolCall("c", "launch_rocket", `{}`)}},
	}}
	agent, err := CreateToolAgent(llm, demoRegistry(t), 5)
	require.NoError(t, err)

	run, err := RunToolAgent(context.Background(), agent, "go")
	require.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Empty(t, run.Calls)
	assert.Len(t, llm.requests, 1)
}

func TestToolAgent_AbortKeepsEarlierCallsOfTurn(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{
			toolCall("c1", "get_weather", `{"city":"Paris"}`),
			toolCall("c2", "launch_rocket", `{}`),
		}},
	}}
	agent, err := CreateToolAgent(llm, demoRegistry(t), 5)
	require.NoError(t, err)

	run, err := RunToolAgent(context.Background(), agent, "weather, then launch")
	require.ErrorIs(t, err, tool.ErrUnknownTool)
	require.NotNil(t, run)
	require.Len(t, run.Calls, 1)
	assert.Equal(t, "get_weather", run.Calls[0].Name)
	assert.Equal(t, "c1", run.Calls[0].ID)

	require.Len(t, run.Messages, 3)
	assert.Equal(t, llms.ChatMessageTypeTool, run.Messages[2].Role)
	resp, ok := run.Messages[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "c1", resp.ToolCallID)
	assert.Equal(t, run.Calls[0].Result, resp.Content)
}

func TestToolAgent_InvalidArgumentsAbort(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{toolCall("c", "convert_currency", `{"amount":"ten"}`)}},
	}}
	agent, err := CreateToolAgent(llm, demoRegistry(t), 5)
	require.NoError(t, err)

	_, err = RunToolAgent(context.Background(), agent, "convert")
	assert.ErrorIs(t, err, tool.ErrInvalidArguments)
}

func TestToolAgent_EmptyResponse(t *testing.T) {
	llm := &scriptedToolLLM{choices: []*llms.ContentChoice{{}}}
	agent, err := CreateToolAgent(llm, demoRegistry(t), 5)
	require.NoError(t, err)

	_, err = RunToolAgent(context.Background(), agent, "hi")
	assert.ErrorContains(t, err, "empty response")
}

func TestCreateToolAgent_Validation(t *testing.T) {
	_, err := CreateToolAgent(nil, demoRegistry(t), 1)
	assert.Error(t, err)
	_, err = CreateToolAgent(&scriptedToolLLM{}, nil, 1)
	assert.Error(t, err)
}
