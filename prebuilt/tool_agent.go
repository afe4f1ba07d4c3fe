package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentpatterns/graph"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/tool"
)

// DefaultMaxTurns caps model calls when CreateToolAgent gets a non-positive limit.
const DefaultMaxTurns = 5

// MaxTurnsMessage is the final AI message of a run stopped by the turn cap.
const MaxTurnsMessage = "Maximum turns reached. The last tool results were not sent back to the model."

// ToolCallRecord is one dispatched tool call and its result.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
}

// ToolAgentState represents the state for a tool-calling agent
type ToolAgentState struct {
	Messages []llms.MessageContent `json:"messages"`
	Turns    int                   `json:"turns"`
	Pending  []llms.ToolCall       `json:"pending"`
	Calls    []ToolCallRecord      `json:"calls"`
}

// ToolAgent is a compiled agent ⇄ tools loop.
type ToolAgent struct {
	runnable *graph.StateRunnable[ToolAgentState]
	maxTurns int
}

// CreateToolAgent creates a tool-calling agent. Every tool call in a model
// response is dispatched through registry in order and the results are sent
// back, until the model answers without tool calls or maxTurns model calls
// have been made. An unknown tool or a failing tool aborts the run.
func CreateToolAgent(model llms.Model, registry *tool.Registry, maxTurns int) (*ToolAgent, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	toolDefs := registry.Definitions()
	workflow := graph.NewStateGraph[ToolAgentState]()
	// Each turn runs agent and tools once, plus the final agent step.
	workflow.SetMaxSteps(2*maxTurns + 1)

	workflow.AddNode("agent", "Call the model with the available tools", func(ctx context.Context, state ToolAgentState) (ToolAgentState, error) {
		if state.Turns >= maxTurns {
			log.Warn("tool agent: stopping after %d turns", state.Turns)
			state.Messages = append(state.Messages, llms.TextParts(llms.ChatMessageTypeAI, MaxTurnsMessage))
			state.Pending = nil
			return state, nil
		}
		state.Turns++

		var opts []llms.CallOption
		if len(toolDefs) > 0 {
			opts = append(opts, llms.WithTools(toolDefs))
		}
		resp, err := model.GenerateContent(ctx, state.Messages, opts...)
		if err != nil {
			return state, fmt.Errorf("failed to call model: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return state, fmt.Errorf("empty response from model")
		}

		choice := resp.Choices[0]
		if choice.Content == "" && len(choice.ToolCalls) == 0 {
			return state, fmt.Errorf("empty response from model")
		}

		aiMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
		}
		for _, tc := range choice.ToolCalls {
			aiMsg.Parts = append(aiMsg.Parts, tc)
		}
		state.Messages = append(state.Messages, aiMsg)
		state.Pending = choice.ToolCalls
		return state, nil
	})

	workflow.AddNode("tools", "Dispatch the requested tool calls", func(ctx context.Context, state ToolAgentState) (ToolAgentState, error) {
		for _, tc := range state.Pending {
			if tc.FunctionCall == nil {
				return state, fmt.Errorf("tool call %s has no function", tc.ID)
			}
			name, args := tc.FunctionCall.Name, tc.FunctionCall.Arguments
			log.Info("tool agent: calling %s", name)

			result, err := registry.Dispatch(ctx, name, args)
			if err != nil {
				return state, err
			}

			state.Calls = append(state.Calls, ToolCallRecord{ID: tc.ID, Name: name, Arguments: args, Result: result})
			state.Messages = append(state.Messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       name,
						Content:    result,
					},
				},
			})
		}
		state.Pending = nil
		return state, nil
	})

	workflow.SetEntryPoint("agent")
	workflow.AddConditionalEdge("agent", func(ctx context.Context, state ToolAgentState) string {
		if len(state.Pending) > 0 {
			return "tools"
		}
		return graph.END
	})
	workflow.AddEdge("tools", "agent")

	runnable, err := workflow.Compile()
	if err != nil {
		return nil, err
	}
	return &ToolAgent{runnable: runnable, maxTurns: maxTurns}, nil
}

// MaxTurns returns the configured turn cap.
func (a *ToolAgent) MaxTurns() int { return a.maxTurns }

// Invoke runs the agent from an initial state.
func (a *ToolAgent) Invoke(ctx context.Context, state ToolAgentState) (ToolAgentState, error) {
	return a.runnable.Invoke(ctx, state)
}

// ToolRun is the outcome of RunToolAgent.
type ToolRun struct {
	// Final is the text of the last AI message.
	Final    string
	Messages []llms.MessageContent
	Calls    []ToolCallRecord
	Turns    int
}

// RunToolAgent sends prompt as a single human message and runs the agent to completion.
// On failure the partial run is returned with the error; calls dispatched before
// the failing one are included.
func RunToolAgent(ctx context.Context, agent *ToolAgent, prompt string) (*ToolRun, error) {
	state, err := agent.Invoke(ctx, ToolAgentState{
		Messages: []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
	})
	run := &ToolRun{
		Final:    lastAIText(state.Messages),
		Messages: state.Messages,
		Calls:    state.Calls,
		Turns:    state.Turns,
	}
	return run, err
}

func lastAIText(messages []llms.MessageContent) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.ChatMessageTypeAI {
			continue
		}
		for _, p := range messages[i].Parts {
			if tc, ok := p.(llms.TextContent); ok {
				return tc.Text
			}
		}
	}
	return ""
}
