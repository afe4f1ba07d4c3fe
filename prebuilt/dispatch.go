package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/tool"
)

// ErrNoToolCall is returned by SelectTool when the model answers directly.
var ErrNoToolCall = errors.New("model did not call a tool")

// DispatchResult is the outcome of DispatchOnce.
type DispatchResult struct {
	// Selected is the first tool the model chose, or "" when it called none.
	Selected string
	Calls    []ToolCallRecord
	// Answer is the model's final message content.
	Answer string
}

// SelectTool sends messages with the registry's tools and tool_choice "auto"
// and returns the assistant message. ErrNoToolCall is returned together with
// the message when it carries no tool calls.
func SelectTool(ctx context.Context, client *openai.Client, model string, messages []openai.ChatCompletionMessage, registry *tool.Registry) (openai.ChatCompletionMessage, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      model,
		Messages:   messages,
		Tools:      registry.OpenAITools(),
		ToolChoice: "auto",
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("empty response from model")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return msg, ErrNoToolCall
	}
	return msg, nil
}

// DispatchOnce runs a single round of manual tool dispatch: the model picks
// tools for userMessage, each call is dispatched through registry, and the
// results are sent back for a final answer without tools.
func DispatchOnce(ctx context.Context, client *openai.Client, model, userMessage string, registry *tool.Registry) (*DispatchResult, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	}

	msg, err := SelectTool(ctx, client, model, messages, registry)
	if errors.Is(err, ErrNoToolCall) {
		return &DispatchResult{Answer: msg.Content}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{Selected: msg.ToolCalls[0].Function.Name}
	log.Info("model selected tool: %s", result.Selected)

	messages = append(messages, msg)
	for _, tc := range msg.ToolCalls {
		out, err := registry.Dispatch(ctx, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			return result, err
		}
		result.Calls = append(result.Calls, ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
			Result:    out,
		})
		messages = append(messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: tc.ID,
			Name:       tc.Function.Name,
			Content:    out,
		})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return result, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("empty response from model")
	}
	result.Answer = resp.Choices[0].Message.Content
	return result, nil
}
