package prebuilt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentpatterns/tool"
)

// fakeChatServer serves scripted chat completions and records the requests.
type fakeChatServer struct {
	mu       sync.Mutex
	replies  []openai.ChatCompletionMessage
	requests []openai.ChatCompletionRequest
	server   *httptest.Server
}

func newFakeChatServer(t *testing.T, replies ...openai.ChatCompletionMessage) *fakeChatServer {
	f := &fakeChatServer{replies: replies}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		n := len(f.requests)
		f.mu.Unlock()

		if n > len(f.replies) {
			http.Error(w, `{"error":{"message":"no reply left"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:      "chatcmpl-test",
			Object:  "chat.completion",
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{{Index: 0, Message: f.replies[n-1]}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeChatServer) client() *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = f.server.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestDispatchOnce(t *testing.T) {
	srv := newFakeChatServer(t,
		openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:       "call_1",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "calculate_distance", Arguments: `{"city1":"London","city2":"Paris"}`},
			}},
		},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "London is about 450 km from Paris."},
	)

	res, err := DispatchOnce(context.Background(), srv.client(), "gpt-4.1", "How far is London from Paris?", demoRegistry(t))
	require.NoError(t, err)

	assert.Equal(t, "calculate_distance", res.Selected)
	assert.Equal(t, "London is about 450 km from Paris.", res.Answer)
	require.Len(t, res.Calls, 1)
	assert.JSONEq(t, `{"city1":"London","city2":"Paris","distance_km":450}`, res.Calls[0].Result)

	require.Len(t, srv.requests, 2)
	first := srv.requests[0]
	assert.Equal(t, "gpt-4.1", first.Model)
	assert.Equal(t, "auto", first.ToolChoice)
	assert.Len(t, first.Tools, 5)

	second := srv.requests[1]
	assert.Empty(t, second.Tools)
	require.Len(t, second.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleUser, second.Messages[0].Role)
	assert.Equal(t, "call_1", second.Messages[1].ToolCalls[0].ID)
	toolMsg := second.Messages[2]
	assert.Equal(t, openai.ChatMessageRoleTool, toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Equal(t, "calculate_distance", toolMsg.Name)
	assert.Equal(t, res.Calls[0].Result, toolMsg.Content)
}

func TestDispatchOnce_NoToolCall(t *testing.T) {
	srv := newFakeChatServer(t, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Hello!"})

	res, err := DispatchOnce(context.Background(), srv.client(), "gpt-4.1", "Say hello", demoRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "", res.Selected)
	assert.Equal(t, "Hello!", res.Answer)
	assert.Empty(t, res.Calls)
	assert.Len(t, srv.requests, 1)
}

func TestDispatchOnce_UnknownTool(t *testing.T) {
	srv := newFakeChatServer(t, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:       "call_x",
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: "delete_everything", Arguments: `{}`},
		}},
	})

	res, err := DispatchOnce(context.Background(), srv.client(), "gpt-4.1", "do it", demoRegistry(t))
	require.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Equal(t, "delete_everything", res.Selected)
	assert.Len(t, srv.requests, 1)
}

func TestSelectTool_NoToolCall(t *testing.T) {
	srv := newFakeChatServer(t, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "No tools needed."})

	msg, err := SelectTool(context.Background(), srv.client(), "gpt-4.1",
		[]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}}, demoRegistry(t))
	assert.ErrorIs(t, err, ErrNoToolCall)
	assert.Equal(t, "No tools needed.", msg.Content)
}

func TestSelectTool_ServerError(t *testing.T) {
	srv := newFakeChatServer(t)
	_, err := SelectTool(context.Background(), srv.client(), "gpt-4.1",
		[]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}}, demoRegistry(t))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToolCall)
}
