package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tmc/langchaingo/llms"
)

var (
	actionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	responseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	finalStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// ToolSequence lists the tool names called in messages, in call order.
func ToolSequence(messages []llms.MessageContent) []string {
	var names []string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.ToolCall); ok && tc.FunctionCall != nil {
				names = append(names, tc.FunctionCall.Name)
			}
		}
	}
	return names
}

// PrettyPrintTranscript writes a readable account of a tool-calling
// conversation: each tool call with its arguments, each tool response, the
// final assistant message and the sequence of tools used.
func PrettyPrintTranscript(w io.Writer, messages []llms.MessageContent) {
	var final string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.ToolCall:
				if p.FunctionCall == nil {
					continue
				}
				fmt.Fprintf(w, "%s %s\n", actionStyle.Render("LLM Action:"), p.FunctionCall.Name)
				fmt.Fprintln(w, indent(prettyJSON(p.FunctionCall.Arguments), "    "))
			case llms.ToolCallResponse:
				fmt.Fprintf(w, "%s %s\n", responseStyle.Render("Tool Response:"), p.Name)
				fmt.Fprintln(w, indent(p.Content, "    "))
			case llms.TextContent:
				if msg.Role == llms.ChatMessageTypeAI && strings.TrimSpace(p.Text) != "" {
					final = p.Text
				}
			}
		}
	}

	if final != "" {
		fmt.Fprintln(w, finalStyle.Render("Final Assistant Message:"))
		fmt.Fprintln(w, final)
	}

	seq := ToolSequence(messages)
	if len(seq) == 0 {
		fmt.Fprintln(w, "Tool Sequence: (none)")
		return
	}
	fmt.Fprintf(w, "Tool Sequence: %s\n", strings.Join(seq, " → "))
}

func prettyJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
