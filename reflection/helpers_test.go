package reflection

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// scriptedLLM answers with responses in order and records every request.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llms.MessageContent
	options   []llms.CallOptions
}

func (m *scriptedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.calls = append(m.calls, messages)
	m.options = append(m.options, opts)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.calls) > len(m.responses) {
		return nil, errors.New("no scripted response left")
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.responses[len(m.calls)-1]}},
	}, nil
}

func (m *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func promptText(msg llms.MessageContent) string {
	for _, p := range msg.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type section struct {
	Title string
	Body  string
}

type recordingReporter struct {
	sections []section
	images   []section
}

func (r *recordingReporter) Section(title, body string) {
	r.sections = append(r.sections, section{title, body})
}

func (r *recordingReporter) Image(title, path string) {
	r.images = append(r.images, section{title, path})
}

func (r *recordingReporter) titles() []string {
	out := make([]string, 0, len(r.sections))
	for _, s := range r.sections {
		out = append(out, s.Title)
	}
	return out
}
