// Package provider resolves "provider:model" identifiers into langchaingo
// chat models and builds the provider-specific parts for image input.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// Name identifies a hosted model provider.
type Name string

const (
	OpenAI    Name = "openai"
	Anthropic Name = "anthropic"
)

var (
	// ErrUnknownProvider is returned for an identifier whose prefix names no supported provider.
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrMissingAPIKey is returned when no key is configured for the selected provider.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptyResponse is returned when a model answers with no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)

// ParseModelID splits an identifier such as "openai:gpt-4.1" into provider and
// model name. A bare name resolves to Anthropic when it mentions claude or
// anthropic, and to OpenAI otherwise.
func ParseModelID(id string) (Name, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("empty model identifier")
	}

	prefix, model, found := strings.Cut(id, ":")
	if !found {
		return inferProvider(id), id, nil
	}
	if model == "" {
		return "", "", fmt.Errorf("model identifier %q has no model name", id)
	}

	switch Name(strings.ToLower(prefix)) {
	case OpenAI:
		return OpenAI, model, nil
	case Anthropic:
		return Anthropic, model, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownProvider, prefix)
	}
}

func inferProvider(model string) Name {
	lower := strings.ToLower(model)
	if strings.Contains(lower, "claude") || strings.Contains(lower, "anthropic") {
		return Anthropic
	}
	return OpenAI
}

// Options configures model construction.
type Options struct {
	OpenAIKey    string
	AnthropicKey string
	BaseURL      string
}

// Option mutates Options.
type Option func(*Options)

// WithOpenAIKey sets the token used for OpenAI models.
func WithOpenAIKey(key string) Option { return func(o *Options) { o.OpenAIKey = key } }

// WithAnthropicKey sets the token used for Anthropic models.
func WithAnthropicKey(key string) Option { return func(o *Options) { o.AnthropicKey = key } }

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) Option { return func(o *Options) { o.BaseURL = url } }

// Model is a langchaingo chat model that remembers which provider and model
// name it was built for.
type Model struct {
	llms.Model
	Provider Name
	Name     string
}

// ID returns the canonical "provider:model" identifier.
func (m *Model) ID() string {
	return string(m.Provider) + ":" + m.Name
}

// New builds a chat model for id.
func New(id string, opts ...Option) (*Model, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	p, name, err := ParseModelID(id)
	if err != nil {
		return nil, err
	}

	var llm llms.Model
	switch p {
	case OpenAI:
		if o.OpenAIKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, p)
		}
		clientOpts := []openai.Option{openai.WithModel(name), openai.WithToken(o.OpenAIKey)}
		if o.BaseURL != "" {
			clientOpts = append(clientOpts, openai.WithBaseURL(o.BaseURL))
		}
		llm, err = openai.New(clientOpts...)
	case Anthropic:
		if o.AnthropicKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, p)
		}
		llm, err = anthropic.New(anthropic.WithModel(name), anthropic.WithToken(o.AnthropicKey))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model %s: %w", p, name, err)
	}

	return &Model{Model: llm, Provider: p, Name: name}, nil
}

// Wrap attaches provider metadata to an existing llms.Model.
func Wrap(llm llms.Model, id string) (*Model, error) {
	p, name, err := ParseModelID(id)
	if err != nil {
		return nil, err
	}
	return &Model{Model: llm, Provider: p, Name: name}, nil
}

// FirstChoice returns the content of the first choice in resp.
func FirstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// Complete sends a single human message and returns the first choice.
func Complete(ctx context.Context, m llms.Model, prompt string, opts ...llms.CallOption) (string, error) {
	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	resp, err := m.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	return FirstChoice(resp)
}
