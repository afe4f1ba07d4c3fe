package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools"
)

// Tool is a langchaingo tool that also describes its JSON arguments.
// Call receives the raw JSON arguments chosen by the model.
type Tool interface {
	tools.Tool
	// Parameters returns the JSON schema of the argument object.
	Parameters() map[string]any
}

// Func adapts a typed Go function into a Tool. Arguments are decoded from
// JSON into A before fn runs.
type Func[A any] struct {
	name        string
	description string
	params      map[string]any
	fn          func(ctx context.Context, args A) (string, error)
}

// NewFunc creates a Func tool.
func NewFunc[A any](name, description string, params map[string]any, fn func(ctx context.Context, args A) (string, error)) *Func[A] {
	if params == nil {
		params = Object(nil)
	}
	return &Func[A]{name: name, description: description, params: params, fn: fn}
}

func (f *Func[A]) Name() string               { return f.name }
func (f *Func[A]) Description() string        { return f.description }
func (f *Func[A]) Parameters() map[string]any { return f.params }

// Call decodes input and runs the wrapped function. Empty input is treated
// as an empty object.
func (f *Func[A]) Call(ctx context.Context, input string) (string, error) {
	var args A
	if strings.TrimSpace(input) == "" {
		input = "{}"
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return f.fn(ctx, args)
}

// Object builds an object schema from property schemas. Every name in
// required must appear in props.
func Object(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// String is a string property schema.
func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// Number is a number property schema.
func Number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

// JSON marshals v for use as a tool result.
func JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(b), nil
}
