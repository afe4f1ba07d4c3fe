package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/xeipuuv/gojsonschema"

	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/metrics"
)

var (
	// ErrUnknownTool is returned when dispatching a name that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments are not valid JSON or violate the tool schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

type entry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// Registry maps tool names to tools. Its set of names is fixed once built;
// Dispatch rejects everything else.
type Registry struct {
	entries map[string]entry
	order   []string
	metrics *metrics.Collector
}

// NewRegistry builds a registry from tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{entries: make(map[string]entry, len(tools))}
	for _, t := range tools {
		if err := r.register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithMetrics records every dispatch in c.
func (r *Registry) WithMetrics(c *metrics.Collector) *Registry {
	r.metrics = c
	return r
}

func (r *Registry) register(t Tool) error {
	name := t.Name()
	if name == "" {
		return errors.New("tool name must not be empty")
	}
	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("duplicate tool %q", name)
	}

	var schema *gojsonschema.Schema
	if params := t.Parameters(); len(params) > 0 {
		var err error
		schema, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(params))
		if err != nil {
			return fmt.Errorf("invalid schema for tool %s: %w", name, err)
		}
	}

	r.entries[name] = entry{tool: t, schema: schema}
	r.order = append(r.order, name)
	return nil
}

// Names lists registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	e, ok := r.entries[name]
	return e.tool, ok
}

// Definitions describes the tools in langchaingo's function-calling shape.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.entries[name].tool
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// OpenAITools describes the tools in the raw OpenAI API shape.
func (r *Registry) OpenAITools() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.entries[name].tool
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Validate checks argsJSON against the named tool's schema.
func (r *Registry) Validate(name, argsJSON string) error {
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return e.validate(argsJSON)
}

func (e entry) validate(argsJSON string) error {
	if e.schema == nil {
		return nil
	}
	result, err := e.schema.Validate(gojsonschema.NewStringLoader(argsJSON))
	if err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidArguments, e.tool.Name(), err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w for %s: %s", ErrInvalidArguments, e.tool.Name(), strings.Join(errs, "; "))
	}
	return nil
}

// Dispatch runs the named tool with argsJSON, a JSON object. Empty arguments
// are treated as {}.
func (r *Registry) Dispatch(ctx context.Context, name, argsJSON string) (string, error) {
	e, ok := r.entries[name]
	if !ok {
		r.metrics.ToolDispatched(metrics.UnknownToolLabel, metrics.StatusUnknownTool)
		log.Warn("rejected call to unknown tool %q", name)
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if strings.TrimSpace(argsJSON) == "" {
		argsJSON = "{}"
	}
	if err := e.validate(argsJSON); err != nil {
		r.metrics.ToolDispatched(name, metrics.StatusInvalidArgs)
		return "", err
	}

	log.Debug("dispatching tool %s with %s", name, argsJSON)
	out, err := e.tool.Call(ctx, argsJSON)
	if err != nil {
		status := metrics.StatusError
		if errors.Is(err, ErrInvalidArguments) {
			status = metrics.StatusInvalidArgs
		}
		r.metrics.ToolDispatched(name, status)
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}
	r.metrics.ToolDispatched(name, metrics.StatusOK)
	return out, nil
}
