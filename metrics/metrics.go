// Package metrics exposes Prometheus instruments for tool dispatches, model
// calls and workflow steps.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes recorded in the status label.
const (
	StatusOK          = "ok"
	StatusUnknownTool = "unknown_tool"
	StatusInvalidArgs = "invalid_arguments"
	StatusError       = "error"
)

// UnknownToolLabel is the tool label recorded for names outside the registry.
const UnknownToolLabel = "unknown"

// Collector groups the instruments. A nil *Collector is valid and records nothing.
type Collector struct {
	ToolDispatches *prometheus.CounterVec
	LLMCalls       *prometheus.CounterVec
	StepDuration   *prometheus.HistogramVec
}

// New creates a Collector and registers it on reg. A nil reg leaves the
// instruments unregistered.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		ToolDispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentpatterns",
				Name:      "tool_dispatch_total",
				Help:      "Total number of tool dispatches by tool and outcome",
			},
			[]string{"tool", "status"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentpatterns",
				Name:      "llm_calls_total",
				Help:      "Total number of model calls by workflow step",
			},
			[]string{"step"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agentpatterns",
				Name:      "workflow_step_seconds",
				Help:      "Duration of workflow steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"workflow", "step"},
		),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.ToolDispatches, c.LLMCalls, c.StepDuration} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Discard returns a Collector that records nothing.
func Discard() *Collector { return nil }

// ToolDispatched counts one dispatch of tool with the given status.
func (c *Collector) ToolDispatched(tool, status string) {
	if c == nil {
		return
	}
	c.ToolDispatches.WithLabelValues(tool, status).Inc()
}

// LLMCalled counts one model call made by step.
func (c *Collector) LLMCalled(step string) {
	if c == nil {
		return
	}
	c.LLMCalls.WithLabelValues(step).Inc()
}

// ObserveStep records how long a workflow step took.
func (c *Collector) ObserveStep(workflow, step string, d time.Duration) {
	if c == nil {
		return
	}
	c.StepDuration.WithLabelValues(workflow, step).Observe(d.Seconds())
}
