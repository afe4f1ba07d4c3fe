package graph

import (
	"context"
	"time"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// StepInfo describes one node execution as seen by a listener.
type StepInfo struct {
	Node     string
	Step     int
	Duration time.Duration
	Err      error
}

// NodeListener receives node lifecycle events for a graph with state S.
type NodeListener[S any] interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, info StepInfo, state S)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, info StepInfo, state S)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, info StepInfo, state S) {
	f(ctx, event, info, state)
}
