package reflection

import (
	"context"

	"github.com/smallnest/agentpatterns/graph"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/metrics"
	"github.com/smallnest/agentpatterns/store"
)

// Workflow names recorded in stored runs and metrics.
const (
	WorkflowChart = "chart"
	WorkflowSQL   = "sql"
)

// stepListener logs every node and records its duration.
func stepListener[S any](workflow string, c *metrics.Collector) graph.NodeListener[S] {
	return graph.NodeListenerFunc[S](func(_ context.Context, event graph.NodeEvent, info graph.StepInfo, _ S) {
		switch event {
		case graph.NodeEventStart:
			log.Info("%s workflow: step %d %s", workflow, info.Step, info.Node)
		case graph.NodeEventComplete:
			c.ObserveStep(workflow, info.Node, info.Duration)
		case graph.NodeEventError:
			c.ObserveStep(workflow, info.Node, info.Duration)
			log.Error("%s workflow: %s failed: %v", workflow, info.Node, info.Err)
		}
	})
}

// saveRun stores run when s is set. A failed workflow is saved with its error.
func saveRun(ctx context.Context, s store.RunStore, run *store.Run, runErr error) error {
	if s == nil || run == nil {
		return nil
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	// The run is saved even after cancellation so failures are recorded.
	if err := s.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("failed to save %s run %s: %v", run.Workflow, run.ID, err)
		return err
	}
	log.Debug("saved %s run %s", run.Workflow, run.ID)
	return nil
}
