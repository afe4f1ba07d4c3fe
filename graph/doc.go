// Package graph provides the typed state graph that drives every workflow and
// agent in this module.
//
// A StateGraph[S] holds named nodes, static edges, conditional edges and an
// entry point. Compile validates the wiring and returns a StateRunnable whose
// Invoke threads a value of type S through the nodes one at a time until END
// is reached.
//
// # Routing
//
// After a node completes, a conditional edge registered for it decides the
// next node; otherwise the first static edge leaving it is followed. A node
// with neither is an error (ErrNoOutgoingEdge).
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("agent", "Call the model", agentFn)
//	g.AddNode("tools", "Run tool calls", toolsFn)
//	g.SetEntryPoint("agent")
//	g.AddConditionalEdge("agent", func(ctx context.Context, s State) string {
//		if len(s.Pending) > 0 {
//			return "tools"
//		}
//		return graph.END
//	})
//	g.AddEdge("tools", "agent")
//
// # Limits and listeners
//
// Invoke stops with ErrMaxStepsExceeded after SetMaxSteps node executions
// (DefaultMaxSteps when unset) and checks the context between nodes.
// Listeners added with AddListener observe start, completion and failure of
// each node together with its duration.
package graph
