// Package prebuilt provides the tool-calling agents.
//
// CreateToolAgent builds an agent ⇄ tools loop on top of a langchaingo model:
// every tool call in a response is dispatched through a tool.Registry and the
// results are sent back until the model answers in plain text or the turn cap
// is reached.
//
//	registry, _ := tool.NewRegistry(tool.AssistantTools("")...)
//	agent, _ := prebuilt.CreateToolAgent(model, registry, 5)
//	run, err := prebuilt.RunToolAgent(ctx, agent, "What's the weather where I am?")
//
// DispatchOnce performs a single round of manual dispatch over the raw OpenAI
// chat completions API: the model picks tools, the registry runs them, and
// the results go back for a final answer.
package prebuilt
