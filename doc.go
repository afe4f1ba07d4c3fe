// Package agentpatterns implements two LLM agent patterns in Go.
//
// Reflection: a model generates an artifact, the artifact is executed, a
// second model critiques the result and proposes a replacement, and the
// replacement is executed. Package reflection applies this to matplotlib
// chart code over a coffee sales dataset and to SQLite queries over a demo
// transactions database.
//
// Tool use: a hosted model selects registered functions by name with JSON
// arguments. Package tool holds the registry and dispatcher, package prebuilt
// the agent loop and a single-round dispatcher over the OpenAI API.
//
// The agentpatterns command under cmd/ wires both patterns to configuration,
// logging, metrics and run storage.
package agentpatterns
