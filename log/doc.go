// Package log provides the leveled logging used across agentpatterns.
//
// Libraries log through the package-level functions Debug, Info, Warn and
// Error, which forward to the logger installed with SetDefaultLogger. The
// default writes to stderr with the standard library logger at info level.
//
// Two implementations are provided:
//
//   - DefaultLogger, built on the standard log package, prefixed "[agentpatterns]"
//   - GologLogger, built on github.com/kataras/golog, installed by the CLI
//
// NoOpLogger discards everything.
//
//	log.SetDefaultLogger(log.NewGologLoggerTo(os.Stderr, log.LogLevelDebug))
//	log.Info("running %s workflow", name)
package log
