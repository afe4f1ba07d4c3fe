package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/smallnest/agentpatterns/config"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/metrics"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath  string
	logLevel    string
	dumpMetrics bool

	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Collector
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "agentpatterns",
		Short:        "Reflection and tool-use agent patterns",
		Long:         "agentpatterns runs generate/execute/reflect workflows for charts and SQL, and tool-calling agents.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.dumpMetrics {
				return a.writeMetrics(cmd)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./agentpatterns.{yaml,toml,json})")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error, none")
	root.PersistentFlags().BoolVar(&a.dumpMetrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	root.AddCommand(a.chartCmd(), a.sqlCmd(), a.toolsCmd(), a.dispatchCmd(), a.runsCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(log.NewGologLoggerTo(os.Stderr, level))

	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	a.metrics, err = metrics.New(a.registry)
	return err
}

func (a *app) writeMetrics(cmd *cobra.Command) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
