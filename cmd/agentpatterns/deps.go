package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/agentpatterns/config"
	"github.com/smallnest/agentpatterns/display"
	"github.com/smallnest/agentpatterns/llms/provider"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/report"
	"github.com/smallnest/agentpatterns/store"
	"github.com/smallnest/agentpatterns/store/memory"
	"github.com/smallnest/agentpatterns/store/postgres"
	redisstore "github.com/smallnest/agentpatterns/store/redis"
	"github.com/smallnest/agentpatterns/store/sqlite"
)

func (a *app) model(id string) (*provider.Model, error) {
	return provider.New(id,
		provider.WithOpenAIKey(a.cfg.OpenAIAPIKey),
		provider.WithAnthropicKey(a.cfg.AnthropicAPIKey),
		provider.WithBaseURL(a.cfg.OpenAIBaseURL),
	)
}

// openStore returns the configured run store and a function releasing it.
func openStore(ctx context.Context, c config.StoreConfig) (store.RunStore, func(), error) {
	switch c.Driver {
	case config.StoreMemory, "":
		return memory.NewRunStore(), func() {}, nil
	case config.StoreSQLite:
		s, err := sqlite.NewRunStore(sqlite.Options{Path: c.DSN})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.StoreRedis:
		opts := &redis.Options{Addr: c.DSN}
		if strings.Contains(c.DSN, "://") {
			var err error
			if opts, err = redis.ParseURL(c.DSN); err != nil {
				return nil, nil, fmt.Errorf("invalid redis url: %w", err)
			}
		}
		s := redisstore.NewRunStoreWithClient(redis.NewClient(opts), c.Prefix, c.TTL)
		return s, func() { s.Close() }, nil
	case config.StorePostgres:
		s, err := postgres.NewRunStore(ctx, postgres.Options{ConnString: c.DSN})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// newReporter prints to w and, when reportPath is set, also collects an HTML
// report. The returned function writes the report.
func newReporter(w io.Writer, title, reportPath string) (display.Reporter, func() error) {
	term := display.NewTerminal(w)
	if reportPath == "" {
		return term, func() error { return nil }
	}
	html := report.NewHTML(title)
	return display.Multi(term, html), func() error {
		if err := html.Save(reportPath); err != nil {
			return err
		}
		log.Info("report written to %s", reportPath)
		return nil
	}
}
