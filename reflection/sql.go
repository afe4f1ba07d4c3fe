package reflection

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentpatterns/display"
	"github.com/smallnest/agentpatterns/graph"
	"github.com/smallnest/agentpatterns/llms/provider"
	"github.com/smallnest/agentpatterns/metrics"
	"github.com/smallnest/agentpatterns/parse"
	"github.com/smallnest/agentpatterns/sqldb"
	"github.com/smallnest/agentpatterns/store"
)

// GenerateSQL asks model for a SQLite query answering question. A surrounding
// code fence is removed.
func GenerateSQL(ctx context.Context, model llms.Model, question, schema string) (string, error) {
	content, err := provider.Complete(ctx, model, sqlGenerationPrompt(question, schema), llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to generate sql: %w", err)
	}
	return parse.StripCodeFence(content), nil
}

// RefineSQL reviews query without seeing its output.
func RefineSQL(ctx context.Context, model llms.Model, question, query, schema string) (string, string, error) {
	content, err := provider.Complete(ctx, model, sqlRefinePrompt(question, query, schema), llms.WithTemperature(0))
	if err != nil {
		return "", "", fmt.Errorf("failed to refine sql: %w", err)
	}
	feedback, refined := parse.ParseSQLReflection(content, query)
	return feedback, refined, nil
}

// RefineSQLWithResult reviews query against the rows it returned. When the
// reply holds no usable JSON, the reply becomes the feedback and query is kept.
func RefineSQLWithResult(ctx context.Context, model llms.Model, question, query string, result *sqldb.Result, schema string) (string, string, error) {
	prompt := sqlRefineWithResultPrompt(question, query, result.Markdown(), schema)
	content, err := provider.Complete(ctx, model, prompt, llms.WithTemperature(1.0))
	if err != nil {
		return "", "", fmt.Errorf("failed to refine sql: %w", err)
	}
	feedback, refined := parse.ParseSQLReflection(content, query)
	return feedback, refined, nil
}

// SQLWorkflowConfig configures RunSQLWorkflow. Either DB or DBPath must be set.
type SQLWorkflowConfig struct {
	DBPath string
	DB     *sqldb.DB

	Question string

	Generation llms.Model
	// Evaluation reviews the first query. Defaults to Generation.
	Evaluation llms.Model

	Reporter display.Reporter
	Store    store.RunStore
	Metrics  *metrics.Collector
}

// SQLArtifacts holds everything a SQL run produced.
type SQLArtifacts struct {
	RunID    string
	Schema   string
	SQLV1    string
	ResultV1 *sqldb.Result
	Feedback string
	SQLV2    string
	ResultV2 *sqldb.Result
}

// RunSQLWorkflow extracts the schema, generates a query, executes it, reviews
// it with its output, and executes the refined query.
func RunSQLWorkflow(ctx context.Context, cfg SQLWorkflowConfig) (*SQLArtifacts, error) {
	switch {
	case cfg.Question == "":
		return nil, errors.New("question is required")
	case cfg.Generation == nil:
		return nil, errors.New("generation model is required")
	case cfg.DB == nil && cfg.DBPath == "":
		return nil, errors.New("database is required")
	}
	if cfg.Evaluation == nil {
		cfg.Evaluation = cfg.Generation
	}
	if cfg.Reporter == nil {
		cfg.Reporter = display.Discard
	}

	db := cfg.DB
	if db == nil {
		var err error
		db, err = sqldb.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}

	var run *store.Run
	if cfg.Store != nil {
		run = store.NewRun(WorkflowSQL, cfg.Question)
	}

	runnable, err := buildSQLGraph(cfg, db)
	if err != nil {
		return nil, err
	}

	final, runErr := runnable.Invoke(ctx, SQLArtifacts{})
	if run != nil {
		final.RunID = run.ID
		recordSQL(run, final)
	}
	if err := saveRun(ctx, cfg.Store, run, runErr); err != nil && runErr == nil {
		return &final, err
	}
	if runErr != nil {
		return &final, runErr
	}
	return &final, nil
}

func recordSQL(run *store.Run, a SQLArtifacts) {
	set := func(name, v string) {
		if v != "" {
			run.Set(name, v)
		}
	}
	set("schema", a.Schema)
	set("sql_v1", a.SQLV1)
	set("feedback", a.Feedback)
	set("sql_v2", a.SQLV2)
	if a.ResultV1 != nil {
		set("result_v1", a.ResultV1.Markdown())
	}
	if a.ResultV2 != nil {
		set("result_v2", a.ResultV2.Markdown())
	}
}

func buildSQLGraph(cfg SQLWorkflowConfig, db *sqldb.DB) (*graph.StateRunnable[SQLArtifacts], error) {
	g := graph.NewStateGraph[SQLArtifacts]()
	g.AddListener(stepListener[SQLArtifacts](WorkflowSQL, cfg.Metrics))

	g.AddNode("schema", "Extract database schema", func(ctx context.Context, s SQLArtifacts) (SQLArtifacts, error) {
		schema, err := db.Schema(ctx)
		if err != nil {
			return s, err
		}
		s.Schema = schema
		cfg.Reporter.Section("Step 1: Extract Database Schema", display.CodeBlock("", schema))
		return s, nil
	})

	g.AddNode("generate", "Generate SQL (V1)", func(ctx context.Context, s SQLArtifacts) (SQLArtifacts, error) {
		cfg.Metrics.LLMCalled("sql_generate")
		query, err := GenerateSQL(ctx, cfg.Generation, cfg.Question, s.Schema)
		if err != nil {
			return s, err
		}
		s.SQLV1 = query
		cfg.Reporter.Section("Step 2: Generate SQL (V1)", display.CodeBlock("sql", query))
		return s, nil
	})

	g.AddNode("execute_v1", "Execute SQL (V1)", func(ctx context.Context, s SQLArtifacts) (SQLArtifacts, error) {
		res, err := db.Execute(ctx, s.SQLV1)
		if err != nil {
			return s, err
		}
		s.ResultV1 = res
		cfg.Reporter.Section("Step 3: Execute V1 (SQL Output)", res.Markdown())
		return s, nil
	})

	g.AddNode("reflect", "Reflect on V1 with its output", func(ctx context.Context, s SQLArtifacts) (SQLArtifacts, error) {
		cfg.Metrics.LLMCalled("sql_reflect")
		feedback, refined, err := RefineSQLWithResult(ctx, cfg.Evaluation, cfg.Question, s.SQLV1, s.ResultV1, s.Schema)
		if err != nil {
			return s, err
		}
		s.Feedback = feedback
		s.SQLV2 = refined
		cfg.Reporter.Section("Step 4: Reflect on V1 (Feedback)", feedback)
		cfg.Reporter.Section("Step 4: Refined SQL (V2)", display.CodeBlock("sql", refined))
		return s, nil
	})

	g.AddNode("execute_v2", "Execute SQL (V2)", func(ctx context.Context, s SQLArtifacts) (SQLArtifacts, error) {
		res, err := db.Execute(ctx, s.SQLV2)
		if err != nil {
			return s, err
		}
		s.ResultV2 = res
		cfg.Reporter.Section("Step 5: Execute V2 (Final Answer)", res.Markdown())
		return s, nil
	})

	g.SetEntryPoint("schema")
	g.AddEdge("schema", "generate")
	g.AddEdge("generate", "execute_v1")
	g.AddEdge("execute_v1", "reflect")
	g.AddEdge("reflect", "execute_v2")
	g.AddEdge("execute_v2", graph.END)

	return g.Compile()
}
