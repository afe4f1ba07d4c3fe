package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/smallnest/agentpatterns/executor"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/reflection"
	"github.com/smallnest/agentpatterns/sqldb"
)

func (a *app) chartCmd() *cobra.Command {
	var (
		dataPath    string
		instruction string
		basename    string
		reportPath  string
		genModel    string
		reflModel   string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Generate a chart, reflect on the image, and regenerate it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			gen, err := a.model(firstNonEmpty(genModel, a.cfg.Models.Generation))
			if err != nil {
				return err
			}
			refl, err := a.model(firstNonEmpty(reflModel, a.cfg.Models.Reflection))
			if err != nil {
				return err
			}

			runs, closeStore, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			rep, flush := newReporter(cmd.OutOrStdout(), "Chart workflow", reportPath)
			arts, runErr := reflection.RunChartWorkflow(ctx, reflection.ChartWorkflowConfig{
				DatasetPath:   dataPath,
				Instruction:   instruction,
				Generation:    gen,
				Reflection:    refl,
				Executor:      executor.NewPythonExecutor(a.cfg.Python),
				OutputDir:     a.cfg.OutputDir,
				ImageBasename: basename,
				Reporter:      rep,
				Store:         runs,
				Metrics:       a.metrics,
			})
			if err := flush(); err != nil && runErr == nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s -> %s\n", arts.RunID, arts.ChartV1, arts.ChartV2)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "coffee_sales.csv", "coffee sales CSV")
	cmd.Flags().StringVar(&instruction, "instruction", "", "what the chart should show")
	cmd.Flags().StringVar(&basename, "basename", "chart", "chart file basename; writes <basename>_v1.png and _v2.png")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an HTML report to this path")
	cmd.Flags().StringVar(&genModel, "generation-model", "", "override the generation model")
	cmd.Flags().StringVar(&reflModel, "reflection-model", "", "override the reflection model")
	cmd.MarkFlagRequired("instruction")
	return cmd
}

func (a *app) sqlCmd() *cobra.Command {
	var (
		dbPath     string
		question   string
		reset      bool
		reportPath string
		genModel   string
		evalModel  string
	)

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Generate SQL, execute it, reflect on the output, and refine it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, statErr := os.Stat(dbPath)
			if reset || errors.Is(statErr, fs.ErrNotExist) {
				log.Info("creating demo transactions database at %s", dbPath)
				if err := sqldb.CreateTransactionsDB(ctx, dbPath); err != nil {
					return err
				}
			}

			gen, err := a.model(firstNonEmpty(genModel, a.cfg.Models.SQL))
			if err != nil {
				return err
			}
			eval, err := a.model(firstNonEmpty(evalModel, a.cfg.Models.SQL))
			if err != nil {
				return err
			}

			runs, closeStore, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			rep, flush := newReporter(cmd.OutOrStdout(), "SQL workflow", reportPath)
			arts, runErr := reflection.RunSQLWorkflow(ctx, reflection.SQLWorkflowConfig{
				DBPath:     dbPath,
				Question:   question,
				Generation: gen,
				Evaluation: eval,
				Reporter:   rep,
				Store:      runs,
				Metrics:    a.metrics,
			})
			if err := flush(); err != nil && runErr == nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", arts.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "products.db", "SQLite database; the demo database is created when missing")
	cmd.Flags().StringVar(&question, "question", "", "question to answer with SQL")
	cmd.Flags().BoolVar(&reset, "reset", false, "recreate the demo database before running")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an HTML report to this path")
	cmd.Flags().StringVar(&genModel, "generation-model", "", "override the generation model")
	cmd.Flags().StringVar(&evalModel, "evaluation-model", "", "override the evaluation model")
	cmd.MarkFlagRequired("question")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
