package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/agentpatterns/display"
)

func (a *app) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored workflow runs",
	}
	cmd.AddCommand(a.runsListCmd(), a.runsShowCmd(), a.runsDeleteCmd())
	return cmd
}

func (a *app) runsListCmd() *cobra.Command {
	var workflow string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, closeStore, err := openStore(cmd.Context(), a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := runs.List(cmd.Context(), workflow)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, r := range list {
				status := "ok"
				if r.Error != "" {
					status = "failed"
				}
				rows = append(rows, []string{r.ID, r.Workflow, r.CreatedAt.Format(time.RFC3339), status, strconv.Itoa(len(r.Artifacts)), r.Input})
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.MarkdownTable([]string{"id", "workflow", "created", "status", "artifacts", "input"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&workflow, "workflow", "", "only runs of this workflow (chart or sql)")
	return cmd
}

func (a *app) runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the artifacts of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, closeStore, err := openStore(cmd.Context(), a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			run, err := runs.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			term := display.NewTerminal(cmd.OutOrStdout())
			term.Section(fmt.Sprintf("%s run %s", run.Workflow, run.ID), run.Input)
			if run.Error != "" {
				term.Section("error", run.Error)
			}
			for _, name := range run.ArtifactNames() {
				term.Section(name, run.Artifacts[name])
			}
			return nil
		},
	}
}

func (a *app) runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, closeStore, err := openStore(cmd.Context(), a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()
			return runs.Delete(cmd.Context(), args[0])
		},
	}
}
