package main

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/smallnest/agentpatterns/display"
	"github.com/smallnest/agentpatterns/llms/provider"
	"github.com/smallnest/agentpatterns/prebuilt"
	"github.com/smallnest/agentpatterns/tool"
)

func (a *app) toolsCmd() *cobra.Command {
	var (
		prompt   string
		maxTurns int
		dir      string
		model    string
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Let a model call the assistant tools until it answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			llm, err := a.model(firstNonEmpty(model, a.cfg.Models.Tool))
			if err != nil {
				return err
			}
			registry, err := tool.NewRegistry(tool.AssistantTools(dir)...)
			if err != nil {
				return err
			}
			if maxTurns <= 0 {
				maxTurns = a.cfg.MaxTurns
			}

			agent, err := prebuilt.CreateToolAgent(llm, registry.WithMetrics(a.metrics), maxTurns)
			if err != nil {
				return err
			}
			run, err := prebuilt.RunToolAgent(cmd.Context(), agent, prompt)
			if run != nil {
				display.PrettyPrintTranscript(cmd.OutOrStdout(), run.Messages)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "user request")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "maximum model calls (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory for files written by tools")
	cmd.Flags().StringVar(&model, "model", "", "override the tool model")
	cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) dispatchCmd() *cobra.Command {
	var (
		message string
		model   string
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one round of manual tool dispatch over the OpenAI API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name, err := provider.ParseModelID(firstNonEmpty(model, a.cfg.Models.SQL))
			if err != nil {
				return err
			}
			if p != provider.OpenAI {
				return fmt.Errorf("dispatch needs an OpenAI model, got %s", p)
			}
			if a.cfg.OpenAIAPIKey == "" {
				return fmt.Errorf("%w for %s", provider.ErrMissingAPIKey, p)
			}

			clientCfg := openai.DefaultConfig(a.cfg.OpenAIAPIKey)
			if a.cfg.OpenAIBaseURL != "" {
				clientCfg.BaseURL = a.cfg.OpenAIBaseURL
			}
			registry, err := tool.NewRegistry(tool.DemoTools(nil)...)
			if err != nil {
				return err
			}

			res, err := prebuilt.DispatchOnce(cmd.Context(), openai.NewClientWithConfig(clientCfg), name, message, registry.WithMetrics(a.metrics))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Selected != "" {
				fmt.Fprintln(out, "Model selected tool:", res.Selected)
			}
			fmt.Fprintln(out, "Assistant:", res.Answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "user message")
	cmd.Flags().StringVar(&model, "model", "", "OpenAI model (default: models.sql from config)")
	cmd.MarkFlagRequired("message")
	return cmd
}
