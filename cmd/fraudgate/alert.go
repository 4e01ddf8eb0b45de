package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/harunnryd/fraudgate/internal/approval"
	"github.com/harunnryd/fraudgate/internal/config"
	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/report"
	"github.com/harunnryd/fraudgate/internal/runner"

	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Process a transaction summary and emit a fraud alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaryPath, err := cmd.Flags().GetString("summary")
		if err != nil {
			return err
		}
		if summaryPath == "" {
			return fraudgateErrors.InvalidInput("--summary is required")
		}

		// The summary is embedded verbatim into the first user message.
		summary, err := os.ReadFile(summaryPath)
		if err != nil {
			return fmt.Errorf("read transaction summary: %w", err)
		}

		if cfg.Model.Deployment == "" {
			return fraudgateErrors.InvalidInput("model deployment is required (set MODEL_DEPLOYMENT_NAME or model.deployment)")
		}
		if cfg.MCP.SubscriptionKey == "" {
			slog.Warn("No subscription key configured, tool calls are forwarded without one")
		}

		client, err := buildClient(cfg)
		if err != nil {
			return err
		}
		tool, err := buildServerTool(cfg)
		if err != nil {
			return err
		}

		policy, err := approval.NewPolicy(approval.Mode(cfg.Runner.ApprovalMode), cfg.Runner.AutoAllow, cfg.Runner.Deny)
		if err != nil {
			return err
		}

		pollInterval, err := config.DurationOrDefault(cfg.Runner.PollInterval, config.DefaultRunnerPollInterval)
		if err != nil {
			return err
		}
		runTimeout, err := config.DurationOrDefault(cfg.Runner.RunTimeout, config.DefaultRunnerRunTimeout)
		if err != nil {
			return err
		}

		handler := NewSignalHandler(context.Background())
		handler.Start()
		defer handler.Stop()

		r := runner.New(client, tool, policy, pollInterval, cfg.Runner.MaxTransientRetries)
		outcome, err := r.Orchestrate(handler.Context(), runner.Params{
			AgentName:    cfg.Agent.Name,
			Instructions: cfg.Agent.Instructions,
			Model:        cfg.Model.Deployment,
			Message:      cfg.Agent.MessagePrefix + string(summary),
			KeepAgent:    cfg.Agent.KeepAgent,
			RunTimeout:   runTimeout,
		})
		if err != nil {
			return err
		}

		fmt.Println(report.NewRenderer(cfg.Report.Color).Render(outcome))

		if cfg.Report.Output != "" {
			rendered := report.NewRenderer(false).Render(outcome)
			if err := report.WriteFile(cfg.Report.Output, rendered); err != nil {
				return err
			}
			slog.Info("Report written", "path", cfg.Report.Output)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.Flags().StringP("summary", "s", "", "Transaction summary file to embed in the user message")
	alertCmd.Flags().Bool("agent.keep_agent", false, "Keep the agent on the platform after the run")
	alertCmd.Flags().String("runner.approval_mode", config.DefaultRunnerApprovalMode, "Tool approval mode (always, never)")
	alertCmd.Flags().StringP("report.output", "o", "", "Write the plain report to this file")
}
