package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "List the tools exposed by the MCP server endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := buildServerTool(cfg)
		if err != nil {
			return err
		}

		handler := NewSignalHandler(context.Background())
		handler.Start()
		defer handler.Stop()

		tools, err := tool.Probe(handler.Context())
		if err != nil {
			return err
		}

		fmt.Printf("MCP server %s at %s exposes %d tool(s)\n", tool.Label(), tool.ServerURL(), len(tools))
		for _, t := range tools {
			fmt.Printf("  %s: %s\n", t.Name, t.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
