package main

import (
	"net/http"

	"github.com/harunnryd/fraudgate/internal/config"
	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/foundry"
	"github.com/harunnryd/fraudgate/internal/mcptool"
)

// buildCredential prefers a pre-issued token over the Azure default chain.
func buildCredential(cfg *config.Config) (foundry.Credential, error) {
	if cfg.Project.APIToken != "" {
		return foundry.NewStaticTokenCredential(cfg.Project.APIToken), nil
	}
	return foundry.NewEntraCredential(cfg.Project.TokenScope)
}

func buildClient(cfg *config.Config) (*foundry.Client, error) {
	if cfg.Project.Endpoint == "" {
		return nil, fraudgateErrors.InvalidInput("project endpoint is required (set AI_FOUNDRY_PROJECT_ENDPOINT or project.endpoint)")
	}

	cred, err := buildCredential(cfg)
	if err != nil {
		return nil, err
	}

	timeout, err := config.DurationOrDefault(cfg.Project.RequestTimeout, config.DefaultProjectRequestTimeout)
	if err != nil {
		return nil, err
	}

	return foundry.NewClient(
		cfg.Project.Endpoint,
		cfg.Project.APIVersion,
		cred,
		foundry.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

func buildServerTool(cfg *config.Config) (*mcptool.ServerTool, error) {
	if cfg.MCP.ServerURL == "" {
		return nil, fraudgateErrors.InvalidInput("mcp server url is required (set MCP_SERVER_ENDPOINT or mcp.server_url)")
	}

	tool, err := mcptool.NewServerTool(cfg.MCP.ServerLabel, cfg.MCP.ServerURL)
	if err != nil {
		return nil, err
	}
	if cfg.MCP.SubscriptionKey != "" {
		tool.UpdateHeaders(cfg.MCP.KeyHeader, cfg.MCP.SubscriptionKey)
	}
	tool.AllowTools(cfg.MCP.AllowedTools...)
	if cfg.MCP.RequireApproval != "" {
		if err := tool.SetApprovalMode(cfg.MCP.RequireApproval); err != nil {
			return nil, err
		}
	}
	return tool, nil
}
