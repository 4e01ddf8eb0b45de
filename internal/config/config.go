package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Project ProjectConfig `koanf:"project"`
	Model   ModelConfig   `koanf:"model"`
	Agent   AgentConfig   `koanf:"agent"`
	MCP     MCPConfig     `koanf:"mcp"`
	Runner  RunnerConfig  `koanf:"runner"`
	Report  ReportConfig  `koanf:"report"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ProjectConfig struct {
	Endpoint       string `koanf:"endpoint"`
	APIVersion     string `koanf:"api_version"`
	APIToken       string `koanf:"api_token"`
	TokenScope     string `koanf:"token_scope"`
	RequestTimeout string `koanf:"request_timeout"`
}

type ModelConfig struct {
	Deployment string `koanf:"deployment"`
}

type AgentConfig struct {
	Name          string `koanf:"name"`
	Instructions  string `koanf:"instructions"`
	MessagePrefix string `koanf:"message_prefix"`
	KeepAgent     bool   `koanf:"keep_agent"`
}

type MCPConfig struct {
	ServerLabel     string   `koanf:"server_label"`
	ServerURL       string   `koanf:"server_url"`
	SubscriptionKey string   `koanf:"subscription_key"`
	KeyHeader       string   `koanf:"key_header"`
	AllowedTools    []string `koanf:"allowed_tools"`
	RequireApproval string   `koanf:"require_approval"`
}

type RunnerConfig struct {
	PollInterval        string   `koanf:"poll_interval"`
	RunTimeout          string   `koanf:"run_timeout"`
	MaxTransientRetries int      `koanf:"max_transient_retries"`
	ApprovalMode        string   `koanf:"approval_mode"`
	AutoAllow           []string `koanf:"auto_allow"`
	Deny                []string `koanf:"deny"`
}

type ReportConfig struct {
	Output string `koanf:"output"`
	Color  bool   `koanf:"color"`
}

const (
	DefaultLogLevel                  = "info"
	DefaultProjectAPIVersion         = "v1"
	DefaultProjectTokenScope         = "https://ai.azure.com/.default"
	DefaultProjectRequestTimeout     = "60s"
	DefaultAgentName                 = "fraud-alert-agent"
	DefaultMCPServerLabel            = "fraudalertmcp"
	DefaultMCPKeyHeader              = "Ocp-Apim-Subscription-Key"
	DefaultMCPRequireApproval        = "always"
	DefaultRunnerPollInterval        = "1s"
	DefaultRunnerRunTimeout          = "5m"
	DefaultRunnerMaxTransientRetries = 5
	DefaultRunnerApprovalMode        = "always"
	DefaultReportColor               = true

	DefaultAgentMessagePrefix = "Please send a fraud alert from this transaction summary: "

	DefaultAgentInstructions = `You are a Fraud Alert Management Agent that specializes in creating and managing fraud alerts for financial transactions.

Your responsibilities include:
- Analyzing risk assessment results to determine if fraud alerts are needed
- Creating appropriate fraud alerts using the MCP tool with correct severity and status
- Determining proper decision actions (ALLOW, BLOCK, MONITOR, INVESTIGATE)
- Providing clear reasoning for alert decisions

When creating fraud alerts, use these enumerations:
- severity (LOW, MEDIUM, HIGH, CRITICAL)
- status (OPEN, INVESTIGATING, RESOLVED, FALSE_POSITIVE)
- decision action (ALLOW, BLOCK, MONITOR, INVESTIGATE)

Create fraud alerts for transactions that meet any of these criteria:
1. High risk scores (>= 75)
2. Sanctions-related concerns
3. High-risk jurisdictions
4. Suspicious patterns or anomalies
5. Regulatory compliance violations

Always create comprehensive alerts with proper risk factor documentation and clear reasoning.
Send alerts using the MCP tool without asking for further confirmation.`
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"log.level":                    DefaultLogLevel,
		"project.api_version":          DefaultProjectAPIVersion,
		"project.token_scope":          DefaultProjectTokenScope,
		"project.request_timeout":      DefaultProjectRequestTimeout,
		"agent.name":                   DefaultAgentName,
		"agent.instructions":           DefaultAgentInstructions,
		"agent.message_prefix":         DefaultAgentMessagePrefix,
		"agent.keep_agent":             false,
		"mcp.server_label":             DefaultMCPServerLabel,
		"mcp.key_header":               DefaultMCPKeyHeader,
		"mcp.require_approval":         DefaultMCPRequireApproval,
		"runner.poll_interval":         DefaultRunnerPollInterval,
		"runner.run_timeout":           DefaultRunnerRunTimeout,
		"runner.max_transient_retries": DefaultRunnerMaxTransientRetries,
		"runner.approval_mode":         DefaultRunnerApprovalMode,
		"report.color":                 DefaultReportColor,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".fraudgate", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("FRAUDGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FRAUDGATE_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Post-Process: Inject standard Env Vars if missing
	if v := os.Getenv("AI_FOUNDRY_PROJECT_ENDPOINT"); v != "" && cfg.Project.Endpoint == "" {
		cfg.Project.Endpoint = v
	}
	if v := os.Getenv("AI_FOUNDRY_API_TOKEN"); v != "" && cfg.Project.APIToken == "" {
		cfg.Project.APIToken = v
	}
	if v := os.Getenv("MODEL_DEPLOYMENT_NAME"); v != "" && cfg.Model.Deployment == "" {
		cfg.Model.Deployment = v
	}
	if v := os.Getenv("MCP_SERVER_ENDPOINT"); v != "" && cfg.MCP.ServerURL == "" {
		cfg.MCP.ServerURL = v
	}
	if v := os.Getenv("APIM_SUBSCRIPTION_KEY"); v != "" && cfg.MCP.SubscriptionKey == "" {
		cfg.MCP.SubscriptionKey = v
	}

	cfg.Project.Endpoint = strings.TrimSuffix(strings.TrimSpace(cfg.Project.Endpoint), "/")

	return &cfg, nil
}
