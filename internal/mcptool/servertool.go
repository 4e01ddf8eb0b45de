package mcptool

import (
	"strings"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/foundry"
)

const ToolType = "mcp"

// Approval modes understood by the platform.
const (
	ApprovalAlways = "always"
	ApprovalNever  = "never"
)

// ServerTool describes one remote MCP server attached to an agent: its
// label, endpoint, the tools the agent may use, the approval requirement,
// and the headers forwarded on every approved call.
type ServerTool struct {
	label           string
	serverURL       string
	allowedTools    []string
	requireApproval string
	headers         map[string]string
}

func NewServerTool(label, serverURL string) (*ServerTool, error) {
	label = strings.TrimSpace(label)
	serverURL = strings.TrimSpace(serverURL)
	if label == "" {
		return nil, fraudgateErrors.InvalidInput("mcp server label is required")
	}
	if serverURL == "" {
		return nil, fraudgateErrors.InvalidInput("mcp server url is required")
	}
	return &ServerTool{
		label:           label,
		serverURL:       serverURL,
		requireApproval: ApprovalAlways,
		headers:         make(map[string]string),
	}, nil
}

func (t *ServerTool) Label() string     { return t.label }
func (t *ServerTool) ServerURL() string { return t.serverURL }

// UpdateHeaders sets a header forwarded to the MCP server on approved calls.
func (t *ServerTool) UpdateHeaders(key, value string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	t.headers[key] = value
}

// AllowTools restricts the agent to the named tools on this server.
func (t *ServerTool) AllowTools(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			t.allowedTools = append(t.allowedTools, name)
		}
	}
}

// SetApprovalMode switches between "always" (the default) and "never".
func (t *ServerTool) SetApprovalMode(mode string) error {
	switch mode {
	case ApprovalAlways, ApprovalNever:
		t.requireApproval = mode
		return nil
	default:
		return fraudgateErrors.InvalidInput("approval mode must be always or never, got " + mode)
	}
}

func (t *ServerTool) ApprovalMode() string { return t.requireApproval }

// Definitions produces the agent-side tool declaration.
func (t *ServerTool) Definitions() []foundry.ToolDefinition {
	return []foundry.ToolDefinition{{
		Type:         ToolType,
		ServerLabel:  t.label,
		ServerURL:    t.serverURL,
		AllowedTools: t.allowedTools,
	}}
}

// Resources produces the run-side tool configuration carrying the approval
// requirement and forwarded headers.
func (t *ServerTool) Resources() *foundry.ToolResources {
	return &foundry.ToolResources{
		MCP: []foundry.MCPToolResource{{
			ServerLabel:     t.label,
			RequireApproval: t.requireApproval,
			Headers:         t.Headers(),
		}},
	}
}

// Headers returns a copy of the forwarded headers.
func (t *ServerTool) Headers() map[string]string {
	out := make(map[string]string, len(t.headers))
	for k, v := range t.headers {
		out[k] = v
	}
	return out
}
