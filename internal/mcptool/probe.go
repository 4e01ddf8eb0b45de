package mcptool

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const probeTimeout = 30 * time.Second

// ToolInfo is one tool advertised by the MCP server.
type ToolInfo struct {
	Name        string
	Description string
}

// headerTransport injects the forwarded headers (subscription key) into
// every request of the MCP session.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// Probe connects to the MCP server over streamable HTTP and lists the tools
// it exposes. Validates the endpoint and subscription key before any agent
// run depends on them.
func (t *ServerTool) Probe(ctx context.Context) ([]ToolInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	httpClient := &http.Client{
		Transport: &headerTransport{headers: t.Headers()},
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "fraudgate", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   t.serverURL,
		HTTPClient: httpClient,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to mcp server %s: %w", t.label, err)
	}
	defer session.Close()

	result, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools on mcp server %s: %w", t.label, err)
	}

	tools := make([]ToolInfo, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, ToolInfo{Name: tool.Name, Description: tool.Description})
	}
	return tools, nil
}
