package mcptool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerToolValidates(t *testing.T) {
	_, err := NewServerTool("", "https://example.net/mcp")
	require.Error(t, err)
	assert.ErrorIs(t, err, fraudgateErrors.ErrInvalidInput)

	_, err = NewServerTool("fraudalertmcp", "  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, fraudgateErrors.ErrInvalidInput)
}

func TestServerToolDefinitionsAndResources(t *testing.T) {
	tool, err := NewServerTool("fraudalertmcp", "https://apim.example.net/fraud/mcp")
	require.NoError(t, err)

	tool.UpdateHeaders("Ocp-Apim-Subscription-Key", "sk-123")
	tool.AllowTools("create_fraud_alert", " ", "list_fraud_alerts")

	defs := tool.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "mcp", defs[0].Type)
	assert.Equal(t, "fraudalertmcp", defs[0].ServerLabel)
	assert.Equal(t, "https://apim.example.net/fraud/mcp", defs[0].ServerURL)
	assert.Equal(t, []string{"create_fraud_alert", "list_fraud_alerts"}, defs[0].AllowedTools)

	res := tool.Resources()
	require.Len(t, res.MCP, 1)
	assert.Equal(t, "fraudalertmcp", res.MCP[0].ServerLabel)
	assert.Equal(t, ApprovalAlways, res.MCP[0].RequireApproval)
	assert.Equal(t, "sk-123", res.MCP[0].Headers["Ocp-Apim-Subscription-Key"])
}

func TestServerToolHeadersReturnsCopy(t *testing.T) {
	tool, err := NewServerTool("fraudalertmcp", "https://apim.example.net/fraud/mcp")
	require.NoError(t, err)
	tool.UpdateHeaders("Ocp-Apim-Subscription-Key", "sk-123")

	headers := tool.Headers()
	headers["Ocp-Apim-Subscription-Key"] = "tampered"
	assert.Equal(t, "sk-123", tool.Headers()["Ocp-Apim-Subscription-Key"])
}

func TestServerToolApprovalMode(t *testing.T) {
	tool, err := NewServerTool("fraudalertmcp", "https://apim.example.net/fraud/mcp")
	require.NoError(t, err)
	assert.Equal(t, ApprovalAlways, tool.ApprovalMode())

	require.NoError(t, tool.SetApprovalMode(ApprovalNever))
	assert.Equal(t, ApprovalNever, tool.Resources().MCP[0].RequireApproval)

	err = tool.SetApprovalMode("sometimes")
	require.Error(t, err)
	assert.ErrorIs(t, err, fraudgateErrors.ErrInvalidInput)
}

type probeEchoInput struct {
	TransactionID string `json:"transaction_id"`
}

func TestProbeListsTools(t *testing.T) {
	var gotKey string

	server := mcp.NewServer(&mcp.Implementation{Name: "fraud-alert-backend", Version: "1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_fraud_alert",
		Description: "Create a fraud alert for a transaction",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input probeEchoInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{}, nil, nil
	})

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		return server
	}, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	tool, err := NewServerTool("fraudalertmcp", ts.URL)
	require.NoError(t, err)
	tool.UpdateHeaders("Ocp-Apim-Subscription-Key", "sk-123")

	tools, err := tool.Probe(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "create_fraud_alert", tools[0].Name)
	assert.Equal(t, "Create a fraud alert for a transaction", tools[0].Description)
	assert.Equal(t, "sk-123", gotKey)
}
