package foundry

import (
	"context"
	"net/http"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
)

// CreateAgentRequest declares a new agent on the platform.
type CreateAgentRequest struct {
	Model        string            `json:"model"`
	Name         string            `json:"name,omitempty"`
	Description  string            `json:"description,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Tools        []ToolDefinition  `json:"tools,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	if req.Model == "" {
		return nil, fraudgateErrors.InvalidInput("agent model deployment is required")
	}
	var agent Agent
	if err := c.do(ctx, http.MethodPost, "/assistants", nil, req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	if agentID == "" {
		return nil, fraudgateErrors.InvalidInput("agent id is required")
	}
	var agent Agent
	if err := c.do(ctx, http.MethodGet, "/assistants/"+agentID, nil, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fraudgateErrors.InvalidInput("agent id is required")
	}
	var result deleted
	return c.do(ctx, http.MethodDelete, "/assistants/"+agentID, nil, nil, &result)
}
