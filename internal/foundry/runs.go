package foundry

import (
	"context"
	"net/http"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
)

type CreateRunRequest struct {
	AgentID       string         `json:"assistant_id"`
	ToolResources *ToolResources `json:"tool_resources,omitempty"`
}

func (c *Client) CreateRun(ctx context.Context, threadID string, req CreateRunRequest) (*Run, error) {
	if threadID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id is required")
	}
	if req.AgentID == "" {
		return nil, fraudgateErrors.InvalidInput("agent id is required")
	}
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", nil, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	if threadID == "" || runID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id and run id are required")
	}
	var run Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) CancelRun(ctx context.Context, threadID, runID string) (*Run, error) {
	if threadID == "" || runID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id and run id are required")
	}
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/cancel", nil, struct{}{}, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

type submitToolApprovalsRequest struct {
	ToolApprovals []ToolApproval `json:"tool_approvals"`
}

// SubmitToolApprovals answers a requires_action run with per-call verdicts.
func (c *Client) SubmitToolApprovals(ctx context.Context, threadID, runID string, approvals []ToolApproval) (*Run, error) {
	if threadID == "" || runID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id and run id are required")
	}
	if len(approvals) == 0 {
		return nil, fraudgateErrors.InvalidInput("at least one tool approval is required")
	}
	var run Run
	req := submitToolApprovalsRequest{ToolApprovals: approvals}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", nil, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
