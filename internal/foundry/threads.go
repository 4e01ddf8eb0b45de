package foundry

import (
	"context"
	"net/http"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
)

type CreateThreadRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreateThread(ctx context.Context, req CreateThreadRequest) (*Thread, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", nil, req, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	if threadID == "" {
		return fraudgateErrors.InvalidInput("thread id is required")
	}
	var result deleted
	return c.do(ctx, http.MethodDelete, "/threads/"+threadID, nil, nil, &result)
}
