package foundry

import (
	"context"
	"net/http"
	"net/url"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
)

type CreateMessageRequest struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

func (c *Client) CreateMessage(ctx context.Context, threadID string, req CreateMessageRequest) (*Message, error) {
	if threadID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id is required")
	}
	if req.Role == "" || req.Content == "" {
		return nil, fraudgateErrors.InvalidInput("message role and content are required")
	}
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the thread's messages in the requested order,
// following pagination until the platform reports no more pages.
func (c *Client) ListMessages(ctx context.Context, threadID string, order ListOrder) ([]Message, error) {
	if threadID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id is required")
	}
	if order == "" {
		order = OrderAscending
	}

	var messages []Message
	after := ""
	for {
		query := url.Values{}
		query.Set("order", string(order))
		if after != "" {
			query.Set("after", after)
		}

		var page listEnvelope[Message]
		if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", query, nil, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page.Data...)
		if !page.HasMore || page.LastID == "" {
			break
		}
		after = page.LastID
	}
	return messages, nil
}
