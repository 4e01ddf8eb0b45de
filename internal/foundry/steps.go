package foundry

import (
	"context"
	"net/http"
	"net/url"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
)

// ListRunSteps returns the run's steps in execution order, following
// pagination until exhausted.
func (c *Client) ListRunSteps(ctx context.Context, threadID, runID string) ([]RunStep, error) {
	if threadID == "" || runID == "" {
		return nil, fraudgateErrors.InvalidInput("thread id and run id are required")
	}

	var steps []RunStep
	after := ""
	for {
		query := url.Values{}
		query.Set("order", string(OrderAscending))
		if after != "" {
			query.Set("after", after)
		}

		var page listEnvelope[RunStep]
		if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID+"/steps", query, nil, &page); err != nil {
			return nil, err
		}
		steps = append(steps, page.Data...)
		if !page.HasMore || page.LastID == "" {
			break
		}
		after = page.LastID
	}
	return steps, nil
}
