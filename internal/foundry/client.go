package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"

	"github.com/oklog/ulid/v2"
)

const defaultRequestTimeout = 60 * time.Second

// Client is a typed REST client for the agent platform's project endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiVersion string
	cred       Credential
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(endpoint, apiVersion string, cred Credential, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fraudgateErrors.InvalidInput("project endpoint is required")
	}
	if cred == nil {
		return nil, fraudgateErrors.InvalidInput("credential is required")
	}
	if apiVersion == "" {
		apiVersion = "v1"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		endpoint:   endpoint,
		apiVersion: apiVersion,
		cred:       cred,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the normalized project endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do executes one request against the project endpoint. Every request
// carries a fresh ULID client-request id so platform-side traces can be
// correlated with local logs.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fraudgateErrors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(payload)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)

	u := c.endpoint + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fraudgateErrors.Wrap(err, "build request")
	}

	token, err := c.cred.Token(ctx)
	if err != nil {
		return fraudgateErrors.Wrap(err, "resolve credential")
	}

	requestID := ulid.Make().String()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-ms-client-request-id", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("Platform request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fraudgateErrors.Transient(fmt.Sprintf("request %s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fraudgateErrors.Transient(fmt.Sprintf("read response %s %s: %v", method, path, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope apiErrorEnvelope
		_ = json.Unmarshal(data, &envelope)
		mapped := fraudgateErrors.MapHTTPStatus(resp.StatusCode, envelope.Error.Code, envelope.Error.Message)
		slog.Debug("Platform error", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID, "error", mapped)
		return mapped
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fraudgateErrors.Internal(fmt.Sprintf("decode response %s %s: %v", method, path, err))
	}
	return nil
}
