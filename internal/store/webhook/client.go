// Package webhook implements the topic store, chat asker and document
// uploader against the workflow backend's HTTP webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of a failed response body is kept on a StatusError.
const maxErrorBody = 512

// Endpoints names the webhook path of each backend operation, relative to the
// base URL.
type Endpoints struct {
	ListTopics string
	SaveTopics string
	Chat       string
	Upload     string
}

// Config holds configuration for the webhook client.
type Config struct {
	BaseURL     string        // Default: http://localhost:5678/webhook
	Endpoints   Endpoints     // Defaults: topics, topics, chat-agent, upload-pdf
	TopicsField string        // Default: topics
	Timeout     time.Duration // Default: none
}

// DefaultEndpoints returns the endpoint names used by the deployed workflows.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ListTopics: "topics",
		SaveTopics: "topics",
		Chat:       "chat-agent",
		Upload:     "upload-pdf",
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the backend webhooks.
type Client struct {
	base        string
	endpoints   Endpoints
	topicsField string
	httpClient  *http.Client
	log         zerolog.Logger
}

// New creates a webhook client. It fails when BaseURL is not an absolute
// http(s) URL.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5678/webhook"
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", cfg.BaseURL)
	}

	defaults := DefaultEndpoints()
	if cfg.Endpoints.ListTopics == "" {
		cfg.Endpoints.ListTopics = defaults.ListTopics
	}
	if cfg.Endpoints.SaveTopics == "" {
		cfg.Endpoints.SaveTopics = defaults.SaveTopics
	}
	if cfg.Endpoints.Chat == "" {
		cfg.Endpoints.Chat = defaults.Chat
	}
	if cfg.Endpoints.Upload == "" {
		cfg.Endpoints.Upload = defaults.Upload
	}
	if cfg.TopicsField == "" {
		cfg.TopicsField = "topics"
	}

	return &Client{
		base:        strings.TrimSuffix(cfg.BaseURL, "/"),
		endpoints:   cfg.Endpoints,
		topicsField: cfg.TopicsField,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
	}, nil
}

// BaseURL returns the webhook base URL.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) endpoint(name string) string {
	return c.base + "/" + strings.TrimPrefix(name, "/")
}

// postJSON sends body as JSON and returns the raw response payload.
func (c *Client) postJSON(ctx context.Context, op, endpoint string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(endpoint), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req)
}

// do executes req and returns the body of a 2xx response. Other statuses are
// returned as *StatusError.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Str("url", req.URL.String()).Msg("request failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	c.log.Debug().
		Str("op", op).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("webhook request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody] + "..."
		}
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: snippet}
	}

	return body, nil
}
