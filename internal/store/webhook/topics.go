package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hay-kot/ragdesk/internal/core/topic"
)

var _ topic.Store = (*Client)(nil)

// List fetches the topic list.
func (c *Client) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.endpoints.ListTopics), nil)
	if err != nil {
		return nil, fmt.Errorf("list topics: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do("list topics", req)
	if err != nil {
		return nil, err
	}

	topics, err := decodeTopics(body, c.topicsField)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// Save replaces the backend topic list. The response body is ignored.
func (c *Client) Save(ctx context.Context, topics []string) error {
	if topics == nil {
		topics = []string{}
	}

	_, err := c.postJSON(ctx, "save topics", c.endpoints.SaveTopics, struct {
		Topics []string `json:"topics"`
	}{Topics: topics})
	return err
}

// decodeTopics accepts either a bare JSON array of strings or an object
// holding that array under field. Anything else is ErrUnexpectedShape.
func decodeTopics(data []byte, field string) ([]string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		return stringList(v)
	case map[string]any:
		list, ok := v[field].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: object has no %q array", topic.ErrUnexpectedShape, field)
		}
		return stringList(list)
	default:
		return nil, fmt.Errorf("%w: got %T", topic.ErrUnexpectedShape, raw)
	}
}

func stringList(items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", topic.ErrUnexpectedShape, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
