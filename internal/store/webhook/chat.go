package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hay-kot/ragdesk/internal/core/chat"
)

var _ chat.Asker = (*Client)(nil)

// Ask sends one chat turn and returns the "output" field of the response.
// A well-formed response without a string "output" yields "".
func (c *Client) Ask(ctx context.Context, req chat.Request) (string, error) {
	body, err := c.postJSON(ctx, "chat", c.endpoints.Chat, req)
	if err != nil {
		return "", err
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("chat: decode response: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		c.log.Warn().Str("type", fmt.Sprintf("%T", raw)).Msg("chat response is not an object")
		return "", nil
	}

	output, _ := obj["output"].(string)
	return output, nil
}
