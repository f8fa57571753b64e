package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/ragdesk/internal/core/topic"
)

// defaultProbeTimeout bounds the topic list probe when the backend has no
// timeout of its own.
const defaultProbeTimeout = 10 * time.Second

// BackendCheck probes the workflow backend by listing topics.
type BackendCheck struct {
	topics  topic.Store
	baseURL string
	timeout time.Duration
}

// NewBackendCheck creates a backend check. timeout bounds the probe; zero
// uses a default.
func NewBackendCheck(topics topic.Store, baseURL string, timeout time.Duration) *BackendCheck {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &BackendCheck{
		topics:  topics,
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.topics == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Backend client",
			Status: StatusFail,
			Detail: "backend client not configured",
		})
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	names, err := c.topics.List(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	switch {
	case errors.Is(err, topic.ErrUnexpectedShape):
		result.Items = append(result.Items, CheckItem{
			Label:  "Reachable",
			Status: StatusPass,
			Detail: c.baseURL,
		}, CheckItem{
			Label:  "Topic list",
			Status: StatusFail,
			Detail: "unexpected response shape; check backend.topics_field",
		})
	case errors.Is(err, context.DeadlineExceeded):
		result.Items = append(result.Items, CheckItem{
			Label:  "Reachable",
			Status: StatusFail,
			Detail: fmt.Sprintf("no response from %s within %s", c.baseURL, c.timeout),
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Reachable",
			Status: StatusFail,
			Detail: err.Error(),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Reachable",
			Status: StatusPass,
			Detail: fmt.Sprintf("%s (%s)", c.baseURL, elapsed),
		})

		item := CheckItem{
			Label:  "Topic list",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d topic(s)", len(names)),
		}
		if len(names) == 0 {
			item.Status = StatusWarn
			item.Detail = "backend returned no topics"
		}
		result.Items = append(result.Items, item)
	}

	return result
}
