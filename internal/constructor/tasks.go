package constructor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

// Terminal task states reported by the destination service.
const (
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// PollTask queries a background ingest task at a fixed interval until it
// reaches a terminal state. The loop has no deadline of its own; callers
// bound it through ctx.
func (c *Client) PollTask(ctx context.Context, taskID string, creds Credentials, interval time.Duration) (map[string]any, error) {
	if taskID == "" {
		return nil, errors.NewValidationError("task id is required", "taskID", nil)
	}
	if creds.Token == "" {
		return nil, errors.NewValidationError("constructor token is required", "token", nil)
	}

	reqURL := c.baseURL + "/v1/tasks/" + url.PathEscape(taskID)

	for {
		body, err := c.fetchTask(ctx, reqURL, creds.Token)
		if err != nil {
			return nil, err
		}

		status := TaskStatus(body)
		c.logger.Info("Task status",
			zap.String("task_id", taskID),
			zap.String("status", status),
		)

		if status == TaskStatusCompleted || status == TaskStatusFailed {
			return body, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (c *Client) fetchTask(ctx context.Context, reqURL, token string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewAPIError("failed to create task request", 500, nil).WithCause(err)
	}
	req.SetBasicAuth(token, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("task poll request failed", 502, nil).WithCause(err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read task response", 502, nil).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(
			fmt.Sprintf("task poll failed: %d %s", resp.StatusCode, string(text)),
			resp.StatusCode,
			nil,
		)
	}

	return parseResponseBody(text), nil
}

// TaskStatus reads the task state under either of the keys the service is
// known to use.
func TaskStatus(body map[string]any) string {
	for _, key := range []string{"status", "state"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
