package constructor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

// PatchPayload is the body of an incremental per-item merge.
type PatchPayload struct {
	Items []*domain.CatalogItem `json:"items"`
}

// PatchOptions tune the merge semantics. OnMissing only takes effect together
// with PatchDelta.
type PatchOptions struct {
	Credentials
	// OnMissing is the strategy for ids absent from the index:
	// CREATE, IGNORE or FAIL.
	OnMissing  string
	PatchDelta bool
}

// PatchResult is the destination's response to a per-item merge.
type PatchResult struct {
	Status   int
	TaskID   string
	Response map[string]any
}

// PatchItems merges updates into existing items (PATCH v2/items). Unlike the
// full-catalog replace, transient failures retry: up to 3 attempts on HTTP
// 429/5xx or network errors, with quadratic backoff (300ms x attempt^2).
// Every other status is treated as non-transient and fails immediately.
func (c *Client) PatchItems(ctx context.Context, payload PatchPayload, opts PatchOptions) (*PatchResult, error) {
	if err := opts.Credentials.validate(); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, errors.NewValidationError("payload items must be non-empty", "items", nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewValidationError("failed to encode patch payload", "items", nil).WithCause(err)
	}

	qs := url.Values{}
	qs.Set("key", opts.Key)
	qs.Set("section", opts.Section)
	qs.Set("force", "true")
	qs.Set("c", constants.ConstructorConfig.ClientTag)
	if opts.PatchDelta {
		qs.Set("patch_delta", "true")
	}
	if opts.OnMissing != "" {
		qs.Set("on_missing", opts.OnMissing)
	}
	reqURL := c.baseURL + "/v2/items?" + qs.Encode()

	var lastErr error
	for attempt := 1; attempt <= constants.RetryConfig.MaxAttempts; attempt++ {
		result, retryable, err := c.patchOnce(ctx, reqURL, opts.Token, body)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable {
			return nil, err
		}
		if attempt < constants.RetryConfig.MaxAttempts {
			delay := backoffDelay(attempt)
			c.logger.Warn("Patch attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			c.sleep(delay)
		}
	}

	return nil, lastErr
}

func (c *Client) patchOnce(ctx context.Context, reqURL, token string, body []byte) (result *PatchResult, retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, constants.ConstructorConfig.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPatch, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, errors.NewAPIError("failed to create patch request", 500, nil).WithCause(err)
	}
	req.SetBasicAuth(token, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are transient by definition here.
		return nil, true, errors.NewAPIError("patch request failed", 502, nil).WithCause(err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.NewAPIError("failed to read patch response", 502, nil).WithCause(err)
	}

	parsed := parseResponseBody(text)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, errors.NewAPIError(
			fmt.Sprintf("patch rejected: %d %s", resp.StatusCode, string(text)),
			resp.StatusCode,
			nil,
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, errors.NewAPIError(
			fmt.Sprintf("patch failed: %d %s", resp.StatusCode, string(text)),
			resp.StatusCode,
			nil,
		)
	}

	return &PatchResult{
		Status:   resp.StatusCode,
		TaskID:   extractTaskID(parsed),
		Response: parsed,
	}, false, nil
}

func backoffDelay(attempt int) time.Duration {
	return constants.RetryConfig.BackoffBase * time.Duration(attempt*attempt)
}
