package constructor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/internal/util"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

// Credentials identify one destination index section. The token doubles as
// the Basic auth username with a blank password.
type Credentials struct {
	Key     string
	Token   string
	Section string
}

func (c Credentials) validate() error {
	if c.Key == "" {
		return errors.NewValidationError("constructor key is required", "key", nil)
	}
	if c.Token == "" {
		return errors.NewValidationError("constructor token is required", "token", nil)
	}
	if c.Section == "" {
		return errors.NewValidationError("constructor section is required", "section", nil)
	}
	return nil
}

// UploadResult is the destination service's response to a bulk ingest. The
// task id, when present, can be polled for completion.
type UploadResult struct {
	TaskID   string
	Response map[string]any
}

// Client talks to the destination catalog service. The same client serves
// both protocol variants: full-catalog replace (UploadCatalog) and
// incremental per-item merge (PatchItems).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	sleep      func(time.Duration)
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		baseURL:    constants.ConstructorConfig.BaseURL,
		httpClient: &http.Client{},
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// WithBaseURL overrides the API host. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// BuildJSONL serializes catalog items to newline-delimited JSON, one compact
// object per line, in stable input order.
func BuildJSONL(items []*domain.CatalogItem) (string, error) {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		encoded, err := json.Marshal(item)
		if err != nil {
			return "", errors.NewValidationError("failed to encode catalog item", "items", item.ID).WithCause(err)
		}
		lines = append(lines, string(encoded))
	}
	return strings.Join(lines, "\n"), nil
}

// ParseJSONL is the inverse of BuildJSONL. Line order is preserved.
func ParseJSONL(jsonl string) ([]*domain.CatalogItem, error) {
	if strings.TrimSpace(jsonl) == "" {
		return []*domain.CatalogItem{}, nil
	}
	lines := strings.Split(jsonl, "\n")
	items := make([]*domain.CatalogItem, 0, len(lines))
	for i, line := range lines {
		var item domain.CatalogItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, errors.NewValidationError("malformed JSONL line", "items", i).WithCause(err)
		}
		items = append(items, &item)
	}
	return items, nil
}

// UploadCatalog performs a full-catalog replace: the entire section's
// contents are superseded by the uploaded items. The payload must be
// non-empty; force is always asserted so large diffs are not rejected. A
// non-success status is terminal for the run. There is no retry here:
// repeating a large invalidation carries rate-limit cost and needs operator
// visibility.
func (c *Client) UploadCatalog(ctx context.Context, itemsJSONL string, creds Credentials) (*UploadResult, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemsJSONL) == "" {
		return nil, errors.NewValidationError("items JSONL must be non-empty", "items", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="items"; filename="items.jsonl"`)
	header.Set("Content-Type", "application/jsonl")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, errors.NewAPIError("failed to build multipart body", 500, nil).WithCause(err)
	}
	if _, err := io.WriteString(part, itemsJSONL); err != nil {
		return nil, errors.NewAPIError("failed to write multipart payload", 500, nil).WithCause(err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewAPIError("failed to finalize multipart body", 500, nil).WithCause(err)
	}

	qs := url.Values{}
	qs.Set("key", creds.Key)
	qs.Set("section", creds.Section)
	qs.Set("force", "true")
	qs.Set("c", constants.ConstructorConfig.ClientTag)
	qs.Set("format", "jsonl")
	reqURL := c.baseURL + "/v1/catalog?" + qs.Encode()

	attemptCtx, cancel := context.WithTimeout(ctx, constants.ConstructorConfig.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPut, reqURL, &body)
	if err != nil {
		return nil, errors.NewAPIError("failed to create upload request", 500, nil).WithCause(err)
	}
	req.SetBasicAuth(creds.Token, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("Uploading full catalog",
		zap.String("key", util.Redact(creds.Key)),
		zap.String("section", creds.Section),
		zap.Int("payload_bytes", body.Len()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("catalog upload request failed", 502, map[string]any{
			"section": creds.Section,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read upload response", 502, nil).WithCause(err)
	}

	parsed := parseResponseBody(text)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError(
			fmt.Sprintf("catalog upload failed: %d %s", resp.StatusCode, string(text)),
			resp.StatusCode,
			map[string]any{"section": creds.Section},
		)
	}

	return &UploadResult{
		TaskID:   extractTaskID(parsed),
		Response: parsed,
	}, nil
}

// parseResponseBody decodes the body as JSON when possible, otherwise wraps
// the raw text.
func parseResponseBody(text []byte) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal(text, &parsed); err == nil && parsed != nil {
		return parsed
	}
	return map[string]any{"raw": string(text)}
}

// extractTaskID surfaces the background task identifier under either of the
// keys the service is known to use.
func extractTaskID(body map[string]any) string {
	for _, key := range []string{"task_id", "id"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
