package contentful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the CMS GraphQL delivery API. It is the only component that
// knows the wire shape of the content source.
type Client struct {
	spaceID       string
	environmentID string
	token         string
	baseURL       string
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewClient(spaceID, environmentID, token string, logger *zap.Logger) *Client {
	return &Client{
		spaceID:       spaceID,
		environmentID: environmentID,
		token:         token,
		baseURL:       "https://graphql.contentful.com",
		httpClient: &http.Client{
			Timeout: constants.ContentfulConfig.GraphQLTimeout,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the API host. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/content/v1/spaces/%s/environments/%s", c.baseURL, c.spaceID, c.environmentID)
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Query executes one GraphQL query and returns the raw data document. HTTP
// failures and GraphQL-level errors both surface as APIError.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, errors.NewAPIError("failed to marshal GraphQL request", 400, nil).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewAPIError("failed to create GraphQL request", 500, nil).WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("GraphQL request failed", 502, map[string]any{
			"space": c.spaceID,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read GraphQL response", 502, nil).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(
			fmt.Sprintf("GraphQL HTTP error: %d", resp.StatusCode),
			resp.StatusCode,
			map[string]any{"body": string(body)},
		)
	}

	var parsed gqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewAPIError("failed to decode GraphQL response", 502, nil).WithCause(err)
	}
	if len(parsed.Errors) > 0 {
		c.logger.Error("GraphQL query returned errors",
			zap.String("first_error", parsed.Errors[0].Message),
			zap.Int("error_count", len(parsed.Errors)),
		)
		return nil, errors.NewAPIError("GraphQL error: "+parsed.Errors[0].Message, 502, map[string]any{
			"errors": len(parsed.Errors),
		})
	}

	return parsed.Data, nil
}
