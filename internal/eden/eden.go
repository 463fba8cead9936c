package eden

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

const (
	DefaultBaseURL = "https://api.eden.art"
	APIKeyEnv      = "EDEN_API_KEY"
)

// Creation is a generated artifact returned by the agent API. Fields not
// listed here are preserved only in CreationsPage.Raw.
type Creation struct {
	ID        string `json:"_id"`
	Name      string `json:"name,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// ImageURL prefers the full image over the thumbnail.
func (c Creation) ImageURL() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Thumbnail
}

func (c Creation) HasImage() bool {
	return c.ImageURL() != ""
}

type CreationsPage struct {
	Docs       []Creation `json:"docs"`
	NextCursor string     `json:"nextCursor,omitempty"`
	TotalDocs  int        `json:"totalDocs"`

	// Raw is the undecoded upstream body.
	Raw json.RawMessage `json:"-"`
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv builds a client from EDEN_API_KEY. It is meant to be called per
// request so a missing key surfaces as a request error, not a startup failure.
func NewFromEnv(baseURL string) (*Client, error) {
	apiKey := os.Getenv(APIKeyEnv)
	if apiKey == "" {
		return nil, &ConfigError{Var: APIKeyEnv}
	}
	return NewClient(apiKey, WithBaseURL(baseURL)), nil
}

// FetchCreations returns one page of an agent's creations. limit is sent only
// when positive and cursor only when non-empty.
func (c *Client) FetchCreations(ctx context.Context, agentID string, limit int, cursor string) (*CreationsPage, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	endpoint := "/v2/agents/" + url.PathEscape(agentID) + "/creations"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var page CreationsPage
	raw, err := c.get(ctx, endpoint, &page)
	if err != nil {
		return nil, err
	}
	page.Raw = raw
	return &page, nil
}

// get issues an authenticated GET and decodes a 2xx body into out. The raw
// body is returned alongside.
func (c *Client) get(ctx context.Context, endpoint string, out any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close eden response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, &ParseError{Err: err}
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &APIError{Status: status, Message: fmt.Sprintf("API request failed: %d", status)}
	}
	return &APIError{Status: status, Message: payload.Message}
}
