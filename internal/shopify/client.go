package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"
)

type Client struct {
	store    string
	endpoint string
	token    string
	client   *http.Client
}

type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint derived from the store name.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(storeName, apiVersion, accessToken string, opts ...Option) *Client {
	c := &Client{
		store:    storeName,
		endpoint: fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/graphql.json", storeName, apiVersion),
		token:    accessToken,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig is NewClient that fails with *ConfigError when any setting
// is empty.
func NewFromConfig(storeName, apiVersion, accessToken string, opts ...Option) (*Client, error) {
	var missing []string
	if storeName == "" {
		missing = append(missing, "SHOPIFY_STORE_NAME")
	}
	if apiVersion == "" {
		missing = append(missing, "SHOPIFY_API_VERSION")
	}
	if accessToken == "" {
		missing = append(missing, "SHOPIFY_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}
	return NewClient(storeName, apiVersion, accessToken, opts...), nil
}

func (c *Client) Store() string {
	return c.store
}

// Response is a GraphQL response body kept raw for path lookups.
type Response struct {
	Raw []byte
}

func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// Errors returns the top-level errors array, or "" when there is none.
func (r *Response) Errors() string {
	if e := r.Get("errors"); e.Exists() && e.Raw != "null" {
		return e.Raw
	}
	return ""
}

// UserErrors decodes the userErrors array at payload.userErrors.
func (r *Response) UserErrors(payload string) []UserError {
	res := r.Get("data." + payload + ".userErrors")
	if !res.IsArray() {
		return nil
	}
	var errs []UserError
	if err := json.Unmarshal([]byte(res.Raw), &errs); err != nil {
		return []UserError{{Message: res.Raw}}
	}
	return errs
}

// Do posts one GraphQL document. GraphQL-level errors are left for the
// caller to inspect.
func (c *Client) Do(ctx context.Context, query string) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call shopify: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close shopify response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read shopify response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{Msg: "shopify returned a non-JSON response"}
	}
	return &Response{Raw: body}, nil
}

// Ping runs a trivial shop query and returns the shop name.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.Do(ctx, shopQuery)
	if err != nil {
		return "", err
	}
	if errs := resp.Errors(); errs != "" {
		return "", &GraphQLError{Errors: errs}
	}
	shop := resp.Get("data.shop")
	if !shop.IsObject() {
		return "", &ParseError{Msg: "unexpected response format from Shopify API"}
	}
	return shop.Get("name").String(), nil
}
