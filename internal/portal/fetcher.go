package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vbonduro/solienne/internal/eden"
)

// ProxyFetcher loads creations through the portal's own /api/creations
// endpoint, so the page never holds the agent API key.
type ProxyFetcher struct {
	baseURL string
	client  *http.Client
}

func NewProxyFetcher(baseURL string, client *http.Client) *ProxyFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &ProxyFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (f *ProxyFetcher) FetchCreations(ctx context.Context, limit int) ([]eden.Creation, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/creations?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call creations endpoint: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close creations response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("creations endpoint returned status %d", resp.StatusCode)
	}

	var page eden.CreationsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode creations: %w", err)
	}
	return page.Docs, nil
}
