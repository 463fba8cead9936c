package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphQLServer answers each request with respond(query).
func graphQLServer(t *testing.T, respond func(query string) (int, string)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req struct {
			Query string `json:"query"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, body := respond(req.Query)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(url string) *Client {
	return NewClient("solienne", "2024-01", "shpat_test", WithEndpoint(url))
}

func TestNewClientEndpoint(t *testing.T) {
	c := NewClient("solienne", "2024-01", "tok")
	assert.Equal(t, "https://solienne.myshopify.com/admin/api/2024-01/graphql.json", c.endpoint)
	assert.Equal(t, "solienne", c.Store())
}

func TestNewFromConfigMissing(t *testing.T) {
	_, err := NewFromConfig("solienne", "", "")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"SHOPIFY_API_VERSION", "SHOPIFY_ACCESS_TOKEN"}, cfgErr.Missing)

	c, err := NewFromConfig("solienne", "2024-01", "tok")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestPing(t *testing.T) {
	server := graphQLServer(t, func(query string) (int, string) {
		assert.Contains(t, query, "shop {")
		return http.StatusOK, `{"data":{"shop":{"name":"Solienne Store","id":"gid://shopify/Shop/1"}}}`
	})

	name, err := newTestClient(server.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Solienne Store", name)
}

func TestPingFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target any
	}{
		{"http status", http.StatusUnauthorized, `{"errors":"[API] Invalid API key"}`, new(*HTTPError)},
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"Access denied"}]}`, new(*GraphQLError)},
		{"missing shop", http.StatusOK, `{"data":{}}`, new(*ParseError)},
		{"not json", http.StatusOK, `<html>`, new(*ParseError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := graphQLServer(t, func(string) (int, string) { return tt.status, tt.body })

			_, err := newTestClient(server.URL).Ping(context.Background())
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)
		})
	}
}

func TestPingNetworkError(t *testing.T) {
	_, err := newTestClient("http://localhost:99999").Ping(context.Background())
	assert.Error(t, err)
}

const createdProductBody = `{"data":{"productCreate":{"product":{"id":"gid://shopify/Product/42","title":"Vase",
"images":{"edges":[{"node":{"id":"gid://shopify/ProductImage/7","url":"u","altText":null}}]},
"variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/9","title":"Default Title","price":"0.00","sku":""}}]}},
"userErrors":[]}}}`

func TestCreateProduct(t *testing.T) {
	var got string
	server := graphQLServer(t, func(query string) (int, string) {
		got = query
		return http.StatusOK, createdProductBody
	})

	created, err := newTestClient(server.URL).CreateProduct(context.Background(), ProductInput{
		Title:           `The "Dawn" Vase`,
		DescriptionHTML: "<p class=\"x\">line one</p>\n<p>line two</p>",
		Vendor:          "Solienne",
		ProductType:     "Ceramics",
		Tags:            []string{"art", `say "hi"`},
		PublishDate:     "2025-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/Product/42", created.ID)
	assert.Equal(t, "Vase", created.Title)
	assert.Equal(t, "gid://shopify/ProductVariant/9", created.DefaultVariantID())
	assert.Equal(t, []string{"gid://shopify/ProductImage/7"}, created.ImageIDs)
	assert.Empty(t, created.UserErrors)

	assert.Contains(t, got, `title: "The \"Dawn\" Vase"`)
	assert.Contains(t, got, `descriptionHtml: "<p class=\"x\">line one</p> <p>line two</p>"`)
	assert.Contains(t, got, `tags: ["art","say \"hi\""]`)
	assert.Contains(t, got, `publishedAt: "2025-01-01T00:00:00Z"`)
}

func TestCreateProductUserErrors(t *testing.T) {
	server := graphQLServer(t, func(string) (int, string) {
		return http.StatusOK, `{"data":{"productCreate":{"product":null,"userErrors":[{"field":["title"],"message":"Title can't be blank"}]}}}`
	})

	created, err := newTestClient(server.URL).CreateProduct(context.Background(), ProductInput{})
	require.NoError(t, err)
	assert.Empty(t, created.ID)
	require.Len(t, created.UserErrors, 1)
	assert.Equal(t, "title: Title can't be blank", created.UserErrors[0].String())
}

func TestCreateProductGraphQLErrors(t *testing.T) {
	server := graphQLServer(t, func(string) (int, string) {
		return http.StatusOK, `{"errors":[{"message":"syntax error"}]}`
	})

	created, err := newTestClient(server.URL).CreateProduct(context.Background(), ProductInput{})
	require.NoError(t, err)
	assert.Empty(t, created.ID)
	assert.Contains(t, created.Errors, "syntax error")
}

func TestCreateProductHTTPError(t *testing.T) {
	server := graphQLServer(t, func(string) (int, string) { return http.StatusInternalServerError, `{}` })

	_, err := newTestClient(server.URL).CreateProduct(context.Background(), ProductInput{})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestCreateMedia(t *testing.T) {
	server := graphQLServer(t, func(query string) (int, string) {
		assert.Contains(t, query, `productId: "gid://shopify/Product/42"`)
		assert.Contains(t, query, `originalSource: "https://cdn.example/1.jpg"`)
		assert.Contains(t, query, "mediaContentType: IMAGE")
		return http.StatusOK, `{"data":{"productCreateMedia":{"media":[{"id":"gid://shopify/MediaImage/1"}],"userErrors":[]}}}`
	})

	res, err := newTestClient(server.URL).CreateMedia(context.Background(), "gid://shopify/Product/42", "https://cdn.example/1.jpg", "front")
	require.NoError(t, err)
	assert.Equal(t, []string{"gid://shopify/MediaImage/1"}, res.MediaIDs)
	assert.Empty(t, res.UserErrors)
}

func TestCreateMediaUserErrorsAndShape(t *testing.T) {
	server := graphQLServer(t, func(query string) (int, string) {
		if strings.Contains(query, "bad.jpg") {
			return http.StatusOK, `{"data":{"productCreateMedia":{"media":[],"userErrors":[{"field":["media","0","originalSource"],"message":"Image URL is invalid"}]}}}`
		}
		return http.StatusOK, `{"data":{"productCreateMedia":null}}`
	})
	c := newTestClient(server.URL)

	res, err := c.CreateMedia(context.Background(), "p", "https://cdn/bad.jpg", "")
	require.NoError(t, err)
	require.Len(t, res.UserErrors, 1)
	assert.Equal(t, "media.0.originalSource: Image URL is invalid", res.UserErrors[0].String())

	_, err = c.CreateMedia(context.Background(), "p", "https://cdn/odd.jpg", "")
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestUpdateVariant(t *testing.T) {
	server := graphQLServer(t, func(query string) (int, string) {
		assert.Contains(t, query, `id: "gid://shopify/ProductVariant/9"`)
		assert.Contains(t, query, `price: "120.00"`)
		assert.Contains(t, query, `sku: "VASE-001"`)
		assert.Contains(t, query, "availableQuantity: 3")
		assert.Contains(t, query, `locationId: "gid://shopify/Location/1"`)
		assert.Contains(t, query, "requiresShipping: true")
		return http.StatusOK, `{"data":{"productVariantUpdate":{"productVariant":{"id":"gid://shopify/ProductVariant/9"},"userErrors":[]}}}`
	})

	res, err := newTestClient(server.URL).UpdateVariant(context.Background(), VariantInput{
		ID:                "gid://shopify/ProductVariant/9",
		Price:             "120.00",
		SKU:               "VASE-001",
		InventoryQuantity: 3,
		LocationID:        "gid://shopify/Location/1",
		RequiresShipping:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/ProductVariant/9", res.ID)
	assert.Empty(t, res.UserErrors)
}

func TestProductURLs(t *testing.T) {
	assert.Equal(t, "https://solienne.myshopify.com/admin/products/42", AdminProductURL("solienne", "gid://shopify/Product/42"))
	assert.Equal(t, "https://solienne.myshopify.com/admin/products/42", AdminProductURL("solienne", "42"))
	assert.Equal(t, "https://solienne.myshopify.com/products/dawn-vase", PublicProductURL("solienne", "dawn-vase"))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, quote("plain"))
	assert.Equal(t, `"a \"b\" c"`, quote(`a "b" c`))
	assert.Equal(t, `"back\\slash"`, quote(`back\slash`))
}
