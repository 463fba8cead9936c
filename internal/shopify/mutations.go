package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const shopQuery = `
query {
  shop {
    name
    id
  }
}`

type ProductInput struct {
	Title           string
	DescriptionHTML string
	Vendor          string
	ProductType     string
	Tags            []string
	PublishDate     string
}

// CreatedProduct is the outcome of productCreate. ID is empty when the
// product was not created.
type CreatedProduct struct {
	ID         string
	Title      string
	VariantIDs []string
	ImageIDs   []string
	UserErrors []UserError
	// Errors holds top-level GraphQL errors, if any.
	Errors   string
	Response *Response
}

// DefaultVariantID is the id of the variant Shopify creates with the product.
func (p *CreatedProduct) DefaultVariantID() string {
	if len(p.VariantIDs) == 0 {
		return ""
	}
	return p.VariantIDs[0]
}

// CreateProduct issues productCreate. Only transport and HTTP failures are
// returned as errors; GraphQL and user errors are reported on the result.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*CreatedProduct, error) {
	resp, err := c.Do(ctx, productCreateMutation(in))
	if err != nil {
		return nil, err
	}

	out := &CreatedProduct{
		UserErrors: resp.UserErrors("productCreate"),
		Errors:     resp.Errors(),
		Response:   resp,
	}
	if len(out.UserErrors) > 0 {
		return out, nil
	}

	product := resp.Get("data.productCreate.product")
	if !product.IsObject() {
		return out, nil
	}
	out.ID = product.Get("id").String()
	out.Title = product.Get("title").String()
	product.Get("variants.edges.#.node.id").ForEach(func(_, id gjson.Result) bool {
		out.VariantIDs = append(out.VariantIDs, id.String())
		return true
	})
	product.Get("images.edges.#.node.id").ForEach(func(_, id gjson.Result) bool {
		out.ImageIDs = append(out.ImageIDs, id.String())
		return true
	})
	return out, nil
}

type MediaResult struct {
	MediaIDs   []string
	UserErrors []UserError
}

// CreateMedia attaches one image, by source URL, to a product.
func (c *Client) CreateMedia(ctx context.Context, productID, src, alt string) (*MediaResult, error) {
	resp, err := c.Do(ctx, productCreateMediaMutation(productID, src, alt))
	if err != nil {
		return nil, err
	}
	if errs := resp.Errors(); errs != "" {
		return nil, &GraphQLError{Errors: errs}
	}

	out := &MediaResult{UserErrors: resp.UserErrors("productCreateMedia")}
	if len(out.UserErrors) > 0 {
		return out, nil
	}

	media := resp.Get("data.productCreateMedia.media")
	if !media.IsArray() {
		return nil, &ParseError{Msg: "image upload response doesn't contain expected data"}
	}
	media.ForEach(func(_, m gjson.Result) bool {
		out.MediaIDs = append(out.MediaIDs, m.Get("id").String())
		return true
	})
	return out, nil
}

type VariantInput struct {
	ID                string
	Price             string
	SKU               string
	InventoryQuantity int
	LocationID        string
	RequiresShipping  bool
}

type VariantResult struct {
	ID         string
	UserErrors []UserError
}

func (c *Client) UpdateVariant(ctx context.Context, in VariantInput) (*VariantResult, error) {
	resp, err := c.Do(ctx, productVariantUpdateMutation(in))
	if err != nil {
		return nil, err
	}
	if errs := resp.Errors(); errs != "" {
		return nil, &GraphQLError{Errors: errs}
	}
	return &VariantResult{
		ID:         resp.Get("data.productVariantUpdate.productVariant.id").String(),
		UserErrors: resp.UserErrors("productVariantUpdate"),
	}, nil
}

// AdminProductURL links to a product in the store admin. productID may be a
// gid://shopify/Product/N global id or a bare numeric id.
func AdminProductURL(store, productID string) string {
	id := productID[strings.LastIndexByte(productID, '/')+1:]
	return fmt.Sprintf("https://%s.myshopify.com/admin/products/%s", store, id)
}

// PublicProductURL is a best guess at the storefront URL; Shopify derives
// the handle from the title the same way unless it collides.
func PublicProductURL(store, handle string) string {
	return fmt.Sprintf("https://%s.myshopify.com/products/%s", store, handle)
}

var (
	escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	flatten = strings.NewReplacer("\r\n", " ", "\n", " ")
)

// quote renders s as a GraphQL string literal.
func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

func productCreateMutation(in ProductInput) string {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	return fmt.Sprintf(`
mutation {
  productCreate(input: {
    title: %s,
    descriptionHtml: %s,
    vendor: %s,
    productType: %s,
    tags: %s,
    publishedAt: %s
  }) {
    product {
      id
      title
      images(first: 10) {
        edges {
          node {
            id
            url
            altText
          }
        }
      }
      variants(first: 10) {
        edges {
          node {
            id
            title
            price
            sku
          }
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}`,
		quote(in.Title),
		quote(flatten.Replace(in.DescriptionHTML)),
		quote(in.Vendor),
		quote(in.ProductType),
		tagsJSON,
		quote(in.PublishDate),
	)
}

func productCreateMediaMutation(productID, src, alt string) string {
	return fmt.Sprintf(`
mutation {
  productCreateMedia(
    productId: %s,
    media: {
      originalSource: %s,
      alt: %s,
      mediaContentType: IMAGE
    }
  ) {
    media {
      id
      ... on MediaImage {
        image {
          url
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}`, quote(productID), quote(src), quote(alt))
}

func productVariantUpdateMutation(in VariantInput) string {
	return fmt.Sprintf(`
mutation {
  productVariantUpdate(input: {
    id: %s,
    price: %s,
    sku: %s,
    inventoryQuantities: {
      availableQuantity: %d,
      locationId: %s
    },
    requiresShipping: %s
  }) {
    productVariant {
      id
      title
      price
      sku
    }
    userErrors {
      field
      message
    }
  }
}`, quote(in.ID), quote(in.Price), quote(in.SKU), in.InventoryQuantity, quote(in.LocationID), strconv.FormatBool(in.RequiresShipping))
}
