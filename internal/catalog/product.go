package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

type Variant struct {
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventoryQuantity"`
	InventoryPolicy   string `json:"inventoryPolicy"`
	RequiresShipping  bool   `json:"requiresShipping"`
}

type Image struct {
	Src     string `json:"src"`
	AltText string `json:"alt"`
}

// Product is the local description of a product to create. The JSON field
// names are those of the product file format.
type Product struct {
	Title           string    `json:"title"`
	DescriptionHTML string    `json:"bodyHtml"`
	Vendor          string    `json:"vendor"`
	ProductType     string    `json:"productType"`
	Tags            []string  `json:"tags"`
	Variants        []Variant `json:"variants"`
	PublishDate     string    `json:"publishedAt"`
	Images          []Image   `json:"images"`
}

// DefaultVariant returns the first variant, or nil when none is given.
func (p *Product) DefaultVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// ParseError reports a product file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to load product %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func Load(path string) (*Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &p, nil
}

func Save(path string, p *Product) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write product: %w", err)
	}
	return nil
}

// Summary writes the human-readable description shown before confirmation.
func (p *Product) Summary(w io.Writer) error {
	var b strings.Builder
	b.WriteString("\nProduct to be added:\n")
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Vendor: %s\n", p.Vendor)
	fmt.Fprintf(&b, "Type: %s\n", p.ProductType)
	if v := p.DefaultVariant(); v != nil {
		fmt.Fprintf(&b, "Price: $%s\n", v.Price)
		fmt.Fprintf(&b, "SKU: %s\n", v.SKU)
		fmt.Fprintf(&b, "Inventory: %d\n", v.InventoryQuantity)
	}
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(p.Tags, ", "))
	fmt.Fprintf(&b, "Description: %s\n", p.DescriptionHTML)
	if len(p.Images) > 0 {
		fmt.Fprintf(&b, "Images: %d image(s)\n", len(p.Images))
		for i, img := range p.Images {
			fmt.Fprintf(&b, "   Image %d: %s\n", i+1, img.Src)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a storefront handle from a title.
func Slug(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
