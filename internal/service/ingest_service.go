package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sanity-io/litter"

	"github.com/vbonduro/solienne/internal/catalog"
	"github.com/vbonduro/solienne/internal/domain"
	"github.com/vbonduro/solienne/internal/shopify"
)

// ErrConnectivity marks a failed connection check against the admin API.
var ErrConnectivity = errors.New("cannot proceed without a valid Shopify API connection")

// shopClient is the subset of shopify.Client that IngestService requires.
type shopClient interface {
	Store() string
	Ping(ctx context.Context) (string, error)
	CreateProduct(ctx context.Context, in shopify.ProductInput) (*shopify.CreatedProduct, error)
	CreateMedia(ctx context.Context, productID, src, alt string) (*shopify.MediaResult, error)
	UpdateVariant(ctx context.Context, in shopify.VariantInput) (*shopify.VariantResult, error)
}

// runRepository is the subset of store.RunStore that IngestService requires.
type runRepository interface {
	Start(ctx context.Context, title, sku string) (*domain.Run, error)
	SetProduct(ctx context.Context, runID int64, productGID, variantGID string) error
	AddStep(ctx context.Context, runID int64, step string, ok bool, detail string) error
	Finish(ctx context.Context, runID int64, status domain.RunStatus) error
	LastCreated(ctx context.Context, sku string) (*domain.Run, error)
}

type IngestService struct {
	shop       shopClient
	runs       runRepository
	in         *bufio.Reader
	out        io.Writer
	locationID string
	logger     *slog.Logger
}

// NewIngestService wires the ingestion sequence. runs may be nil, in which
// case nothing is journaled.
func NewIngestService(shop shopClient, runs runRepository, in io.Reader, out io.Writer, locationID string, logger *slog.Logger) *IngestService {
	return &IngestService{
		shop:       shop,
		runs:       runs,
		in:         bufio.NewReader(in),
		out:        out,
		locationID: locationID,
		logger:     logger,
	}
}

// ImageOutcome is the result of attaching one image.
type ImageOutcome struct {
	Src        string
	MediaIDs   []string
	UserErrors []shopify.UserError
	Err        error
}

func (o ImageOutcome) OK() bool {
	return o.Err == nil && len(o.UserErrors) == 0
}

type VariantOutcome struct {
	ID         string
	UserErrors []shopify.UserError
	Err        error
}

func (o VariantOutcome) OK() bool {
	return o.Err == nil && len(o.UserErrors) == 0
}

// Report describes what a run did. Product is nil when the operator declined.
type Report struct {
	Declined  bool
	Product   *shopify.CreatedProduct
	Images    []ImageOutcome
	Variant   *VariantOutcome
	AdminURL  string
	PublicURL string
}

// Created reports whether Shopify returned a product id.
func (r *Report) Created() bool {
	return r.Product != nil && r.Product.ID != ""
}

// Run performs the whole sequence: connection check, product load,
// confirmation, then creation. Declining is not an error.
func (s *IngestService) Run(ctx context.Context, productPath string) (*Report, error) {
	s.printf("Testing Shopify API connection...\n")
	shopName, err := s.shop.Ping(ctx)
	if err != nil {
		s.logger.Error("failed to connect to Shopify API", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	s.printf("Connected to Shopify store: %s\n", shopName)

	s.printf("\nLoading product data from %s...\n", productPath)
	product, err := catalog.Load(productPath)
	if err != nil {
		return nil, err
	}
	s.printf("Product data loaded successfully.\n")

	runID := s.startRun(ctx, product)
	s.warnPreviousCreation(ctx, product)

	ok, err := s.Confirm(product)
	if err != nil {
		s.finishRun(ctx, runID, domain.RunFailed)
		return nil, err
	}
	if !ok {
		s.printf("Product addition cancelled by user.\n")
		s.finishRun(ctx, runID, domain.RunDeclined)
		return &Report{Declined: true}, nil
	}

	s.printf("\nAdding product to Shopify...\n")
	report, err := s.ingest(ctx, runID, product)
	if err != nil {
		s.finishRun(ctx, runID, domain.RunFailed)
		return nil, err
	}
	s.finishRun(ctx, runID, report.status())
	return report, nil
}

// Confirm prints the product summary and reads one answer line. Only "yes"
// or "y", in any case, confirms.
func (s *IngestService) Confirm(product *catalog.Product) (bool, error) {
	if err := product.Summary(s.out); err != nil {
		return false, fmt.Errorf("failed to print summary: %w", err)
	}
	s.printf("\nDo you want to add this product to Shopify? (yes/no): ")

	line, err := s.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isAffirmative(line), nil
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

// Ingest creates the product, attaches its images and updates the default
// variant. Steps after product creation never abort the run; their failures
// are recorded on the report. Nothing is rolled back.
func (s *IngestService) Ingest(ctx context.Context, product *catalog.Product) (*Report, error) {
	return s.ingest(ctx, 0, product)
}

func (s *IngestService) ingest(ctx context.Context, runID int64, product *catalog.Product) (*Report, error) {
	s.printf("Creating product...\n")
	created, err := s.shop.CreateProduct(ctx, shopify.ProductInput{
		Title:           product.Title,
		DescriptionHTML: product.DescriptionHTML,
		Vendor:          product.Vendor,
		ProductType:     product.ProductType,
		Tags:            product.Tags,
		PublishDate:     product.PublishDate,
	})
	if err != nil {
		s.logger.Error("product creation failed", "error", err)
		s.step(ctx, runID, "create_product", false, err.Error())
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	report := &Report{Product: created}

	if len(created.UserErrors) > 0 {
		s.logger.Error("product creation errors", "user_errors", litter.Sdump(created.UserErrors))
		s.step(ctx, runID, "create_product", false, joinUserErrors(created.UserErrors))
		s.reportURLs(report)
		return report, nil
	}
	if !report.Created() {
		detail := "response did not contain a product"
		if created.Errors != "" {
			detail = "GraphQL errors: " + created.Errors
		}
		s.logger.Error("product creation failed", "error", detail)
		s.step(ctx, runID, "create_product", false, detail)
		s.reportURLs(report)
		return report, nil
	}

	s.printf("Product created successfully: %s\n", created.Title)
	s.step(ctx, runID, "create_product", true, created.ID)
	if runID != 0 && s.runs != nil {
		if err := s.runs.SetProduct(ctx, runID, created.ID, created.DefaultVariantID()); err != nil {
			s.logger.Warn("failed to journal product", "error", err)
		}
	}

	if len(product.Images) > 0 {
		s.printf("Adding images...\n")
		report.Images = s.attachImages(ctx, runID, created.ID, product.Images)
	}

	if v := product.DefaultVariant(); v != nil {
		if variantID := created.DefaultVariantID(); variantID != "" {
			report.Variant = s.updateVariant(ctx, runID, variantID, v)
		} else {
			s.logger.Warn("product has no default variant to update", "product_id", created.ID)
		}
	}

	s.reportURLs(report)
	return report, nil
}

// attachImages adds images one at a time, in order. A failed image is
// logged and the loop moves on.
func (s *IngestService) attachImages(ctx context.Context, runID int64, productID string, images []catalog.Image) []ImageOutcome {
	outcomes := make([]ImageOutcome, 0, len(images))
	for _, img := range images {
		outcome := ImageOutcome{Src: img.Src}

		res, err := s.shop.CreateMedia(ctx, productID, img.Src, img.AltText)
		switch {
		case err != nil:
			outcome.Err = err
			s.logger.Error("error adding image", "src", img.Src, "error", err)
			s.step(ctx, runID, "image", false, img.Src+": "+err.Error())
		case len(res.UserErrors) > 0:
			outcome.UserErrors = res.UserErrors
			s.logger.Error("image upload errors", "src", img.Src, "user_errors", litter.Sdump(res.UserErrors))
			s.step(ctx, runID, "image", false, img.Src+": "+joinUserErrors(res.UserErrors))
		default:
			outcome.MediaIDs = res.MediaIDs
			s.printf("Image added successfully: %s\n", img.Src)
			s.step(ctx, runID, "image", true, img.Src)
		}

		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *IngestService) updateVariant(ctx context.Context, runID int64, variantID string, v *catalog.Variant) *VariantOutcome {
	s.printf("Updating variant with custom data...\n")
	res, err := s.shop.UpdateVariant(ctx, shopify.VariantInput{
		ID:                variantID,
		Price:             v.Price,
		SKU:               v.SKU,
		InventoryQuantity: v.InventoryQuantity,
		LocationID:        s.locationID,
		RequiresShipping:  v.RequiresShipping,
	})
	if err != nil {
		s.logger.Error("variant update failed", "variant_id", variantID, "error", err)
		s.step(ctx, runID, "update_variant", false, err.Error())
		return &VariantOutcome{ID: variantID, Err: err}
	}
	if len(res.UserErrors) > 0 {
		s.logger.Error("variant update errors", "variant_id", variantID, "user_errors", litter.Sdump(res.UserErrors))
		s.step(ctx, runID, "update_variant", false, joinUserErrors(res.UserErrors))
		return &VariantOutcome{ID: variantID, UserErrors: res.UserErrors}
	}
	s.printf("Variant updated successfully\n")
	s.step(ctx, runID, "update_variant", true, variantID)
	return &VariantOutcome{ID: variantID}
}

func (s *IngestService) reportURLs(report *Report) {
	if !report.Created() {
		s.printf("Could not generate product URLs - check the API response for details\n")
		return
	}
	store := s.shop.Store()
	report.AdminURL = shopify.AdminProductURL(store, report.Product.ID)
	report.PublicURL = shopify.PublicProductURL(store, catalog.Slug(report.Product.Title))
	s.printf("Admin URL: %s\n", report.AdminURL)
	s.printf("Public URL: %s\n", report.PublicURL)
}

func (r *Report) status() domain.RunStatus {
	if !r.Created() {
		return domain.RunRejected
	}
	for _, img := range r.Images {
		if !img.OK() {
			return domain.RunPartial
		}
	}
	if r.Variant != nil && !r.Variant.OK() {
		return domain.RunPartial
	}
	return domain.RunCompleted
}

func (s *IngestService) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Journal helpers. Journal failures are logged and never fail a run.

func (s *IngestService) startRun(ctx context.Context, product *catalog.Product) int64 {
	if s.runs == nil {
		return 0
	}
	var sku string
	if v := product.DefaultVariant(); v != nil {
		sku = v.SKU
	}
	run, err := s.runs.Start(ctx, product.Title, sku)
	if err != nil {
		s.logger.Warn("failed to journal run", "error", err)
		return 0
	}
	return run.ID
}

// warnPreviousCreation tells the operator when the journal shows this SKU
// was already created; a second run creates a second product.
func (s *IngestService) warnPreviousCreation(ctx context.Context, product *catalog.Product) {
	v := product.DefaultVariant()
	if s.runs == nil || v == nil || v.SKU == "" {
		return
	}
	prev, err := s.runs.LastCreated(ctx, v.SKU)
	if err != nil {
		s.logger.Warn("failed to read journal", "error", err)
		return
	}
	if prev == nil {
		return
	}
	s.printf("\nWarning: SKU %s was already created as %s on %s (run %d, %s).\n",
		v.SKU, prev.ProductGID, prev.StartedAt.Format("2006-01-02 15:04"), prev.ID, prev.Status)
}

func (s *IngestService) step(ctx context.Context, runID int64, step string, ok bool, detail string) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.AddStep(ctx, runID, step, ok, detail); err != nil {
		s.logger.Warn("failed to journal step", "step", step, "error", err)
	}
}

func (s *IngestService) finishRun(ctx context.Context, runID int64, status domain.RunStatus) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.Finish(ctx, runID, status); err != nil {
		s.logger.Warn("failed to journal run status", "status", status, "error", err)
	}
}

func joinUserErrors(errs []shopify.UserError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
