package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/solienne/internal/db"
	"github.com/vbonduro/solienne/internal/logging"
	"github.com/vbonduro/solienne/internal/service"
	"github.com/vbonduro/solienne/internal/shopify"
	"github.com/vbonduro/solienne/internal/store"
)

func runAddProduct(cmd *cobra.Command, _ []string) error {
	logger, cleanup, err := logging.NewText(logLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Starting Shopify product addition tool...")

	shop, err := shopify.NewFromConfig(cfg.ShopifyStore, cfg.ShopifyAPIVersion, cfg.ShopifyToken)
	if err != nil {
		return fmt.Errorf("%w; please check your .env file", err)
	}

	svc := service.NewIngestService(shop, nil, os.Stdin, out, cfg.ShopifyLocationID, logger)
	if journalPath != "" {
		database, err := db.Open(journalPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close journal", "error", err)
			}
		}()
		svc = service.NewIngestService(shop, store.NewRunStore(database), os.Stdin, out, cfg.ShopifyLocationID, logger)
	}

	report, err := svc.Run(cmd.Context(), productFile)
	if err != nil {
		return err
	}
	if !report.Declined {
		fmt.Fprintln(out, "Product addition completed.")
	}
	return nil
}
