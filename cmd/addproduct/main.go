package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/solienne/internal/config"
)

var (
	cfg         *config.Config
	productFile string
	journalPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "addproduct",
	Short: "Create a product in Shopify from a local product file",
	Long: `Checks the Shopify admin API connection, loads a product description,
asks for confirmation, then creates the product, attaches its images and
updates its default variant.`,
	SilenceUsage: true,
	RunE:         runAddProduct,
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", cfg.JournalPath, "SQLite journal of ingestion runs (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	rootCmd.Flags().StringVarP(&productFile, "file", "f", cfg.ProductFile, "product description JSON file")

	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
