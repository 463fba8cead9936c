package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/solienne/internal/db"
	"github.com/vbonduro/solienne/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs from the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if journalPath == "" {
		return errors.New("no journal configured; pass --journal or set INGEST_JOURNAL")
	}

	database, err := db.Open(journalPath)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	runs, err := store.NewRunStore(database).List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tSKU\tTITLE\tPRODUCT")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.SKU, r.Title, r.ProductGID)
	}
	return w.Flush()
}
