package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/records"
	"github.com/jonathan/media-workflow/internal/tracker"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge work items from an exported or backed-up JSON document",
	Long: "Read a stored document (current envelope or legacy array), repair every record and add " +
		"the items to the collection. Ids that already exist are re-assigned.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	raws, version, err := records.DecodeDocument(data)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	items := records.NormalizeAll(raws, time.Now(), a.logger)
	added, err := a.tracker.Import(cmd.Context(), items)
	if err != nil && !tracker.IsAdvisory(err) {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d records (format version %d)\n", len(added), len(raws), version)
	return nil
}
