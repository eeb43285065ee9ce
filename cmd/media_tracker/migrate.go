package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/records"
	"github.com/jonathan/media-workflow/internal/schemas"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Repair stored work items and rewrite them in the current format",
	Long: "Load the stored collection, repair every record (legacy field names, scalar formats, " +
		"out-of-range priorities, unknown stages, duplicate ids), check each against the work item " +
		"schema and write the collection back.",
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Report without writing")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	stored, version := 0, records.CurrentVersion
	if data, err := a.slot.Read(ctx); err == nil && len(data) > 0 {
		if raws, v, err := records.DecodeDocument(data); err == nil {
			stored, version = len(raws), v
		}
	}

	items := a.tracker.Snapshot()
	invalid := 0
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
		}
		if err := schemas.ValidateWorkItem(data); err != nil {
			invalid++
			fmt.Fprintf(cmd.ErrOrStderr(), "Item %s does not match the schema: %v\n", item.ID, err)
		}
	}

	fmt.Fprintf(out, "Stored records:  %d (format version %d)\n", stored, version)
	fmt.Fprintf(out, "Kept records:    %d\n", len(items))
	fmt.Fprintf(out, "Dropped records: %d\n", max(stored-len(items), 0))
	if invalid > 0 {
		return fmt.Errorf("%d items failed schema validation, nothing written", invalid)
	}
	if migrateDryRun {
		fmt.Fprintln(out, "Dry run, nothing written")
		return nil
	}

	if err := a.store.Save(ctx, items); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	fmt.Fprintf(out, "Rewrote collection as format version %d\n", records.CurrentVersion)
	return nil
}
