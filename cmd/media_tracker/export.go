package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/report"
	"github.com/jonathan/media-workflow/internal/tracker"
)

var (
	exportFormat string
	exportStage  string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export work items as an XLSX or CSV report",
	Long: "Write one row per work item (ID, Date, Headline, Category, Priority, Assignee, Stage, " +
		"Formats, Live Link, Feedback). --out may name a file or an existing directory.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(report.FormatXLSX), "Report format: xlsx or csv")
	exportCmd.Flags().StringVar(&exportStage, "stage", string(tracker.StageAll), "Only export items in this stage, or All")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "Output file or directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	stage, ok := tracker.ParseFilter(exportStage)
	if !ok {
		return fmt.Errorf("unknown stage %q", exportStage)
	}

	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	path := exportPath(exportOut, format, time.Now())
	rows := report.Rows(a.tracker.Snapshot(), stage)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := report.Write(f, format, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(rows), path)
	return nil
}

// exportPath resolves --out: a directory gets the dated default file name
func exportPath(out string, format report.Format, now time.Time) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, report.FileName(string(format), now))
	}
	return out
}
