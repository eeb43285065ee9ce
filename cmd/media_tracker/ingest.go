package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/ingestion"
	"github.com/jonathan/media-workflow/internal/observability"
	"github.com/jonathan/media-workflow/internal/tracker"
	"github.com/jonathan/media-workflow/internal/types"
)

var (
	ingestConfirm         bool
	ingestIncludeFallback bool
	ingestConcurrency     int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|url>...",
	Short: "Analyze several files or press release URLs in one run",
	Long: "Read each file or URL, analyze them concurrently and print the suggestions. " +
		"With --confirm every suggestion is created as a Backlog item; fallback suggestions are " +
		"skipped unless --include-fallback is set.",
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestConfirm, "confirm", false, "Create a Backlog item for each suggestion")
	ingestCmd.Flags().BoolVar(&ingestIncludeFallback, "include-fallback", false, "Also create items for fallback suggestions")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "Parallel analysis calls (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

// ingested is one source that was read successfully
type ingested struct {
	name string
	*ingestion.Source
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{tracker: ingestConfirm, gateway: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	sources := make([]ingested, 0, len(args))
	for _, arg := range args {
		var src *ingestion.Source
		if isURL(arg) {
			src, err = ingestion.FromURL(ctx, arg, nil)
		} else {
			src, err = ingestion.FromFile(arg)
		}
		if err != nil {
			fmt.Fprintf(errOut, "Skipping %s: %v\n", arg, err)
			continue
		}
		sources = append(sources, ingested{name: arg, Source: src})
	}
	if len(sources) == 0 {
		return fmt.Errorf("no readable sources")
	}

	concurrency := a.cfg.Analysis.Concurrency
	if ingestConcurrency > 0 {
		concurrency = ingestConcurrency
	}
	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Text
	}
	suggestions := a.gateway.AnalyzeBatch(ctx, texts, concurrency)

	created := 0
	for i, suggestion := range suggestions {
		fmt.Fprintf(out, "--- %s\n", sources[i].name)
		if verbose {
			observability.NewPrinter(out).PrintSuggestion(suggestion)
		} else {
			printSuggestion(out, suggestion)
		}

		if !ingestConfirm || (suggestion.Fallback && !ingestIncludeFallback) {
			continue
		}
		item, err := a.tracker.Create(ctx, types.CreateRequest{Suggestion: suggestion, RawText: sources[i].Raw})
		if err != nil && !tracker.IsAdvisory(err) {
			fmt.Fprintf(errOut, "Could not create item for %s: %v\n", sources[i].name, err)
			continue
		}
		if err != nil {
			fmt.Fprintf(errOut, "Warning: %v\n", err)
		}
		created++
		fmt.Fprintf(out, "Created %s\n", item.ID)
	}

	if ingestConfirm {
		fmt.Fprintf(out, "Created %d of %d items\n", created, len(suggestions))
	}
	return nil
}
