package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/ingestion"
	"github.com/jonathan/media-workflow/internal/observability"
	"github.com/jonathan/media-workflow/internal/types"
)

var (
	analyzeText string
	analyzeURL  string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Suggest a headline, priority, category and formats for raw text",
	Long: "Analyze pasted text, a text/HTML file or a press release URL with the configured LLM. " +
		"Nothing is stored; use add or ingest --confirm to create work items.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeText, "text", "t", "", "Raw text to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "URL of a news or press release page")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the suggestion as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisOutput is the JSON form of an analysis
type analysisOutput struct {
	Source     *ingestion.Metadata `json:"source,omitempty"`
	RawText    string              `json:"rawText"`
	Suggestion types.Suggestion    `json:"suggestion"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sources := 0
	for _, set := range []bool{analyzeText != "", analyzeURL != "", len(args) == 1} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("provide exactly one of --text, --url or a file argument")
	}

	var file string
	if len(args) == 1 {
		file = args[0]
	}
	src, err := readSource(cmd, file, analyzeText, analyzeURL)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), appOptions{gateway: true})
	if err != nil {
		return err
	}
	defer a.Close()

	suggestion := a.gateway.Analyze(cmd.Context(), src.Text)
	out := analysisOutput{Source: src.Metadata, RawText: src.Raw, Suggestion: suggestion}
	if analyzeJSON {
		return printJSON(cmd.OutOrStdout(), out)
	}
	if verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintSource(src.Metadata)
		printer.PrintSuggestion(suggestion)
		return nil
	}
	printAnalysis(cmd.OutOrStdout(), out)
	return nil
}

// readSource reads exactly one of a file, pasted text or a URL.
// Empty pasted text is allowed: analysis falls back for it.
func readSource(cmd *cobra.Command, file, text, url string) (*ingestion.Source, error) {
	switch {
	case file != "":
		return ingestion.FromFile(file)
	case url != "":
		return ingestion.FromURL(cmd.Context(), url, nil)
	default:
		return &ingestion.Source{Raw: text, Text: ingestion.PrepareRawText(text)}, nil
	}
}

func printAnalysis(w io.Writer, out analysisOutput) {
	if out.Source != nil {
		if out.Source.Title != "" {
			fmt.Fprintf(w, "Source:    %s (%s)\n", out.Source.Source, out.Source.Title)
		} else {
			fmt.Fprintf(w, "Source:    %s\n", out.Source.Source)
		}
	}
	printSuggestion(w, out.Suggestion)
}
