package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/tracker"
	"github.com/jonathan/media-workflow/internal/types"
)

var (
	addHeadline string
	addPriority int
	addCategory string
	addFormats  string
	addSummary  string
	addAssignee string
	addRawFile  string
	addRawText  string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Confirm a suggestion into a new Backlog item",
	Long:  "Create a work item from a confirmed suggestion. The raw text is kept as a reference copy.",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addHeadline, "headline", "", "Headline (required)")
	addCmd.Flags().IntVar(&addPriority, "priority", types.DefaultPriority, "Priority from 1 to 10")
	addCmd.Flags().StringVar(&addCategory, "category", string(types.DefaultCategory), "Category: Trust, Update or Policy")
	addCmd.Flags().StringVar(&addFormats, "formats", "", "Comma-separated media formats")
	addCmd.Flags().StringVar(&addSummary, "summary", "", "Short summary")
	addCmd.Flags().StringVar(&addAssignee, "assignee", "", "Assignee (default Unassigned)")
	addCmd.Flags().StringVar(&addRawFile, "raw-file", "", "File holding the raw source text")
	addCmd.Flags().StringVar(&addRawText, "raw-text", "", "Raw source text")

	_ = addCmd.MarkFlagRequired("headline")
	addCmd.MarkFlagsMutuallyExclusive("raw-file", "raw-text")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	if _, ok := types.ParseCategory(addCategory); !ok {
		return fmt.Errorf("unknown category %q", addCategory)
	}
	if addPriority < types.MinPriority || addPriority > types.MaxPriority {
		return fmt.Errorf("priority must be between %d and %d", types.MinPriority, types.MaxPriority)
	}

	src, err := readSource(cmd, addRawFile, addRawText, "")
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := a.tracker.Create(cmd.Context(), types.CreateRequest{
		Suggestion: types.Suggestion{
			Headline:         addHeadline,
			Priority:         addPriority,
			Category:         types.Category(addCategory),
			SuggestedFormats: splitList(addFormats),
			Summary:          addSummary,
		},
		RawText:  src.Raw,
		Assignee: addAssignee,
	})
	if err != nil && !tracker.IsAdvisory(err) {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	printItem(cmd.OutOrStdout(), item)
	return nil
}

// splitList splits a comma-separated flag value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
