package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonathan/media-workflow/internal/tracker"
	"github.com/jonathan/media-workflow/internal/types"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printItems(w io.Writer, items []types.WorkItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tPRIORITY\tCATEGORY\tSTAGE\tASSIGNEE\tHEADLINE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d (%s)\t%s\t%s\t%s\t%s\n",
			item.ID, item.CreatedDate, item.Priority, types.PriorityBand(item.Priority),
			item.Category, item.Stage, item.Assignee, item.Headline)
	}
	_ = tw.Flush()
}

func printItem(w io.Writer, item types.WorkItem) {
	fmt.Fprintf(w, "ID:        %s\n", item.ID)
	fmt.Fprintf(w, "Headline:  %s\n", item.Headline)
	fmt.Fprintf(w, "Stage:     %s\n", item.Stage)
	fmt.Fprintf(w, "Priority:  %d (%s)\n", item.Priority, types.PriorityBand(item.Priority))
	fmt.Fprintf(w, "Category:  %s\n", item.Category)
	fmt.Fprintf(w, "Formats:   %s\n", strings.Join(item.SuggestedFormats, ", "))
	fmt.Fprintf(w, "Assignee:  %s\n", item.Assignee)
	fmt.Fprintf(w, "Created:   %s\n", item.CreatedDate)
	if item.LiveLink != "" {
		fmt.Fprintf(w, "Live link: %s\n", item.LiveLink)
	}
	if item.Summary != "" {
		fmt.Fprintf(w, "Summary:   %s\n", item.Summary)
	}
	if item.Feedback != "" {
		fmt.Fprintf(w, "Feedback:  %s\n", item.Feedback)
	}
	for _, c := range item.Comments {
		fmt.Fprintf(w, "Comment:   %s\n", c)
	}
}

func printSuggestion(w io.Writer, s types.Suggestion) {
	if s.Fallback {
		fmt.Fprintf(w, "Analysis unavailable: %s\n", s.Reason)
	}
	fmt.Fprintf(w, "Headline:  %s\n", s.Headline)
	fmt.Fprintf(w, "Priority:  %d (%s)\n", s.Priority, types.PriorityBand(s.Priority))
	fmt.Fprintf(w, "Category:  %s\n", s.Category)
	fmt.Fprintf(w, "Formats:   %s\n", strings.Join(s.SuggestedFormats, ", "))
	fmt.Fprintf(w, "Summary:   %s\n", s.Summary)
}

// reportCommand prints the outcome of a command addressed to one item.
// Missing ids are reported and change nothing; persist failures are warnings.
func reportCommand(out, errOut io.Writer, id string, result tracker.Result, err error) error {
	if err != nil && !tracker.IsAdvisory(err) {
		return err
	}
	if !result.Found {
		fmt.Fprintf(out, "No item with id %s\n", id)
		return nil
	}
	if err != nil {
		fmt.Fprintf(errOut, "Warning: %v\n", err)
	}
	printItem(out, result.Item)
	return nil
}
