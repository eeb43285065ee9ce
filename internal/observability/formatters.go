// Package observability provides boxed output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/media-workflow/internal/ingestion"
	"github.com/jonathan/media-workflow/internal/types"
	"github.com/jonathan/media-workflow/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items listed per board column
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to width runes, so Thai and other multi-byte text is never split
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSource outputs where analyzed text came from
func (p *Printer) PrintSource(metadata *ingestion.Metadata) {
	if metadata == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", metadata.Source))
	if metadata.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", metadata.Title))
	}
	sb.WriteString(fmt.Sprintf("Chars:    %d\n", metadata.Chars))
	sb.WriteString(fmt.Sprintf("SHA256:   %s", truncate(metadata.Hash, 16)))

	p.printBox("SOURCE", sb.String())
}

// PrintSuggestion outputs one analysis result, flagging fallbacks.
func (p *Printer) PrintSuggestion(s types.Suggestion) {
	var sb strings.Builder
	if s.Fallback {
		sb.WriteString(fmt.Sprintf("⚠ Fallback: %s\n\n", s.Reason))
	}
	sb.WriteString(fmt.Sprintf("Headline: %s\n", s.Headline))
	sb.WriteString(fmt.Sprintf("Priority: %d (%s)\n", s.Priority, types.PriorityBand(s.Priority)))
	sb.WriteString(fmt.Sprintf("Category: %s\n", s.Category))
	if len(s.SuggestedFormats) > 0 {
		sb.WriteString("Formats:\n")
		for _, f := range s.SuggestedFormats {
			sb.WriteString(fmt.Sprintf("  • %s\n", f))
		}
	}
	if s.Summary != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", s.Summary))
	}

	p.printBox("SUGGESTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBoard outputs one box per stage with the highest priority items first.
func (p *Printer) PrintBoard(columns []workflow.Column) {
	for _, column := range columns {
		title := fmt.Sprintf("%s (%d)", strings.ToUpper(string(column.Stage)), len(column.Items))
		if len(column.Items) == 0 {
			p.printBox(title, "(empty)")
			continue
		}

		items := slices.Clone(column.Items)
		slices.SortStableFunc(items, func(a, b types.WorkItem) int { return b.Priority - a.Priority })
		var sb strings.Builder
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := items[i]
			sb.WriteString(fmt.Sprintf("[%2d] %s\n", item.Priority, item.Headline))
			sb.WriteString(fmt.Sprintf("     %s · %s\n", item.Category, item.Assignee))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxItemsToShow))
		}
		p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
	}
}
