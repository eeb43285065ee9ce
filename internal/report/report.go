// Package report builds the tabular export of the work item collection.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/media-workflow/internal/types"
)

// FilterAll exports every item regardless of stage
const FilterAll types.Stage = "All"

// SheetName is the worksheet name used in XLSX exports
const SheetName = "Media_Report"

// NoLink is written when an item has no live link
const NoLink = "N/A"

const shortIDLength = 8

// Headers are the column titles, in column order
var Headers = []string{"ID", "Date", "Headline", "Category", "Priority", "Assignee", "Stage", "Formats", "Live Link", "Feedback"}

// Row is one exported item
type Row struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Headline string `json:"headline"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Assignee string `json:"assignee"`
	Stage    string `json:"stage"`
	Formats  string `json:"formats"`
	LiveLink string `json:"liveLink"`
	Feedback string `json:"feedback"`
}

// Rows converts items to export rows, keeping collection order.
// filter is FilterAll (or blank) for every item, otherwise a stage.
func Rows(items []types.WorkItem, filter types.Stage) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if filter != "" && filter != FilterAll && item.Stage != filter {
			continue
		}
		rows = append(rows, NewRow(item))
	}
	return rows
}

// NewRow converts one item
func NewRow(item types.WorkItem) Row {
	link := strings.TrimSpace(item.LiveLink)
	if link == "" {
		link = NoLink
	}
	return Row{
		ID:       shortID(item.ID),
		Date:     item.CreatedDate,
		Headline: item.Headline,
		Category: string(item.Category),
		Priority: item.Priority,
		Assignee: item.Assignee,
		Stage:    string(item.Stage),
		Formats:  strings.Join(item.SuggestedFormats, ", "),
		LiveLink: link,
		Feedback: item.Feedback,
	}
}

// Values returns the row's cells in Headers order
func (r Row) Values() []any {
	return []any{r.ID, r.Date, r.Headline, r.Category, r.Priority, r.Assignee, r.Stage, r.Formats, r.LiveLink, r.Feedback}
}

// Strings returns the row's cells as text in Headers order
func (r Row) Strings() []string {
	return []string{r.ID, r.Date, r.Headline, r.Category, strconv.Itoa(r.Priority), r.Assignee, r.Stage, r.Formats, r.LiveLink, r.Feedback}
}

// FileName returns the download name of a report created at now, e.g. Report_2025-01-31.xlsx
func FileName(ext string, now time.Time) string {
	return fmt.Sprintf("Report_%s.%s", types.FormatDate(now), strings.TrimPrefix(ext, "."))
}

// shortID truncates by rune so multi-byte ids are not split
func shortID(id string) string {
	runes := []rune(id)
	if len(runes) <= shortIDLength {
		return id
	}
	return string(runes[:shortIDLength])
}
