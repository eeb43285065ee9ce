// Package types provides type definitions for structured data used throughout the media workflow tracker.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// DateLayout is the layout of WorkItem.CreatedDate
const DateLayout = "2006-01-02"

// Default values applied when a record or suggestion is missing a field
const (
	DefaultPriority    = 5
	MinPriority        = 1
	MaxPriority        = 10
	DefaultAssignee    = "Unassigned"
	UnknownFormatLabel = "Unknown"
)

// Category is the thematic pillar of a work item
type Category string

// Canonical categories
const (
	CategoryTrust  Category = "Trust"
	CategoryUpdate Category = "Update"
	CategoryPolicy Category = "Policy"
)

// DefaultCategory replaces any unrecognized category
const DefaultCategory = CategoryUpdate

// Categories returns the canonical categories in display order
func Categories() []Category {
	return []Category{CategoryTrust, CategoryUpdate, CategoryPolicy}
}

// IsValid reports whether c is one of the canonical categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryTrust, CategoryUpdate, CategoryPolicy:
		return true
	}
	return false
}

// ParseCategory matches s case-insensitively against the canonical categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// CoerceCategory returns the canonical category for s, or DefaultCategory.
func CoerceCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return DefaultCategory
}

// CoercePriority returns p if it is within [MinPriority, MaxPriority], otherwise DefaultPriority.
func CoercePriority(p int) int {
	if p < MinPriority || p > MaxPriority {
		return DefaultPriority
	}
	return p
}

// PriorityBand buckets a priority for display: high (>=8), medium (>=5) or low.
func PriorityBand(p int) string {
	switch {
	case p >= 8:
		return "high"
	case p >= 5:
		return "medium"
	default:
		return "low"
	}
}

// WorkItem is one unit of editorial work tracked through the workflow
type WorkItem struct {
	ID               string   `json:"id"`
	Headline         string   `json:"headline"`
	RawContent       string   `json:"rawContent,omitempty"`
	Priority         int      `json:"priority"`
	Category         Category `json:"category"`
	SuggestedFormats []string `json:"suggestedFormats"`
	Assignee         string   `json:"assignee"`
	Stage            Stage    `json:"stage"`
	CreatedDate      string   `json:"createdDate"`
	LiveLink         string   `json:"liveLink,omitempty"`
	Feedback         string   `json:"feedback,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Comments         []string `json:"comments,omitempty"`
}

// Clone returns a copy of the item that shares no slices with the original.
func (w WorkItem) Clone() WorkItem {
	c := w
	if w.SuggestedFormats != nil {
		c.SuggestedFormats = append([]string(nil), w.SuggestedFormats...)
	}
	if w.Comments != nil {
		c.Comments = append([]string(nil), w.Comments...)
	}
	return c
}

// HasFormat reports whether label is present in SuggestedFormats
func (w WorkItem) HasFormat(label string) bool {
	for _, f := range w.SuggestedFormats {
		if f == label {
			return true
		}
	}
	return false
}

// ToggleFormat removes label if present, otherwise appends it.
func (w *WorkItem) ToggleFormat(label string) {
	if w.HasFormat(label) {
		kept := make([]string, 0, len(w.SuggestedFormats))
		for _, f := range w.SuggestedFormats {
			if f != label {
				kept = append(kept, f)
			}
		}
		w.SuggestedFormats = kept
		return
	}
	w.SuggestedFormats = append(w.SuggestedFormats, label)
}

// FormatDate renders t as a CreatedDate value
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MediaFormats lists the format labels offered by front ends
var MediaFormats = []string{"Infographic", "Banner", "Photo Album", "Video"}
