// Package records repairs stored work items written by any schema revision into the current shape.
//
// Normalize is the single place where schema evolution is handled. It is total over its
// input: every value either becomes a valid work item or is reported as dropped.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/media-workflow/internal/types"
)

// fieldAliases lists the names each field had across revisions, canonical name first
var fieldAliases = map[string][]string{
	"id":               {"id"},
	"headline":         {"headline", "suggestedTitle"},
	"rawContent":       {"rawContent"},
	"priority":         {"priority"},
	"category":         {"category", "pillar"},
	"suggestedFormats": {"suggestedFormats", "suggestedMediaType"},
	"assignee":         {"assignee"},
	"stage":            {"stage", "status"},
	"createdDate":      {"createdDate", "date"},
	"liveLink":         {"liveLink"},
	"feedback":         {"feedback"},
	"summary":          {"summary"},
	"comments":         {"comments"},
}

// dateLayouts are tried in order when parsing a stored creation date
var dateLayouts = []string{
	types.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize repairs one stored record. It returns the repaired item and a description of
// every repair applied, or a *DroppedError when the record has no usable id or headline.
func Normalize(raw json.RawMessage, today time.Time) (types.WorkItem, []string, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return types.WorkItem{}, nil, &DroppedError{Message: "not a JSON object", Cause: err}
	}

	var repairs []string
	repaired := func(format string, args ...any) {
		repairs = append(repairs, fmt.Sprintf(format, args...))
	}

	id := stringValue(lookup(fields, "id"))
	if id == "" {
		return types.WorkItem{}, nil, &DroppedError{Message: "missing id"}
	}

	headline := stringValue(lookup(fields, "headline"))
	if headline == "" {
		return types.WorkItem{}, nil, &DroppedError{ID: id, Message: "no usable headline"}
	}

	item := types.WorkItem{
		ID:       id,
		Headline: headline,
	}

	item.RawContent, _ = lookup(fields, "rawContent").(string)
	item.LiveLink, _ = lookup(fields, "liveLink").(string)
	item.Feedback, _ = lookup(fields, "feedback").(string)
	item.Summary, _ = lookup(fields, "summary").(string)

	priorityRaw := lookup(fields, "priority")
	if p, ok := priorityValue(priorityRaw); ok {
		item.Priority = p
	} else {
		item.Priority = types.DefaultPriority
		repaired("priority %v defaulted to %d", priorityRaw, types.DefaultPriority)
	}

	categoryRaw, _ := lookup(fields, "category").(string)
	if c, ok := types.ParseCategory(categoryRaw); ok {
		item.Category = c
	} else {
		item.Category = types.DefaultCategory
		repaired("category %q defaulted to %s", categoryRaw, types.DefaultCategory)
	}

	formats, formatRepair := formatsValue(lookup(fields, "suggestedFormats"))
	item.SuggestedFormats = formats
	if formatRepair != "" {
		repaired("%s", formatRepair)
	}

	item.Assignee = stringValue(lookup(fields, "assignee"))
	if item.Assignee == "" {
		item.Assignee = types.DefaultAssignee
	}

	stageRaw, _ := lookup(fields, "stage").(string)
	if s, ok := types.ParseStage(stageRaw); ok {
		item.Stage = s
		if string(s) != stageRaw {
			repaired("stage %q reconciled to %s", stageRaw, s)
		}
	} else {
		item.Stage = types.InitialStage
		repaired("stage %q reset to %s", stageRaw, types.InitialStage)
	}

	dateRaw := stringValue(lookup(fields, "createdDate"))
	if d, ok := dateValue(dateRaw); ok {
		item.CreatedDate = d
	} else {
		item.CreatedDate = types.FormatDate(today)
		repaired("createdDate %q defaulted to %s", dateRaw, item.CreatedDate)
	}

	item.Comments = commentsValue(lookup(fields, "comments"))

	return item, repairs, nil
}

// NormalizeAll normalizes every stored record, logs dropped ones and re-assigns a fresh id
// to any record whose id was already seen, so ids stay unique across the collection.
func NormalizeAll(raws []json.RawMessage, today time.Time, logger *slog.Logger) []types.WorkItem {
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]types.WorkItem, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		item, repairs, err := Normalize(raw, today)
		if err != nil {
			var dropped *DroppedError
			if errors.As(err, &dropped) {
				dropped.Index = i
			}
			logger.Warn("dropping unrecoverable record", "index", i, "error", err)
			continue
		}
		for _, r := range repairs {
			logger.Debug("repaired record", "id", item.ID, "repair", r)
		}
		if _, dup := seen[item.ID]; dup {
			fresh := uuid.NewString()
			logger.Warn("duplicate record id re-assigned", "id", item.ID, "new_id", fresh)
			item.ID = fresh
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}

// Sanitize applies the same repair rules to an already typed item.
// It is used when items enter the collection from a front end.
func Sanitize(item types.WorkItem, today time.Time) types.WorkItem {
	out := item.Clone()
	out.Headline = strings.TrimSpace(out.Headline)
	out.Priority = types.CoercePriority(out.Priority)
	out.Category = types.CoerceCategory(string(out.Category))
	out.Stage = types.CoerceStage(string(out.Stage))
	if out.SuggestedFormats == nil {
		out.SuggestedFormats = []string{types.UnknownFormatLabel}
	}
	if strings.TrimSpace(out.Assignee) == "" {
		out.Assignee = types.DefaultAssignee
	}
	if d, ok := dateValue(out.CreatedDate); ok {
		out.CreatedDate = d
	} else {
		out.CreatedDate = types.FormatDate(today)
	}
	return out
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("null record")
	}
	return fields, nil
}

// CanonicalFields returns a copy of fields with every legacy name replaced by its
// canonical name. A canonical value that is present wins over any alias.
func CanonicalFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	aliasOf := make(map[string]string)
	for canonical, names := range fieldAliases {
		for _, name := range names[1:] {
			aliasOf[name] = canonical
		}
	}
	for name, v := range fields {
		if _, isAlias := aliasOf[name]; !isAlias {
			out[name] = v
		}
	}
	for canonical := range fieldAliases {
		if v := lookup(fields, canonical); v != nil {
			out[canonical] = v
		}
	}
	return out
}

// lookup returns the first non-null value stored under the field's canonical or legacy names
func lookup(fields map[string]any, field string) any {
	for _, name := range fieldAliases[field] {
		if v, ok := fields[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringValue returns a trimmed string for string and numeric values, or "" otherwise
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

func priorityValue(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Round(f)
	if f < types.MinPriority || f > types.MaxPriority {
		return 0, false
	}
	return int(f), true
}

// formatsValue always yields a sequence. The second result describes the repair, if any.
func formatsValue(v any) ([]string, string) {
	switch val := v.(type) {
	case nil:
		return []string{types.UnknownFormatLabel}, "missing suggestedFormats defaulted"
	case string:
		label := strings.TrimSpace(val)
		if label == "" {
			return []string{types.UnknownFormatLabel}, "empty suggestedFormats defaulted"
		}
		return []string{label}, fmt.Sprintf("scalar suggestedFormats %q wrapped", label)
	case []any:
		formats := make([]string, 0, len(val))
		skipped := 0
		for _, entry := range val {
			label, ok := entry.(string)
			label = strings.TrimSpace(label)
			if !ok || label == "" {
				skipped++
				continue
			}
			formats = append(formats, label)
		}
		if skipped > 0 {
			return formats, fmt.Sprintf("%d unusable format labels removed", skipped)
		}
		return formats, ""
	default:
		return []string{types.UnknownFormatLabel}, fmt.Sprintf("suggestedFormats of type %T defaulted", v)
	}
}

func dateValue(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.FormatDate(t), true
		}
	}
	return "", false
}

func commentsValue(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var comments []string
	for _, entry := range list {
		if c, ok := entry.(string); ok && strings.TrimSpace(c) != "" {
			comments = append(comments, c)
		}
	}
	return comments
}
