package records

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jonathan/media-workflow/internal/types"
)

// CurrentVersion is the version written into every saved document
const CurrentVersion = 2

// legacyVersion is reported for documents stored as a bare JSON array
const legacyVersion = 1

// Document is the stored envelope around the collection
type Document struct {
	Version int               `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

// DecodeDocument splits a stored document into raw records. Both the legacy bare-array form
// and the versioned envelope are accepted. Empty input yields no records and no error.
func DecodeDocument(data []byte) ([]json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, &DocumentError{Message: "failed to parse legacy array", Cause: err}
		}
		return items, legacyVersion, nil
	case '{':
		var doc struct {
			Version int               `json:"version"`
			Items   *[]json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, 0, &DocumentError{Message: "failed to parse document", Cause: err}
		}
		if doc.Items == nil {
			return nil, 0, &DocumentError{Message: "document has no items"}
		}
		return *doc.Items, doc.Version, nil
	case 'n':
		if string(trimmed) == "null" {
			return nil, 0, nil
		}
	}
	return nil, 0, &DocumentError{Message: fmt.Sprintf("unexpected document start %q", trimmed[0])}
}

// EncodeDocument serializes the full collection in the current envelope.
func EncodeDocument(items []types.WorkItem) ([]byte, error) {
	doc := Document{
		Version: CurrentVersion,
		Items:   make([]json.RawMessage, 0, len(items)),
	}
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
		}
		doc.Items = append(doc.Items, raw)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}
