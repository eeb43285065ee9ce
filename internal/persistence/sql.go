package persistence

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SlotsTable is the table both SQL backends store documents in
const SlotsTable = "slots"

// UpsertSlotQuery builds the single statement that replaces a slot's document.
// One statement keeps the write atomic with respect to concurrent reads.
func UpsertSlotQuery(placeholder sq.PlaceholderFormat, name string, data []byte, now time.Time) (string, []any, error) {
	return sq.Insert(SlotsTable).
		Columns("name", "document", "updated_at").
		Values(name, data, now.UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at").
		PlaceholderFormat(placeholder).
		ToSql()
}

// SelectSlotQuery builds the statement that reads a slot's document
func SelectSlotQuery(placeholder sq.PlaceholderFormat, name string) (string, []any, error) {
	return sq.Select("document").
		From(SlotsTable).
		Where(sq.Eq{"name": name}).
		PlaceholderFormat(placeholder).
		ToSql()
}
