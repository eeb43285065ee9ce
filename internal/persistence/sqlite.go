package persistence

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteSlot stores the document as one row of a local SQLite database
type SQLiteSlot struct {
	db   *sql.DB
	name string
}

// OpenSQLiteSlot opens (or creates) the database at path and ensures the slots table exists
func OpenSQLiteSlot(path, name string) (*SQLiteSlot, error) {
	if name == "" {
		return nil, fmt.Errorf("slot name is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection serializes writers on the same file
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteSlot{db: db, name: name}, nil
}

// Close closes the database connection
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// Read returns the stored document, or nil when the slot has never been written
func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	query, args, err := SelectSlotQuery(sq.Question, s.name)
	if err != nil {
		return nil, &SlotError{Op: "read", Backend: "sqlite", Cause: err}
	}

	var document []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &SlotError{Op: "read", Backend: "sqlite", Cause: err}
	}
	return document, nil
}

// Write replaces the stored document
func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	query, args, err := UpsertSlotQuery(sq.Question, s.name, data, time.Now())
	if err != nil {
		return &SlotError{Op: "write", Backend: "sqlite", Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &SlotError{Op: "write", Backend: "sqlite", Cause: err}
	}
	return nil
}
