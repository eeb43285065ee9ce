package db

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/media-workflow/internal/persistence"
)

const backendName = "postgres"

// Slot is one named document in the slots table. It satisfies persistence.Slot.
type Slot struct {
	db   *DB
	name string
	now  func() time.Time
}

// Slot returns the slot stored under name
func (db *DB) Slot(name string) *Slot {
	return &Slot{db: db, name: name, now: time.Now}
}

// Name returns the slot name
func (s *Slot) Name() string {
	return s.name
}

// Read returns the stored document, or nil when the slot has never been written
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	query, args, err := persistence.SelectSlotQuery(sq.Dollar, s.name)
	if err != nil {
		return nil, &persistence.SlotError{Op: "read", Backend: backendName, Cause: err}
	}

	var document []byte
	err = s.db.pool.QueryRow(ctx, query, args...).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &persistence.SlotError{Op: "read", Backend: backendName, Cause: err}
	}
	return document, nil
}

// Write replaces the stored document with a single upsert
func (s *Slot) Write(ctx context.Context, data []byte) error {
	query, args, err := persistence.UpsertSlotQuery(sq.Dollar, s.name, data, s.now())
	if err != nil {
		return &persistence.SlotError{Op: "write", Backend: backendName, Cause: err}
	}
	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		return &persistence.SlotError{Op: "write", Backend: backendName, Cause: err}
	}
	return nil
}

var _ persistence.Slot = (*Slot)(nil)
