package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/media-workflow/internal/records"
	"github.com/jonathan/media-workflow/internal/types"
)

// Options configures an Adapter
type Options struct {
	// SkipEmptySave leaves the stored document untouched when the collection is empty
	SkipEmptySave bool
	Logger        *slog.Logger
	// Now is used to default missing creation dates during load
	Now func() time.Time
}

// Adapter loads and saves the full collection through a Slot, normalizing every loaded record.
type Adapter struct {
	slot          Slot
	skipEmptySave bool
	logger        *slog.Logger
	now           func() time.Time
}

// NewAdapter creates an adapter over slot
func NewAdapter(slot Slot, opts Options) *Adapter {
	a := &Adapter{
		slot:          slot,
		skipEmptySave: opts.SkipEmptySave,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Load reads the stored collection and returns it normalized.
// Missing, unreadable or unparseable documents yield an empty collection; Load never fails.
func (a *Adapter) Load(ctx context.Context) []types.WorkItem {
	data, err := a.slot.Read(ctx)
	if err != nil {
		a.logger.Error("failed to read stored collection, starting empty", "error", err)
		return []types.WorkItem{}
	}
	if len(data) == 0 {
		a.logger.Info("no stored collection, starting empty")
		return []types.WorkItem{}
	}

	raws, version, err := records.DecodeDocument(data)
	if err != nil {
		a.logger.Error("stored collection is not parseable, starting empty", "error", err)
		return []types.WorkItem{}
	}

	items := records.NormalizeAll(raws, a.now(), a.logger)
	a.logger.Info("loaded collection", "version", version, "stored", len(raws), "loaded", len(items))
	return items
}

// Save serializes the full collection and replaces the stored document.
func (a *Adapter) Save(ctx context.Context, items []types.WorkItem) error {
	if len(items) == 0 && a.skipEmptySave {
		a.logger.Debug("skipping save of empty collection")
		return nil
	}

	data, err := records.EncodeDocument(items)
	if err != nil {
		return err
	}
	if err := a.slot.Write(ctx, data); err != nil {
		return err
	}
	a.logger.Debug("saved collection", "items", len(items), "bytes", len(data))
	return nil
}
