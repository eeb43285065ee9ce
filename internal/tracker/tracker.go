package tracker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/media-workflow/internal/records"
	"github.com/jonathan/media-workflow/internal/types"
	"github.com/jonathan/media-workflow/internal/workflow"
)

// Store loads and saves the whole collection. *persistence.Adapter satisfies it.
type Store interface {
	Load(ctx context.Context) []types.WorkItem
	Save(ctx context.Context, items []types.WorkItem) error
}

// EventKind names a collection change
type EventKind string

// Event kinds
const (
	EventCreated      EventKind = "created"
	EventEdited       EventKind = "edited"
	EventTransitioned EventKind = "transitioned"
	EventRemoved      EventKind = "removed"
)

// Event is delivered to observers after every successful mutation
type Event struct {
	Kind EventKind
	Item types.WorkItem
	// From is the previous stage of a transition
	From types.Stage
	// Saved is false when the change could not be persisted
	Saved bool
}

// Result is the outcome of a command addressed to one item.
// Found is false when no item has the id; nothing changed in that case.
type Result struct {
	Item  types.WorkItem `json:"item"`
	Found bool           `json:"found"`
}

// Options configures a Tracker
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// Tracker serializes commands over the collection. Every successful mutation is saved
// through the store and then announced to observers.
type Tracker struct {
	mu        sync.Mutex
	items     *Collection
	store     Store
	machine   *workflow.Machine
	logger    *slog.Logger
	now       func() time.Time
	observers []func(Event)
}

// New loads the collection from store and returns a tracker over it
func New(ctx context.Context, store Store, opts Options) *Tracker {
	t := &Tracker{
		store:   store,
		machine: workflow.New(),
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.items = NewCollection(store.Load(ctx))
	return t
}

// Subscribe registers an observer. Observers run after the tracker lock is released.
func (t *Tracker) Subscribe(fn func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Snapshot returns every item in collection order
func (t *Tracker) Snapshot() []types.WorkItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items.Items()
}

// Get returns one item
func (t *Tracker) Get(id string) (types.WorkItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items.Get(id)
}

// ListByStage returns the items in stage, or all items for StageAll
func (t *Tracker) ListByStage(stage types.Stage) []types.WorkItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items.FilterByStage(stage)
}

// Board returns the items grouped by stage
func (t *Tracker) Board() []workflow.Column {
	return workflow.Board(t.Snapshot())
}

// Create confirms a suggestion into a new Backlog item
func (t *Tracker) Create(ctx context.Context, req types.CreateRequest) (types.WorkItem, error) {
	if err := req.Validate(); err != nil {
		return types.WorkItem{}, &ValidationError{Field: "headline", Message: "headline is required", Cause: err}
	}
	headline := strings.TrimSpace(req.Suggestion.Headline)
	if headline == "" {
		return types.WorkItem{}, &ValidationError{Field: "headline", Message: "headline is required"}
	}

	formats := make([]string, 0, len(req.Suggestion.SuggestedFormats))
	for _, f := range req.Suggestion.SuggestedFormats {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}

	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		assignee = types.DefaultAssignee
	}

	t.mu.Lock()
	item, reassigned := t.items.Add(types.WorkItem{
		Headline:         headline,
		RawContent:       req.RawText,
		Priority:         types.CoercePriority(req.Suggestion.Priority),
		Category:         types.CoerceCategory(string(req.Suggestion.Category)),
		SuggestedFormats: formats,
		Assignee:         assignee,
		Stage:            types.InitialStage,
		CreatedDate:      types.FormatDate(t.now()),
		Summary:          strings.TrimSpace(req.Suggestion.Summary),
	})
	if reassigned {
		t.logger.Warn("generated id collided, re-assigned", "id", item.ID)
	}
	err := t.saveLocked(ctx, "create", item.ID)
	observers := t.observersLocked()
	t.mu.Unlock()

	t.logger.Info("item created", "id", item.ID, "headline", item.Headline)
	notify(observers, Event{Kind: EventCreated, Item: item, Saved: err == nil})
	return item, err
}

// Edit applies a patch to one item. Stage changes go through Transition instead.
func (t *Tracker) Edit(ctx context.Context, id string, patch types.Patch) (Result, error) {
	if err := patch.Validate(); err != nil {
		return Result{}, &ValidationError{Message: "invalid patch", Cause: err}
	}

	t.mu.Lock()
	current, ok := t.items.Get(id)
	if !ok {
		t.mu.Unlock()
		return Result{}, nil
	}
	if patch.IsEmpty() {
		t.mu.Unlock()
		return Result{Item: current, Found: true}, nil
	}

	edited := patch.Apply(current)
	edited.Headline = strings.TrimSpace(edited.Headline)
	if edited.Headline == "" {
		t.mu.Unlock()
		return Result{Item: current, Found: true}, &ValidationError{Field: "headline", Message: "headline cannot be blank"}
	}

	t.items.Update(edited)
	err := t.saveLocked(ctx, "edit", id)
	observers := t.observersLocked()
	t.mu.Unlock()

	notify(observers, Event{Kind: EventEdited, Item: edited, Saved: err == nil})
	return Result{Item: edited, Found: true}, err
}

// Transition moves one item to another stage
func (t *Tracker) Transition(ctx context.Context, id string, stage string) (Result, error) {
	t.mu.Lock()
	current, ok := t.items.Get(id)
	if !ok {
		t.mu.Unlock()
		return Result{}, nil
	}

	moved, err := t.machine.Transition(current, stage)
	if err != nil {
		t.mu.Unlock()
		return Result{Item: current, Found: true}, err
	}
	if moved.Stage == current.Stage {
		t.mu.Unlock()
		return Result{Item: current, Found: true}, nil
	}

	t.items.Update(moved)
	err = t.saveLocked(ctx, "transition", id)
	observers := t.observersLocked()
	t.mu.Unlock()

	t.logger.Info("item moved", "id", id, "from", current.Stage, "to", moved.Stage)
	notify(observers, Event{Kind: EventTransitioned, Item: moved, From: current.Stage, Saved: err == nil})
	return Result{Item: moved, Found: true}, err
}

// ToggleFormat removes label from the item's formats if present, otherwise appends it
func (t *Tracker) ToggleFormat(ctx context.Context, id, label string) (Result, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Result{}, &ValidationError{Field: "label", Message: "format label is required"}
	}
	return t.Edit(ctx, id, types.Patch{ToggleFormats: []string{label}})
}

// Remove deletes one item. It reports false when no item has the id.
func (t *Tracker) Remove(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	current, ok := t.items.Get(id)
	if !ok {
		t.mu.Unlock()
		return false, nil
	}
	t.items.Delete(id)
	err := t.saveLocked(ctx, "remove", id)
	observers := t.observersLocked()
	t.mu.Unlock()

	t.logger.Info("item removed", "id", id)
	notify(observers, Event{Kind: EventRemoved, Item: current, Saved: err == nil})
	return true, err
}

// Import adds items produced outside the tracker, repairing them first.
// Returns the items as stored.
func (t *Tracker) Import(ctx context.Context, items []types.WorkItem) ([]types.WorkItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	t.mu.Lock()
	today := t.now()
	added := make([]types.WorkItem, 0, len(items))
	// insert oldest first so the newest ends up at the front
	for i := len(items) - 1; i >= 0; i-- {
		clean := records.Sanitize(items[i], today)
		if clean.Headline == "" {
			continue
		}
		item, _ := t.items.Add(clean)
		added = append([]types.WorkItem{item}, added...)
	}
	err := t.saveLocked(ctx, "import", "")
	observers := t.observersLocked()
	t.mu.Unlock()

	for _, item := range added {
		notify(observers, Event{Kind: EventCreated, Item: item, Saved: err == nil})
	}
	return added, err
}

func (t *Tracker) saveLocked(ctx context.Context, op, id string) error {
	if err := t.store.Save(ctx, t.items.Items()); err != nil {
		t.logger.Error("failed to save collection", "op", op, "id", id, "error", err)
		return &PersistError{Op: op, ID: id, Cause: err}
	}
	return nil
}

func (t *Tracker) observersLocked() []func(Event) {
	return slices.Clone(t.observers)
}

func notify(observers []func(Event), e Event) {
	for _, fn := range observers {
		fn(e)
	}
}

// IsAdvisory reports whether err only signals a failed save of an applied change
func IsAdvisory(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
