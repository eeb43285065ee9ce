// Package tracker holds the in-memory collection of work items and the commands front ends run against it.
package tracker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/media-workflow/internal/types"
)

// StageAll is the filter value that matches every stage
const StageAll types.Stage = "All"

// ParseFilter resolves a stage filter. Blank and "all" (any case) mean every stage;
// anything else must name a stage.
func ParseFilter(s string) (types.Stage, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, string(StageAll)) {
		return StageAll, true
	}
	return types.ParseStage(trimmed)
}

// Collection is the ordered set of work items, newest first. It is not safe for concurrent use.
type Collection struct {
	items []types.WorkItem
}

// NewCollection creates a collection holding copies of items in the given order
func NewCollection(items []types.WorkItem) *Collection {
	c := &Collection{items: make([]types.WorkItem, 0, len(items))}
	for _, item := range items {
		c.items = append(c.items, item.Clone())
	}
	return c
}

// Len returns the number of items
func (c *Collection) Len() int {
	return len(c.items)
}

// Items returns a copy of every item in collection order
func (c *Collection) Items() []types.WorkItem {
	out := make([]types.WorkItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

// Get returns the item with the given id
func (c *Collection) Get(id string) (types.WorkItem, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return types.WorkItem{}, false
	}
	return c.items[i].Clone(), true
}

// Add prepends item. A blank or already used id is replaced with a fresh one;
// the second result reports whether that happened.
func (c *Collection) Add(item types.WorkItem) (types.WorkItem, bool) {
	added := item.Clone()
	reassigned := false
	if strings.TrimSpace(added.ID) == "" || c.indexOf(added.ID) >= 0 {
		added.ID = c.freshID()
		reassigned = item.ID != ""
	}
	c.items = append([]types.WorkItem{added}, c.items...)
	return added.Clone(), reassigned
}

// Update replaces the item with the same id. It reports false when no such item exists.
func (c *Collection) Update(item types.WorkItem) bool {
	i := c.indexOf(item.ID)
	if i < 0 {
		return false
	}
	c.items[i] = item.Clone()
	return true
}

// Delete removes the item with the given id. It reports false when no such item exists.
func (c *Collection) Delete(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

// FilterByStage returns the items in stage, or every item for StageAll, in collection order
func (c *Collection) FilterByStage(stage types.Stage) []types.WorkItem {
	out := make([]types.WorkItem, 0, len(c.items))
	for _, item := range c.items {
		if stage == StageAll || item.Stage == stage {
			out = append(out, item.Clone())
		}
	}
	return out
}

func (c *Collection) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) freshID() string {
	for {
		id := uuid.NewString()
		if c.indexOf(id) < 0 {
			return id
		}
	}
}
