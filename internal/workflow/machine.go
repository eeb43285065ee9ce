// Package workflow defines the stages a work item moves through and the transitions between them.
//
// The machine fixes the vocabulary, not the order: any stage may move to any other stage,
// including backward. Approved is the reporting cutoff used by exports.
package workflow

import (
	"github.com/jonathan/media-workflow/internal/types"
)

// Machine applies stage transitions to work items
type Machine struct{}

// New returns the workflow machine
func New() *Machine {
	return &Machine{}
}

// Stages returns the stages in canonical display order
func (m *Machine) Stages() []types.Stage {
	return types.Stages()
}

// CanTransition reports whether an item in stage from may move to stage to.
func (m *Machine) CanTransition(from, to types.Stage) bool {
	return from.IsValid() && to.IsValid()
}

// Transition returns a copy of item moved to the target stage.
// The target may be a canonical or legacy stage name. Moving to the current stage is a no-op.
// CreatedDate and RawContent are never modified.
func (m *Machine) Transition(item types.WorkItem, target string) (types.WorkItem, error) {
	to, ok := types.ParseStage(target)
	if !ok {
		return item, &TransitionError{ItemID: item.ID, From: item.Stage, Target: target, Message: "unknown stage"}
	}
	if !m.CanTransition(item.Stage, to) {
		return item, &TransitionError{ItemID: item.ID, From: item.Stage, Target: target, Message: "current stage is not valid"}
	}
	if item.Stage == to {
		return item, nil
	}

	out := item.Clone()
	out.Stage = to
	return out, nil
}

// IsReportable reports whether a stage is at or past the reporting cutoff
func IsReportable(stage types.Stage) bool {
	return stage == types.StageApproved
}

// Column is one stage of the board with its items in collection order
type Column struct {
	Stage types.Stage      `json:"stage"`
	Items []types.WorkItem `json:"items"`
}

// Board groups items into one column per stage, in canonical stage order.
func Board(items []types.WorkItem) []Column {
	stages := types.Stages()
	columns := make([]Column, len(stages))
	index := make(map[types.Stage]int, len(stages))
	for i, s := range stages {
		columns[i] = Column{Stage: s, Items: []types.WorkItem{}}
		index[s] = i
	}
	for _, item := range items {
		i, ok := index[item.Stage]
		if !ok {
			continue
		}
		columns[i].Items = append(columns[i].Items, item)
	}
	return columns
}
