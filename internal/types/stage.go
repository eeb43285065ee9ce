//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Stage is the position of a work item in the workflow
type Stage string

// Workflow stages in canonical display order
const (
	StageBacklog      Stage = "Backlog"
	StageInProduction Stage = "In Production"
	StageReviewing    Stage = "Reviewing"
	StageApproved     Stage = "Approved"
)

// InitialStage is the stage of every newly created work item
const InitialStage = StageBacklog

// stageAliases reconciles stage names used by earlier revisions
var stageAliases = map[string]Stage{
	"backlog":       StageBacklog,
	"in production": StageInProduction,
	"in progress":   StageInProduction,
	"in_progress":   StageInProduction,
	"reviewing":     StageReviewing,
	"review":        StageReviewing,
	"approved":      StageApproved,
	"done":          StageApproved,
	"published":     StageApproved,
}

// Stages returns the canonical stages in display order
func Stages() []Stage {
	return []Stage{StageBacklog, StageInProduction, StageReviewing, StageApproved}
}

// IsValid reports whether s is a canonical stage
func (s Stage) IsValid() bool {
	switch s {
	case StageBacklog, StageInProduction, StageReviewing, StageApproved:
		return true
	}
	return false
}

// ParseStage resolves a canonical or legacy stage name, case-insensitively.
func ParseStage(s string) (Stage, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	stage, ok := stageAliases[key]
	return stage, ok
}

// CoerceStage returns the stage for s, or InitialStage when it is not recognized.
func CoerceStage(s string) Stage {
	if stage, ok := ParseStage(s); ok {
		return stage
	}
	return InitialStage
}
