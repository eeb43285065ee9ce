//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
		ok    bool
	}{
		{"Trust", CategoryTrust, true},
		{"policy", CategoryPolicy, true},
		{"  UPDATE ", CategoryUpdate, true},
		{"News", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceCategory_DefaultsToUpdate(t *testing.T) {
	assert.Equal(t, CategoryUpdate, CoerceCategory("Economy"))
	assert.Equal(t, CategoryTrust, CoerceCategory("trust"))
}

func TestCoercePriority(t *testing.T) {
	assert.Equal(t, 1, CoercePriority(1))
	assert.Equal(t, 10, CoercePriority(10))
	assert.Equal(t, DefaultPriority, CoercePriority(0))
	assert.Equal(t, DefaultPriority, CoercePriority(11))
	assert.Equal(t, DefaultPriority, CoercePriority(-3))
}

func TestPriorityBand(t *testing.T) {
	assert.Equal(t, "high", PriorityBand(8))
	assert.Equal(t, "medium", PriorityBand(5))
	assert.Equal(t, "low", PriorityBand(4))
}

func TestToggleFormat_TwiceRestoresOriginal(t *testing.T) {
	item := WorkItem{SuggestedFormats: []string{"Infographic", "Video"}}
	original := append([]string(nil), item.SuggestedFormats...)

	item.ToggleFormat("Banner")
	assert.Equal(t, []string{"Infographic", "Video", "Banner"}, item.SuggestedFormats)

	item.ToggleFormat("Banner")
	assert.Equal(t, original, item.SuggestedFormats)

	item.ToggleFormat("Infographic")
	assert.Equal(t, []string{"Video"}, item.SuggestedFormats)
	item.ToggleFormat("Infographic")
	assert.ElementsMatch(t, original, item.SuggestedFormats)
}

func TestClone_DoesNotShareSlices(t *testing.T) {
	item := WorkItem{SuggestedFormats: []string{"Video"}, Comments: []string{"ok"}}
	c := item.Clone()
	c.SuggestedFormats[0] = "Banner"
	c.Comments[0] = "changed"

	assert.Equal(t, "Video", item.SuggestedFormats[0])
	assert.Equal(t, "ok", item.Comments[0])
}

func TestParseStage_ReconcilesLegacyNames(t *testing.T) {
	tests := []struct {
		input string
		want  Stage
	}{
		{"Backlog", StageBacklog},
		{"In Production", StageInProduction},
		{"in  progress", StageInProduction},
		{"Review", StageReviewing},
		{"Reviewing", StageReviewing},
		{"Done", StageApproved},
		{"Published", StageApproved},
		{"APPROVED", StageApproved},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStage(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseStage("Archived")
	assert.False(t, ok)
	assert.Equal(t, StageBacklog, CoerceStage("Archived"))
}

func TestStages_CanonicalOrder(t *testing.T) {
	assert.Equal(t, []Stage{StageBacklog, StageInProduction, StageReviewing, StageApproved}, Stages())
	for _, s := range Stages() {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Stage("Published").IsValid())
}
