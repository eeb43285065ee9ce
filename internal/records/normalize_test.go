package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonathan/media-workflow/internal/schemas"
	"github.com/jonathan/media-workflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func normalize(t *testing.T, raw string) types.WorkItem {
	t.Helper()
	item, _, err := Normalize(json.RawMessage(raw), today)
	require.NoError(t, err)
	return item
}

func assertValid(t *testing.T, item types.WorkItem) {
	t.Helper()
	assert.NotEmpty(t, item.ID)
	assert.NotEmpty(t, item.Headline)
	assert.GreaterOrEqual(t, item.Priority, types.MinPriority)
	assert.LessOrEqual(t, item.Priority, types.MaxPriority)
	assert.True(t, item.Category.IsValid(), "category %q", item.Category)
	assert.True(t, item.Stage.IsValid(), "stage %q", item.Stage)
	assert.NotNil(t, item.SuggestedFormats)
	assert.NotEmpty(t, item.Assignee)
	_, err := time.Parse(types.DateLayout, item.CreatedDate)
	assert.NoError(t, err)

	encoded, err := json.Marshal(item)
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateWorkItem(encoded))
}

func TestNormalize_CurrentRecordUnchanged(t *testing.T) {
	raw := `{"id":"a1","headline":"Export figures","rawContent":"text","priority":7,"category":"Trust",
		"suggestedFormats":["Infographic","Video"],"assignee":"Nok","stage":"Reviewing",
		"createdDate":"2024-11-02","liveLink":"https://example.com","feedback":"good","summary":"s"}`

	item, repairs, err := Normalize(json.RawMessage(raw), today)
	require.NoError(t, err)
	assert.Empty(t, repairs)
	assert.Equal(t, types.WorkItem{
		ID:               "a1",
		Headline:         "Export figures",
		RawContent:       "text",
		Priority:         7,
		Category:         types.CategoryTrust,
		SuggestedFormats: []string{"Infographic", "Video"},
		Assignee:         "Nok",
		Stage:            types.StageReviewing,
		CreatedDate:      "2024-11-02",
		LiveLink:         "https://example.com",
		Feedback:         "good",
		Summary:          "s",
	}, item)
}

func TestNormalize_LegacyRevisions(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, item types.WorkItem)
	}{
		{
			name: "scalar media type",
			raw:  `{"id":"1","headline":"h","pillar":"Policy","priority":3,"suggestedMediaType":"Banner","status":"Backlog","date":"2024-01-05"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, []string{"Banner"}, item.SuggestedFormats)
				assert.Equal(t, types.CategoryPolicy, item.Category)
				assert.Equal(t, "2024-01-05", item.CreatedDate)
			},
		},
		{
			name: "empty scalar media type",
			raw:  `{"id":"1","headline":"h","suggestedMediaType":""}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, []string{"Unknown"}, item.SuggestedFormats)
			},
		},
		{
			name: "missing formats, category and priority",
			raw:  `{"id":"1","headline":"h","status":"Approved"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, []string{"Unknown"}, item.SuggestedFormats)
				assert.Equal(t, types.CategoryUpdate, item.Category)
				assert.Equal(t, 5, item.Priority)
				assert.Equal(t, types.StageApproved, item.Stage)
				assert.Equal(t, "2025-03-14", item.CreatedDate)
				assert.Equal(t, types.DefaultAssignee, item.Assignee)
			},
		},
		{
			name: "renamed stages",
			raw:  `{"id":"1","headline":"h","status":"In Progress"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, types.StageInProduction, item.Stage)
			},
		},
		{
			name: "published reconciles to approved",
			raw:  `{"id":"1","headline":"h","status":"Published"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, types.StageApproved, item.Stage)
			},
		},
		{
			name: "unrecognized stage",
			raw:  `{"id":"1","headline":"h","stage":"Archived"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, types.StageBacklog, item.Stage)
			},
		},
		{
			name: "unrecognized category",
			raw:  `{"id":"1","headline":"h","category":"Economy"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, types.CategoryUpdate, item.Category)
			},
		},
		{
			name: "suggested title from early AI revision",
			raw:  `{"id":"1","suggestedTitle":"From AI","category":"trust"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, "From AI", item.Headline)
				assert.Equal(t, types.CategoryTrust, item.Category)
			},
		},
		{
			name: "ISO timestamp date",
			raw:  `{"id":"1","headline":"h","date":"2024-06-30T17:00:00Z"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, "2024-06-30", item.CreatedDate)
			},
		},
		{
			name: "numeric id",
			raw:  `{"id":42,"headline":"h"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, "42", item.ID)
			},
		},
		{
			name: "mixed format array",
			raw:  `{"id":"1","headline":"h","suggestedFormats":["Video", 3, "", null, " Banner "]}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, []string{"Video", "Banner"}, item.SuggestedFormats)
			},
		},
		{
			name: "canonical name wins over alias",
			raw:  `{"id":"1","headline":"h","stage":"Reviewing","status":"Backlog"}`,
			check: func(t *testing.T, item types.WorkItem) {
				assert.Equal(t, types.StageReviewing, item.Stage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := normalize(t, tt.raw)
			assertValid(t, item)
			tt.check(t, item)
		})
	}
}

func TestNormalize_Priority(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`7`, 7},
		{`"8"`, 8},
		{`6.6`, 7},
		{`0`, 5},
		{`11`, 5},
		{`-2`, 5},
		{`"high"`, 5},
		{`true`, 5},
		{`null`, 5},
		{`[1]`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			item := normalize(t, `{"id":"1","headline":"h","priority":`+tt.raw+`}`)
			assert.Equal(t, tt.want, item.Priority)
		})
	}
}

func TestNormalize_Unrecoverable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"headline":"h"}`},
		{"blank id", `{"id":"  ","headline":"h"}`},
		{"object id", `{"id":{"v":1},"headline":"h"}`},
		{"missing headline", `{"id":"1"}`},
		{"blank headline", `{"id":"1","headline":"   "}`},
		{"not an object", `"just a string"`},
		{"array", `[1,2]`},
		{"null", `null`},
		{"garbage", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(json.RawMessage(tt.raw), today)
			require.Error(t, err)
			var dropped *DroppedError
			assert.True(t, errors.As(err, &dropped))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := `{"id":"1","suggestedTitle":"h","pillar":"x","priority":"99","suggestedMediaType":"Video","status":"Done"}`
	first := normalize(t, raw)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	second, repairs, err := Normalize(encoded, today)
	require.NoError(t, err)
	assert.Empty(t, repairs)
	assert.Equal(t, first, second)
}

func TestNormalizeAll_DropsAndDeduplicates(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"id":"same","headline":"first"}`),
		json.RawMessage(`{"headline":"no id"}`),
		json.RawMessage(`{"id":"same","headline":"second"}`),
		json.RawMessage(`42`),
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	items := NormalizeAll(raws, today, logger)
	require.Len(t, items, 2)
	assert.Equal(t, "same", items[0].ID)
	assert.Equal(t, "first", items[0].Headline)
	assert.NotEqual(t, "same", items[1].ID)
	assert.Equal(t, "second", items[1].Headline)
	assert.Contains(t, buf.String(), "dropping unrecoverable record")
	assert.Contains(t, buf.String(), "duplicate record id re-assigned")
}

func TestSanitize(t *testing.T) {
	item := Sanitize(types.WorkItem{
		ID:       "x",
		Headline: "  padded ",
		Priority: 40,
		Category: "policy",
		Stage:    "Done",
	}, today)

	assert.Equal(t, "padded", item.Headline)
	assert.Equal(t, 5, item.Priority)
	assert.Equal(t, types.CategoryPolicy, item.Category)
	assert.Equal(t, types.StageApproved, item.Stage)
	assert.Equal(t, []string{"Unknown"}, item.SuggestedFormats)
	assert.Equal(t, types.DefaultAssignee, item.Assignee)
	assert.Equal(t, "2025-03-14", item.CreatedDate)
}

func TestCanonicalFields(t *testing.T) {
	fields := map[string]any{
		"suggestedTitle":     "legacy headline",
		"pillar":             "Trust",
		"category":           "Policy",
		"suggestedMediaType": []any{"Video"},
		"extra":              "kept",
	}

	out := CanonicalFields(fields)
	assert.Equal(t, map[string]any{
		"headline":         "legacy headline",
		"category":         "Policy",
		"suggestedFormats": []any{"Video"},
		"extra":            "kept",
	}, out)
	assert.Contains(t, fields, "pillar", "input must not be modified")
}
