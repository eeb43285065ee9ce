package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/media-workflow/internal/persistence"
	"github.com/jonathan/media-workflow/internal/types"
)

func TestSlot_ReadWrite_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	slot := db.Slot("test-" + uuid.NewString())

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, slot.Write(ctx, []byte(`{"version":2,"items":[]}`)))
	require.NoError(t, slot.Write(ctx, []byte(`{"version":2,"items":[{"id":"x"}]}`)))

	data, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"items":[{"id":"x"}]}`, string(data))
}

func TestSlot_AdapterRoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := persistence.NewAdapter(db.Slot("test-"+uuid.NewString()), persistence.Options{})

	items := []types.WorkItem{{
		ID:               uuid.NewString(),
		Headline:         "Flood relief update",
		Priority:         7,
		Category:         types.CategoryUpdate,
		SuggestedFormats: []string{"Video"},
		Assignee:         types.DefaultAssignee,
		Stage:            types.StageBacklog,
		CreatedDate:      "2025-03-02",
	}}
	require.NoError(t, adapter.Save(ctx, items))
	assert.Equal(t, items, adapter.Load(ctx))
}
