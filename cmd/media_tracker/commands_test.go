package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/media-workflow/internal/analysis"
	"github.com/jonathan/media-workflow/internal/report"
	"github.com/jonathan/media-workflow/internal/types"
)

func (e *testEnv) listItems(t *testing.T, stage string) []types.WorkItem {
	t.Helper()
	stdout, _, err := e.run(t, "list", "--json", "--stage", stage)
	require.NoError(t, err)

	var items []types.WorkItem
	require.NoError(t, json.Unmarshal([]byte(stdout), &items), stdout)
	return items
}

func (e *testEnv) add(t *testing.T, headline string, extra ...string) types.WorkItem {
	t.Helper()
	_, _, err := e.run(t, append([]string{"add", "--headline", headline}, extra...)...)
	require.NoError(t, err)

	for _, item := range e.listItems(t, "All") {
		if item.Headline == headline {
			return item
		}
	}
	t.Fatalf("item %q not found after add", headline)
	return types.WorkItem{}
}

func TestAddAndList(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "add", "--headline", "Exports rise", "--priority", "8",
		"--category", "trust", "--formats", "Infographic, Video", "--raw-text", "Exports grew 4%")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Headline:  Exports rise")
	assert.Contains(t, stdout, "Priority:  8 (high)")

	items := env.listItems(t, "All")
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, types.CategoryTrust, item.Category)
	assert.Equal(t, []string{"Infographic", "Video"}, item.SuggestedFormats)
	assert.Equal(t, "Exports grew 4%", item.RawContent)
	assert.Equal(t, types.StageBacklog, item.Stage)
	assert.Equal(t, types.DefaultAssignee, item.Assignee)

	stdout, _, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "HEADLINE")
	assert.Contains(t, stdout, "Exports rise")
}

func TestAddAndAnalyze_KeepRawTextVerbatim(t *testing.T) {
	env := newTestEnv(t)
	paste := "Price   list:\tRice 30 baht\n\n\n\nSugar  <b>20</b> baht"

	stdout, _, err := env.run(t, "analyze", "--json", "--text", paste)
	require.NoError(t, err)
	var out analysisOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, paste, out.RawText)

	_, _, err = env.run(t, "add", "--headline", "Prices", "--raw-text", paste)
	require.NoError(t, err)
	assert.Equal(t, paste, env.listItems(t, "All")[0].RawContent)
}

func TestAdd_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "add")
	assert.Error(t, err, "headline is required")

	_, _, err = env.run(t, "add", "--headline", "x", "--priority", "11")
	assert.ErrorContains(t, err, "priority must be between")

	_, _, err = env.run(t, "add", "--headline", "x", "--category", "Sports")
	assert.ErrorContains(t, err, "unknown category")

	_, _, err = env.run(t, "add", "--headline", "   ")
	assert.ErrorContains(t, err, "headline")

	assert.Empty(t, env.listItems(t, "All"))
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No items\n", stdout)

	_, _, err = env.run(t, "list", "--stage", "Archived")
	assert.ErrorContains(t, err, "unknown stage")
}

func TestMoveAndFilter(t *testing.T) {
	env := newTestEnv(t)
	first := env.add(t, "First")
	env.add(t, "Second")
	third := env.add(t, "Third")

	_, _, err := env.run(t, "move", first.ID, "In Production")
	require.NoError(t, err)
	stdout, _, err := env.run(t, "move", third.ID, "approved")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stage:     Approved")

	backlog := env.listItems(t, "Backlog")
	require.Len(t, backlog, 1)
	assert.Equal(t, "Second", backlog[0].Headline)

	_, _, err = env.run(t, "move", first.ID, "Shipped")
	assert.ErrorContains(t, err, "unknown stage")

	stdout, _, err = env.run(t, "board")
	require.NoError(t, err)
	assert.Contains(t, stdout, "== Backlog (1)")
	assert.Contains(t, stdout, "== In Production (1)")
	assert.Contains(t, stdout, "== Reviewing (0)")
	assert.Contains(t, stdout, "== Approved (1)")
}

func TestEdit(t *testing.T) {
	env := newTestEnv(t)
	item := env.add(t, "Exports rise", "--summary", "keep me")

	stdout, _, err := env.run(t, "edit", item.ID, "--assignee", "Somchai", "--link", "https://example.com/post", "--comment", "looks good")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Assignee:  Somchai")

	edited := env.listItems(t, "All")[0]
	assert.Equal(t, "Somchai", edited.Assignee)
	assert.Equal(t, "https://example.com/post", edited.LiveLink)
	assert.Equal(t, []string{"looks good"}, edited.Comments)
	assert.Equal(t, "keep me", edited.Summary, "fields without flags are unchanged")
	assert.Equal(t, item.Priority, edited.Priority)

	_, _, err = env.run(t, "edit", item.ID, "--link", "shared in the LINE group", "--category", "policy", "--assignee", "  ")
	require.NoError(t, err)
	edited = env.listItems(t, "All")[0]
	assert.Equal(t, "shared in the LINE group", edited.LiveLink)
	assert.Equal(t, types.CategoryPolicy, edited.Category)
	assert.Equal(t, types.DefaultAssignee, edited.Assignee)

	_, _, err = env.run(t, "edit", item.ID, "--category", "Sports")
	assert.ErrorContains(t, err, "invalid patch")
}

func TestToggleFormatTwiceRestores(t *testing.T) {
	env := newTestEnv(t)
	item := env.add(t, "Exports rise", "--formats", "Banner")

	_, _, err := env.run(t, "toggle-format", item.ID, "Video")
	require.NoError(t, err)
	assert.Equal(t, []string{"Banner", "Video"}, env.listItems(t, "All")[0].SuggestedFormats)

	_, _, err = env.run(t, "toggle-format", item.ID, "Video")
	require.NoError(t, err)
	assert.Equal(t, []string{"Banner"}, env.listItems(t, "All")[0].SuggestedFormats)
}

func TestMissingIDIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Exports rise")
	before, err := os.ReadFile(env.dataPath)
	require.NoError(t, err)

	for _, args := range [][]string{
		{"edit", "missing", "--assignee", "x"},
		{"move", "missing", "Approved"},
		{"toggle-format", "missing", "Video"},
		{"remove", "missing"},
	} {
		stdout, _, err := env.run(t, args...)
		require.NoError(t, err, args)
		assert.Equal(t, "No item with id missing\n", stdout, args)
	}

	after, err := os.ReadFile(env.dataPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRemove(t *testing.T) {
	env := newTestEnv(t)
	item := env.add(t, "Exports rise")

	stdout, _, err := env.run(t, "rm", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Removed "+item.ID+"\n", stdout)
	assert.Empty(t, env.listItems(t, "All"))
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	approved := env.add(t, "Approved story", "--formats", "Photo Album,Video")
	env.add(t, "Backlog story")
	_, _, err := env.run(t, "move", approved.ID, "Approved")
	require.NoError(t, err)

	out := filepath.Join(env.dir, "approved.csv")
	stdout, _, err := env.run(t, "export", "--format", "csv", "--stage", "Approved", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 items")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.Headers, rows[0])
	assert.Equal(t, approved.ID[:8], rows[1][0])
	assert.Equal(t, "Photo Album, Video", rows[1][7])
	assert.Equal(t, report.NoLink, rows[1][8])
}

func TestExportXLSXToDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Exports rise")

	_, _, err := env.run(t, "export", "--out", env.dir)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(env.dir, "Report_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestAnalyzeWithoutAPIKeyFallsBack(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "analyze", "--text", "Exports rose 4% in Q3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Analysis unavailable: "+analysis.ReasonNotConfigured)
	assert.Contains(t, stdout, "Category:  Update")

	stdout, _, err = env.run(t, "analyze", "--text", "Exports rose", "--json")
	require.NoError(t, err)
	var out analysisOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Suggestion.Fallback)
	assert.Equal(t, 5, out.Suggestion.Priority)
	assert.Equal(t, "Exports rose", out.RawText)
}

func TestAnalyze_SourceFlags(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "analyze")
	assert.ErrorContains(t, err, "exactly one")

	_, _, err = env.run(t, "analyze", "--text", "a", "--url", "https://example.com")
	assert.ErrorContains(t, err, "exactly one")

	_, _, err = env.run(t, "analyze", filepath.Join(env.dir, "missing.txt"))
	assert.ErrorContains(t, err, "file not found")
}

func TestIngestConfirm(t *testing.T) {
	env := newTestEnv(t)
	first := filepath.Join(env.dir, "first.txt")
	second := filepath.Join(env.dir, "second.html")
	blank := filepath.Join(env.dir, "blank.txt")
	require.NoError(t, os.WriteFile(first, []byte("Ministry approves budget"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("<p>New port opens</p>"), 0o644))
	require.NoError(t, os.WriteFile(blank, []byte("  "), 0o644))

	stdout, stderr, err := env.run(t, "ingest", "--confirm", first, second, blank)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipping "+blank)
	assert.Contains(t, stdout, "Created 0 of 2 items", "fallback suggestions are skipped by default")
	assert.Empty(t, env.listItems(t, "All"))

	stdout, _, err = env.run(t, "ingest", "--confirm", "--include-fallback", "--concurrency", "2", first, second)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created 2 of 2 items")

	items := env.listItems(t, "Backlog")
	require.Len(t, items, 2)
	raw := []string{items[0].RawContent, items[1].RawContent}
	assert.ElementsMatch(t, []string{"Ministry approves budget", "<p>New port opens</p>"}, raw, "files are stored as written")
	assert.Equal(t, analysis.FallbackHeadline, items[0].Headline)
}

func TestIngest_NoReadableSources(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "ingest", filepath.Join(env.dir, "missing.txt"))
	assert.ErrorContains(t, err, "no readable sources")
}

func TestMigrateLegacyDocument(t *testing.T) {
	env := newTestEnv(t)
	legacy := `[
		{"id": "a1", "suggestedTitle": "Old title", "priority": "12", "pillar": "policy",
		 "suggestedMediaType": "Video", "status": "in progress", "date": "2024-03-05T10:00:00"},
		{"id": "a1", "headline": "Duplicate id", "priority": 3, "stage": "Done"},
		{"headline": "No id"}
	]`
	require.NoError(t, os.MkdirAll(filepath.Dir(env.dataPath), 0o755))
	require.NoError(t, os.WriteFile(env.dataPath, []byte(legacy), 0o644))

	stdout, _, err := env.run(t, "migrate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored records:  3 (format version 1)")
	assert.Contains(t, stdout, "Kept records:    2")
	assert.Contains(t, stdout, "Dropped records: 1")
	unchanged, err := os.ReadFile(env.dataPath)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(unchanged))

	_, _, err = env.run(t, "migrate")
	require.NoError(t, err)

	data, err := os.ReadFile(env.dataPath)
	require.NoError(t, err)
	var doc struct {
		Version int              `json:"version"`
		Items   []types.WorkItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.Items, 2)

	old := doc.Items[0]
	assert.Equal(t, "a1", old.ID)
	assert.Equal(t, "Old title", old.Headline)
	assert.Equal(t, 5, old.Priority)
	assert.Equal(t, types.CategoryPolicy, old.Category)
	assert.Equal(t, []string{"Video"}, old.SuggestedFormats)
	assert.Equal(t, types.StageInProduction, old.Stage)
	assert.Equal(t, "2024-03-05", old.CreatedDate)

	dup := doc.Items[1]
	assert.NotEqual(t, "a1", dup.ID)
	assert.Equal(t, types.StageApproved, dup.Stage)
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("storage:\n  backend: redis\n"), 0o644))

	_, _, err := env.run(t, "list")
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c,"))
	assert.Nil(t, splitList(""))
	assert.True(t, isURL("https://example.com"))
	assert.False(t, isURL(strings.TrimSpace(" notes.txt")))
}

func TestVerboseOutput(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Exports rise", "--priority", "9")

	stdout, _, err := env.run(t, "board", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "BACKLOG (1)")
	assert.Contains(t, stdout, "[ 9] Exports rise")

	stdout, _, err = env.run(t, "-v", "analyze", "--text", "Exports rose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SUGGESTION")
	assert.Contains(t, stdout, "Fallback: "+analysis.ReasonNotConfigured)
}

func TestImportMergesAndReassignsIDs(t *testing.T) {
	env := newTestEnv(t)
	existing := env.add(t, "Already tracked")

	backup := filepath.Join(env.dir, "backup.json")
	doc := `{"version":2,"items":[
		{"id":"` + existing.ID + `","headline":"Same id","priority":7,"category":"Policy","suggestedFormats":["Banner"],"stage":"Reviewing","createdDate":"2024-05-01"},
		{"id":"b2","headline":"Fresh","priority":"3"},
		{"id":"b3"}
	]}`
	require.NoError(t, os.WriteFile(backup, []byte(doc), 0o644))

	stdout, _, err := env.run(t, "import", backup)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 of 3 records (format version 2)\n", stdout)

	items := env.listItems(t, "All")
	require.Len(t, items, 3)
	ids := map[string]bool{}
	for _, item := range items {
		assert.False(t, ids[item.ID], "ids stay unique")
		ids[item.ID] = true
	}

	reviewing := env.listItems(t, "Reviewing")
	require.Len(t, reviewing, 1)
	assert.Equal(t, "Same id", reviewing[0].Headline)
	assert.NotEqual(t, existing.ID, reviewing[0].ID)

	_, _, err = env.run(t, "import", filepath.Join(env.dir, "missing.json"))
	assert.Error(t, err)
}
