package diff

import (
	"testing"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestDiff_CreateUpdateSkip covers the canonical scenario: one changed
// match, one new record, unchanged records ignored.
func TestDiff_CreateUpdateSkip(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "Old"}},
	}
	incoming := []models.DomainRecord{
		bookRecord("100", "New"),
		bookRecord("200", "Fresh"),
	}

	cs, err := Diff(existing, incoming, mapping, fields, Options{}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, cs.ToCreate, 1)
	assert.Equal(t, "200", cs.ToCreate[0].SubjectID)

	require.Len(t, cs.ToUpdate, 1)
	assert.Equal(t, "100", cs.ToUpdate[0].Incoming.SubjectID)
	assert.Equal(t, "r1", cs.ToUpdate[0].Existing.RecordID)

	assert.Empty(t, cs.ToDelete)
}

func TestDiff_UnchangedMatchIsSkipped(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "活着"}},
	}
	incoming := []models.DomainRecord{bookRecord("100", "活着")}

	cs, err := Diff(existing, incoming, mapping, fields, Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

// Idempotence: diffing the write payload of a record against itself
// produces no work on the second pass.
func TestDiff_Idempotent(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["myRating"] = 5
	rec.Values["markDate"] = "2024-03-01"
	rec.Values["tags"] = []any{"小说"}

	// Simulate the remote row a create would produce.
	remote := feishu.Record{RecordID: "r1", Fields: Payload(rec, fields, mapping)}

	cs, err := Diff([]feishu.Record{remote}, []models.DomainRecord{rec}, mapping, fields, Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

func TestDiff_FullSyncForcesUpdates(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	remote := feishu.Record{RecordID: "r1", Fields: Payload(rec, fields, mapping)}

	cs, err := Diff([]feishu.Record{remote}, []models.DomainRecord{rec}, mapping, fields, Options{FullSync: true}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cs.ToUpdate, 1)
	assert.Empty(t, cs.ToCreate)
}

func TestDiff_Orphans(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "Old"}},
	}
	incoming := []models.DomainRecord{bookRecord("200", "Fresh")}

	t.Run("deleted when requested", func(t *testing.T) {
		cs, err := Diff(existing, incoming, mapping, fields, Options{DeleteOrphans: true}, zap.NewNop())
		require.NoError(t, err)
		require.Len(t, cs.ToDelete, 1)
		assert.Equal(t, "r1", cs.ToDelete[0].RecordID)
		require.Len(t, cs.ToCreate, 1)
	})

	t.Run("left untouched by default", func(t *testing.T) {
		cs, err := Diff(existing, incoming, mapping, fields, Options{}, zap.NewNop())
		require.NoError(t, err)
		assert.Empty(t, cs.ToDelete)
	})
}

func TestDiff_ListsAreMutuallyExclusive(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "Old"}},
		{RecordID: "r2", Fields: map[string]any{"fldSid": "300", "fldTitle": "Orphan"}},
	}
	incoming := []models.DomainRecord{
		bookRecord("100", "New"),
		bookRecord("200", "Fresh"),
	}

	cs, err := Diff(existing, incoming, mapping, fields, Options{DeleteOrphans: true}, zap.NewNop())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, r := range cs.ToCreate {
		seen[r.SubjectID] = true
	}
	for _, p := range cs.ToUpdate {
		assert.False(t, seen[p.Incoming.SubjectID])
		seen[p.Incoming.SubjectID] = true
	}
	for _, r := range cs.ToDelete {
		sid := subjectIDOf(r, "fldSid")
		assert.False(t, seen[sid])
	}
}

// A malformed value that breaks hashing must conservatively re-sync the
// record instead of skipping it.
func TestDiff_HashFailureAssumesChanged(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["markDate"] = "not a date"

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "活着"}},
	}

	cs, err := Diff(existing, []models.DomainRecord{rec}, mapping, fields, Options{}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cs.ToUpdate, 1)
}

func TestDiff_UnparseableRatingAssumesChanged(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["doubanRating"] = "暂无评分"

	existing := []feishu.Record{
		{RecordID: "r1", Fields: map[string]any{"fldSid": "100", "fldTitle": "活着"}},
	}

	cs, err := Diff(existing, []models.DomainRecord{rec}, mapping, fields, Options{}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cs.ToUpdate, 1)

	// The write payload drops the value it could not normalize.
	payload := Payload(rec, fields, mapping)
	assert.NotContains(t, payload, "fldDouban")
}

func TestDiff_MissingSubjectColumnFails(t *testing.T) {
	mapping := &models.FieldMapping{Columns: map[string]string{"title": "fldTitle"}}

	_, err := Diff(nil, nil, mapping, catalog.Fields(catalog.ContentTypeBooks), Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestPayload_OmitsAbsentAndUnmapped(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["comment"] = "好书" // not mapped
	rec.Values["publisher"] = "" // empty -> absent
	rec.Values["myRating"] = 5

	payload := Payload(rec, fields, mapping)

	assert.Equal(t, "100", payload["fldSid"])
	assert.Equal(t, "活着", payload["fldTitle"])
	assert.Equal(t, float64(5), payload["fldRate"])
	assert.NotContains(t, payload, "fldComment")
	assert.Len(t, payload, 3)
}
