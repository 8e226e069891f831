package diff

import (
	"testing"
	"time"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booksMapping() *models.FieldMapping {
	return &models.FieldMapping{
		ContentType:     catalog.ContentTypeBooks,
		StrategyVersion: 1,
		Columns: map[string]string{
			"subjectId":    "fldSid",
			"title":        "fldTitle",
			"doubanRating": "fldDouban",
			"myRating":     "fldRate",
			"markDate":     "fldDate",
			"tags":         "fldTags",
		},
	}
}

func bookRecord(subjectID, title string) models.DomainRecord {
	return models.DomainRecord{
		SubjectID: subjectID,
		Category:  catalog.ContentTypeBooks,
		Values: map[string]any{
			"subjectId": subjectID,
			"title":     title,
		},
	}
}

func TestHashIncoming_Deterministic(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["myRating"] = 5
	rec.Values["tags"] = []any{"小说", "余华"}

	h1, err := HashIncoming(rec, fields, mapping)
	require.NoError(t, err)
	h2, err := HashIncoming(rec, fields, mapping)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Any mapped value change must change the hash.
	rec.Values["myRating"] = 4
	h3, err := HashIncoming(rec, fields, mapping)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashIncoming_UnmappedAndAbsentFieldsIgnored(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	base := bookRecord("100", "活着")
	h1, err := HashIncoming(base, fields, mapping)
	require.NoError(t, err)

	// comment is not in the mapping; absent values add nothing.
	withNoise := bookRecord("100", "活着")
	withNoise.Values["comment"] = "好书"
	withNoise.Values["publisher"] = ""
	h2, err := HashIncoming(withNoise, fields, mapping)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestHash_IncomingAndExistingConverge(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["myRating"] = 4            // int from the snapshot
	rec.Values["markDate"] = "2024-03-01" // date string from the scraper
	rec.Values["rating"] = map[string]any{"average": 8.9}

	markedAt, err := time.ParseInLocation("2006-01-02", "2024-03-01", time.Local)
	require.NoError(t, err)

	remote := feishu.Record{
		RecordID: "r1",
		Fields: map[string]any{
			// Subject ID arrives as a rich-text segment list, numbers as JSON floats.
			"fldSid":    []any{map[string]any{"text": "100", "type": "text"}},
			"fldTitle":  "活着",
			"fldDouban": 8.9,
			"fldRate":   float64(4),
			"fldDate":   float64(markedAt.UnixMilli()),
		},
	}

	incomingHash, err := HashIncoming(rec, fields, mapping)
	require.NoError(t, err)
	existingHash, err := HashExisting(remote, fields, mapping)
	require.NoError(t, err)

	assert.Equal(t, incomingHash, existingHash)
}

func TestHashIncoming_MalformedDateFails(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["markDate"] = "not a date"

	_, err := HashIncoming(rec, fields, mapping)
	assert.Error(t, err)
}

func TestHashIncoming_UnparseableNumberFails(t *testing.T) {
	fields := catalog.Fields(catalog.ContentTypeBooks)
	mapping := booksMapping()

	rec := bookRecord("100", "活着")
	rec.Values["doubanRating"] = "N/A"

	_, err := HashIncoming(rec, fields, mapping)
	assert.Error(t, err)
}

func TestCanonical_WholeFloatsMatchInts(t *testing.T) {
	assert.Equal(t, "4", canonical(float64(4)))
	assert.Equal(t, "4.5", canonical(4.5))
	assert.Equal(t, "1709222400000", canonical(int64(1709222400000)))
	assert.Equal(t, "[a,b]", canonical([]any{"a", "b"}))
}
