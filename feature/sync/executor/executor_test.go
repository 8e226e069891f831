package executor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"douban2feishu/core/feishu"
	feishumocks "douban2feishu/core/feishu/mocks"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testTarget() models.TargetConfig {
	return models.TargetConfig{
		Creds:       feishu.Credentials{AppID: "cli_app", AppSecret: "secret"},
		AppToken:    "bascnApp",
		TableID:     "tblBooks",
		ContentType: catalog.ContentTypeBooks,
	}
}

func testMapping() *models.FieldMapping {
	return &models.FieldMapping{
		ContentType: catalog.ContentTypeBooks,
		Columns: map[string]string{
			catalog.SubjectIDDomainName: "fldSid",
			"title":                     "fldTitle",
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

func manyBooks(n int) []models.DomainRecord {
	records := make([]models.DomainRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, bookRecord("s"+string(rune('0'+i%10))+"x", "Title"))
	}
	return records
}

func TestExecuteSplitsCreatesIntoBatches(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 100, 3, zap.NewNop())
	target := testTarget()

	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks",
		mock.MatchedBy(func(fields []map[string]any) bool { return len(fields) == 100 })).
		Return([]feishu.Record{}, nil).Twice()
	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks",
		mock.MatchedBy(func(fields []map[string]any) bool { return len(fields) == 50 })).
		Return([]feishu.Record{}, nil).Once()

	res := e.Execute(context.Background(), target, testMapping(),
		&models.ChangeSet{ToCreate: manyBooks(250)}, Hooks{})

	assert.Equal(t, 250, res.Created)
	assert.Equal(t, 0, res.Failed)
	client.AssertNumberOfCalls(t, "BatchCreateRecords", 3)
}

func TestExecuteFailedBatchDoesNotAbortRun(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 2, 1, zap.NewNop())
	target := testTarget()

	// The batch holding b1 fails; the other batch and the update phase
	// still run.
	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks",
		mock.MatchedBy(func(fields []map[string]any) bool { return fields[0]["fldSid"] == "b1" })).
		Return(nil, errors.New("field validation failed"))
	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks",
		mock.MatchedBy(func(fields []map[string]any) bool { return fields[0]["fldSid"] == "b3" })).
		Return([]feishu.Record{}, nil)
	client.On("BatchUpdateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks", mock.Anything).
		Return(nil)

	cs := &models.ChangeSet{
		ToCreate: []models.DomainRecord{
			bookRecord("b1", "A"), bookRecord("b2", "B"),
			bookRecord("b3", "C"), bookRecord("b4", "D"),
		},
		ToUpdate: []models.UpdatePair{
			{Incoming: bookRecord("b5", "E"), Existing: feishu.Record{RecordID: "rec5"}},
		},
	}
	res := e.Execute(context.Background(), target, testMapping(), cs, Hooks{})

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Failed)
	if assert.Len(t, res.Errors, 1) {
		assert.Contains(t, res.Errors[0].Message, "field validation failed")
	}
}

func TestExecuteUpdatesCarryRecordIDs(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 100, 1, zap.NewNop())
	target := testTarget()

	client.On("BatchUpdateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks",
		mock.MatchedBy(func(updates []feishu.RecordUpdate) bool {
			return len(updates) == 1 &&
				updates[0].RecordID == "rec1" &&
				updates[0].Fields["fldTitle"] == "New Title"
		})).
		Return(nil)

	cs := &models.ChangeSet{
		ToUpdate: []models.UpdatePair{
			{Incoming: bookRecord("b1", "New Title"), Existing: feishu.Record{RecordID: "rec1"}},
		},
	}
	res := e.Execute(context.Background(), target, testMapping(), cs, Hooks{})

	assert.Equal(t, 1, res.Updated)
	client.AssertExpectations(t)
}

func TestExecuteDeletesSeriallyAndContinuesPastFailure(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 100, 3, zap.NewNop())
	target := testTarget()

	client.On("DeleteRecord", mock.Anything, target.Creds, "bascnApp", "tblBooks", "rec1").
		Return(errors.New("record not found"))
	client.On("DeleteRecord", mock.Anything, target.Creds, "bascnApp", "tblBooks", "rec2").
		Return(nil)

	cs := &models.ChangeSet{
		ToDelete: []feishu.Record{{RecordID: "rec1"}, {RecordID: "rec2"}},
	}
	res := e.Execute(context.Background(), target, testMapping(), cs, Hooks{})

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Failed)
	client.AssertNumberOfCalls(t, "DeleteRecord", 2)
}

func TestExecuteReportsPhasesAndProgress(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 1, 1, zap.NewNop())
	target := testTarget()

	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks", mock.Anything).
		Return([]feishu.Record{}, nil)
	client.On("DeleteRecord", mock.Anything, target.Creds, "bascnApp", "tblBooks", "rec9").
		Return(nil)

	var mu sync.Mutex
	var phases []models.Phase
	var lastProcessed, lastTotal int

	cs := &models.ChangeSet{
		ToCreate: []models.DomainRecord{bookRecord("b1", "A"), bookRecord("b2", "B")},
		ToDelete: []feishu.Record{{RecordID: "rec9"}},
	}
	res := e.Execute(context.Background(), target, testMapping(), cs, Hooks{
		OnPhase: func(phase models.Phase, total int) {
			mu.Lock()
			phases = append(phases, phase)
			mu.Unlock()
		},
		OnProgress: func(processed, total int) {
			mu.Lock()
			lastProcessed, lastTotal = processed, total
			mu.Unlock()
		},
	})

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, []models.Phase{models.PhaseCreating, models.PhaseDeleting}, phases)
	assert.Equal(t, 3, lastProcessed)
	assert.Equal(t, 3, lastTotal)
}

func TestExecuteEmptyChangeSet(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 100, 3, zap.NewNop())

	res := e.Execute(context.Background(), testTarget(), testMapping(), &models.ChangeSet{}, Hooks{})

	assert.Equal(t, &Result{}, res)
	client.AssertNotCalled(t, "BatchCreateRecords")
	client.AssertNotCalled(t, "BatchUpdateRecords")
	client.AssertNotCalled(t, "DeleteRecord")
}

// The progress hook is documented as safe to use without locking, so a
// delta-tracking callback must never observe totals going backwards even
// when batches complete on concurrent workers.
func TestExecuteProgressCallbackNeedsNoLocking(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 1, 3, zap.NewNop())
	target := testTarget()

	client.On("BatchCreateRecords", mock.Anything, target.Creds, "bascnApp", "tblBooks", mock.Anything).
		Return([]feishu.Record{}, nil)

	const n = 40
	prev := 0
	delivered := 0

	cs := &models.ChangeSet{ToCreate: manyBooks(n)}
	res := e.Execute(context.Background(), target, testMapping(), cs, Hooks{
		OnProgress: func(processed, total int) {
			delta := processed - prev
			prev = processed
			assert.Positive(t, delta)
			assert.Equal(t, n, total)
			delivered += delta
		},
	})

	assert.Equal(t, n, res.Created)
	assert.Equal(t, n, delivered)
	assert.Equal(t, n, prev)
}

func TestExecuteCancelledContextFailsRemainingWork(t *testing.T) {
	client := new(feishumocks.Client)
	e := NewExecutor(client, 1, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cs := &models.ChangeSet{
		ToCreate: []models.DomainRecord{bookRecord("b1", "A")},
		ToDelete: []feishu.Record{{RecordID: "rec1"}},
	}
	res := e.Execute(ctx, testTarget(), testMapping(), cs, Hooks{})

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 2, res.Failed)
	client.AssertNotCalled(t, "BatchCreateRecords")
	client.AssertNotCalled(t, "DeleteRecord")
}
