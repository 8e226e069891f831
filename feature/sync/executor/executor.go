package executor

import (
	"context"
	"fmt"
	"sync"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/diff"
	"douban2feishu/feature/sync/models"

	"go.uber.org/zap"
)

const (
	defaultBatchSize   = 100
	defaultConcurrency = 3
)

// Hooks lets the caller observe execution. Both fields are optional.
type Hooks struct {
	// OnPhase fires when execution enters the create, update, or delete
	// stage, with the item count of that stage.
	OnPhase func(phase models.Phase, total int)
	// OnProgress fires after every batch with running totals across the
	// whole change set. Calls never overlap, so the callback may keep
	// state of its own without locking.
	OnProgress func(processed, total int)
}

// Result aggregates the per-batch outcomes of applying one change set.
type Result struct {
	Created int
	Updated int
	Deleted int
	Failed  int
	Errors  []models.BatchError
}

// Messages flattens batch errors into human-readable strings.
func (r *Result) Messages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("batch %d: %s", e.Index, e.Message))
	}
	return msgs
}

// Executor applies change sets to a remote table in bounded-concurrency
// batches. A failed batch marks its records failed and the run continues;
// retrying is the caller's decision, never the executor's.
type Executor struct {
	client      feishu.Client
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

// NewExecutor creates an executor. batchSize caps records per write call,
// concurrency caps in-flight write calls.
func NewExecutor(client feishu.Client, batchSize, concurrency int, logger *zap.Logger) *Executor {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Executor{
		client:      client,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// tally is the shared mutable state of one Execute call.
type tally struct {
	mu        sync.Mutex
	result    Result
	processed int
	total     int
	hooks     Hooks
}

// apply folds one batch outcome into the aggregate and reports progress.
// The hook fires under the tally lock so callers see progress updates one
// at a time, in the order the totals advanced.
func (t *tally) apply(br models.BatchResult, counter *int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	*counter += br.Success
	t.result.Failed += br.Failed
	t.result.Errors = append(t.result.Errors, br.Errors...)
	t.processed += br.Success + br.Failed
	if t.hooks.OnProgress != nil {
		t.hooks.OnProgress(t.processed, t.total)
	}
}

func (t *tally) success(n int, counter *int) {
	t.apply(models.BatchResult{Success: n}, counter)
}

func (t *tally) failure(index, n int, msg string) {
	var discard int
	t.apply(models.BatchResult{
		Failed: n,
		Errors: []models.BatchError{{Index: index, Message: msg}},
	}, &discard)
}

// Execute applies a change set: creates first, then updates, then deletes.
// Create and update batches run on a worker pool; deletes go one call at
// a time because the remote API has no batch delete.
func (e *Executor) Execute(ctx context.Context, target models.TargetConfig, mapping *models.FieldMapping, cs *models.ChangeSet, hooks Hooks) *Result {
	t := &tally{
		total: len(cs.ToCreate) + len(cs.ToUpdate) + len(cs.ToDelete),
		hooks: hooks,
	}
	fields := catalog.Fields(target.ContentType)

	if len(cs.ToCreate) > 0 {
		if hooks.OnPhase != nil {
			hooks.OnPhase(models.PhaseCreating, len(cs.ToCreate))
		}
		e.runCreates(ctx, target, mapping, fields, cs.ToCreate, t)
	}
	if len(cs.ToUpdate) > 0 {
		if hooks.OnPhase != nil {
			hooks.OnPhase(models.PhaseUpdating, len(cs.ToUpdate))
		}
		e.runUpdates(ctx, target, mapping, fields, cs.ToUpdate, t)
	}
	if len(cs.ToDelete) > 0 {
		if hooks.OnPhase != nil {
			hooks.OnPhase(models.PhaseDeleting, len(cs.ToDelete))
		}
		e.runDeletes(ctx, target, cs.ToDelete, t)
	}

	e.logger.Info("Applied change set",
		zap.String("targetKey", target.TargetKey()),
		zap.Int("created", t.result.Created),
		zap.Int("updated", t.result.Updated),
		zap.Int("deleted", t.result.Deleted),
		zap.Int("failed", t.result.Failed),
	)
	return &t.result
}

// batch is one unit of pooled work.
type batch struct {
	index int
	size  int
	run   func(ctx context.Context) error
}

// runPool drains batches on e.concurrency workers. Cancellation fails the
// remaining batches instead of dropping them silently.
func (e *Executor) runPool(ctx context.Context, batches []batch, t *tally, counter *int) {
	jobs := make(chan batch, len(batches))
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(e.concurrency)
	for i := 0; i < e.concurrency; i++ {
		go func() {
			defer wg.Done()
			for b := range jobs {
				if err := ctx.Err(); err != nil {
					t.failure(b.index, b.size, err.Error())
					continue
				}
				if err := b.run(ctx); err != nil {
					e.logger.Warn("Batch write failed",
						zap.Int("batch", b.index),
						zap.Int("size", b.size),
						zap.Error(err),
					)
					t.failure(b.index, b.size, err.Error())
					continue
				}
				t.success(b.size, counter)
			}
		}()
	}
	wg.Wait()
}

func (e *Executor) runCreates(ctx context.Context, target models.TargetConfig, mapping *models.FieldMapping, fields []catalog.Field, records []models.DomainRecord, t *tally) {
	var batches []batch
	for start := 0; start < len(records); start += e.batchSize {
		end := min(start+e.batchSize, len(records))
		chunk := records[start:end]

		payloads := make([]map[string]any, 0, len(chunk))
		for _, rec := range chunk {
			payloads = append(payloads, diff.Payload(rec, fields, mapping))
		}
		batches = append(batches, batch{
			index: len(batches),
			size:  len(chunk),
			run: func(ctx context.Context) error {
				_, err := e.client.BatchCreateRecords(ctx, target.Creds, target.AppToken, target.TableID, payloads)
				return err
			},
		})
	}
	e.runPool(ctx, batches, t, &t.result.Created)
}

func (e *Executor) runUpdates(ctx context.Context, target models.TargetConfig, mapping *models.FieldMapping, fields []catalog.Field, pairs []models.UpdatePair, t *tally) {
	var batches []batch
	for start := 0; start < len(pairs); start += e.batchSize {
		end := min(start+e.batchSize, len(pairs))
		chunk := pairs[start:end]

		updates := make([]feishu.RecordUpdate, 0, len(chunk))
		for _, pair := range chunk {
			updates = append(updates, feishu.RecordUpdate{
				RecordID: pair.Existing.RecordID,
				Fields:   diff.Payload(pair.Incoming, fields, mapping),
			})
		}
		batches = append(batches, batch{
			index: len(batches),
			size:  len(chunk),
			run: func(ctx context.Context) error {
				return e.client.BatchUpdateRecords(ctx, target.Creds, target.AppToken, target.TableID, updates)
			},
		})
	}
	e.runPool(ctx, batches, t, &t.result.Updated)
}

// runDeletes removes rows one call at a time. Deletes stay serial so a
// misconfigured orphan sweep can be interrupted early.
func (e *Executor) runDeletes(ctx context.Context, target models.TargetConfig, records []feishu.Record, t *tally) {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			t.failure(i, len(records)-i, fmt.Sprintf("delete %s: %v", rec.RecordID, err))
			return
		}
		if err := e.client.DeleteRecord(ctx, target.Creds, target.AppToken, target.TableID, rec.RecordID); err != nil {
			e.logger.Warn("Delete failed",
				zap.String("recordId", rec.RecordID),
				zap.Error(err),
			)
			t.failure(i, 1, fmt.Sprintf("delete %s: %v", rec.RecordID, err))
			continue
		}
		t.success(1, &t.result.Deleted)
	}
}
