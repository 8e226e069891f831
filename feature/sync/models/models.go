package models

import (
	"fmt"
	"time"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
)

// DomainRecord is one scraped item from the content provider. SubjectID is
// the stable natural key, unique per content type, and the join key to
// remote rows; it must never be empty.
type DomainRecord struct {
	SubjectID string              `json:"subjectId" validate:"required"`
	Category  catalog.ContentType `json:"category" validate:"required"`
	Values    map[string]any      `json:"values"`
}

// TargetConfig identifies one remote table plus the credentials to reach it.
type TargetConfig struct {
	Creds       feishu.Credentials  `json:"creds"`
	AppToken    string              `json:"appToken" validate:"required"`
	TableID     string              `json:"tableId" validate:"required"`
	ContentType catalog.ContentType `json:"contentType" validate:"required"`
}

// TargetKey returns the scoping key for mappings and sync state.
func (t TargetConfig) TargetKey() string {
	return fmt.Sprintf("%s:%s", t.AppToken, t.TableID)
}

// FieldMapping translates domain field names into remote column IDs for
// one (user, target) pair. Created and mutated only by the mapping
// resolver; a mapping is never applied to two content types.
type FieldMapping struct {
	ContentType     catalog.ContentType `json:"contentType"`
	StrategyVersion int                 `json:"strategyVersion"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	// Columns maps domainName -> remote column ID.
	Columns map[string]string `json:"columns"`
}

// ColumnID returns the remote column ID mapped to a domain field.
func (m *FieldMapping) ColumnID(domainName string) (string, bool) {
	id, ok := m.Columns[domainName]
	return id, ok
}

// UpdatePair joins an incoming record with the remote row it updates.
type UpdatePair struct {
	Incoming DomainRecord
	Existing feishu.Record
}

// ChangeSet is the transformation that makes the remote table match the
// incoming snapshot. The three lists are mutually exclusive by subject ID
// and record ID. It is transient: recomputed every run, never persisted.
type ChangeSet struct {
	ToCreate []DomainRecord
	ToUpdate []UpdatePair
	ToDelete []feishu.Record
}

// Empty reports whether the change set contains no work.
func (cs *ChangeSet) Empty() bool {
	return len(cs.ToCreate) == 0 && len(cs.ToUpdate) == 0 && len(cs.ToDelete) == 0
}

// Options controls a sync run.
type Options struct {
	// FullSync forces every matched record into the update set regardless
	// of its content hash.
	FullSync bool `json:"fullSync"`
	// DeleteOrphans deletes remote rows absent from the incoming snapshot.
	DeleteOrphans bool `json:"deleteOrphans"`
	// OnProgress, if set, is invoked after every batch with running totals.
	OnProgress func(current, total int) `json:"-"`
}

// Phase names the stage a sync run is in.
type Phase string

const (
	PhaseResolving Phase = "resolving"
	PhaseFetching  Phase = "fetching"
	PhaseDiffing   Phase = "diffing"
	PhaseCreating  Phase = "creating"
	PhaseUpdating  Phase = "updating"
	PhaseDeleting  Phase = "deleting"
	PhaseDone      Phase = "done"
)

// SyncState is the coarse, TTL-bounded progress record of a run. It acts
// as a soft lock and a polling surface, not as durable history.
type SyncState struct {
	UserID    string    `json:"userId"`
	TargetKey string    `json:"targetKey"`
	Phase     Phase     `json:"phase"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"startedAt"`
}

// BatchError describes one failed item or batch within a run.
type BatchError struct {
	// Index is the position of the failed batch or record.
	Index int `json:"index"`
	// Message explains the failure.
	Message string `json:"message"`
}

// BatchResult is the outcome of a single batch call.
type BatchResult struct {
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Errors  []BatchError `json:"errors,omitempty"`
}

// RunSummary is the terminal result of one sync run. Success is true only
// when no batch failed. Callers persist it as the durable audit record.
type RunSummary struct {
	RunID      string    `json:"runId"`
	Total      int       `json:"total"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
	Success    bool      `json:"success"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}
