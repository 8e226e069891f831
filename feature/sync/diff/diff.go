package diff

import (
	"fmt"

	"douban2feishu/core/feishu"
	"douban2feishu/core/utils"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"go.uber.org/zap"
)

// Options controls change detection.
type Options struct {
	// FullSync forces every matched record into the update set regardless
	// of content hash equality.
	FullSync bool
	// DeleteOrphans adds remote rows absent from the incoming snapshot to
	// the delete set. When false, orphans are left untouched.
	DeleteOrphans bool
}

// Diff computes the change set that makes the remote rows match the
// incoming snapshot. The three result lists are mutually exclusive by
// subject ID and record ID. Hash failures on either side of a matched
// pair conservatively mark the pair as changed.
func Diff(
	existing []feishu.Record,
	incoming []models.DomainRecord,
	mapping *models.FieldMapping,
	fields []catalog.Field,
	opts Options,
	logger *zap.Logger,
) (*models.ChangeSet, error) {
	subjectColumn, ok := mapping.ColumnID(catalog.SubjectIDDomainName)
	if !ok {
		return nil, fmt.Errorf("mapping has no column for %s", catalog.SubjectIDDomainName)
	}

	// Index existing rows by subject ID. Rows without a readable subject
	// ID cannot be matched and are ignored (they also never become
	// deletion candidates: deleting rows we cannot identify is unsafe).
	existingBySubject := make(map[string]feishu.Record, len(existing))
	for _, rec := range existing {
		sid := subjectIDOf(rec, subjectColumn)
		if sid == "" {
			logger.Warn("Skipping remote row without subject ID", zap.String("recordId", rec.RecordID))
			continue
		}
		if _, dup := existingBySubject[sid]; dup {
			logger.Warn("Duplicate subject ID among remote rows, keeping first",
				zap.String("subjectId", sid),
				zap.String("recordId", rec.RecordID),
			)
			continue
		}
		existingBySubject[sid] = rec
	}

	cs := &models.ChangeSet{}
	matched := make(map[string]bool, len(incoming))

	for _, rec := range incoming {
		if matched[rec.SubjectID] {
			logger.Warn("Duplicate subject ID in snapshot, keeping first", zap.String("subjectId", rec.SubjectID))
			continue
		}

		remote, exists := existingBySubject[rec.SubjectID]
		if !exists {
			cs.ToCreate = append(cs.ToCreate, rec)
			matched[rec.SubjectID] = true
			continue
		}
		matched[rec.SubjectID] = true

		if opts.FullSync || changed(rec, remote, fields, mapping, logger) {
			cs.ToUpdate = append(cs.ToUpdate, models.UpdatePair{Incoming: rec, Existing: remote})
		}
	}

	if opts.DeleteOrphans {
		for sid, rec := range existingBySubject {
			if !matched[sid] {
				cs.ToDelete = append(cs.ToDelete, rec)
			}
		}
	}

	return cs, nil
}

// changed compares the content hashes of a matched pair. A hash failure
// on either side treats the pair as changed: re-syncing a record that may
// be current is cheap, silently keeping a stale one is not.
func changed(rec models.DomainRecord, remote feishu.Record, fields []catalog.Field, mapping *models.FieldMapping, logger *zap.Logger) bool {
	incomingHash, err := HashIncoming(rec, fields, mapping)
	if err != nil {
		logger.Warn("Hash failed for incoming record, assuming changed",
			zap.String("subjectId", rec.SubjectID),
			zap.Error(err),
		)
		return true
	}

	existingHash, err := HashExisting(remote, fields, mapping)
	if err != nil {
		logger.Warn("Hash failed for remote row, assuming changed",
			zap.String("recordId", remote.RecordID),
			zap.Error(err),
		)
		return true
	}

	return incomingHash != existingHash
}

// subjectIDOf reads a row's subject ID from the mapped column, flattening
// rich-text shapes and numeric IDs to a plain string.
func subjectIDOf(rec feishu.Record, subjectColumn string) string {
	raw, ok := rec.Fields[subjectColumn]
	if !ok || raw == nil {
		return ""
	}
	if s := flattenText(raw); s != "" {
		return s
	}
	return utils.ToString(raw)
}
