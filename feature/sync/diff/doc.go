// Package diff is the change detection engine.
//
// Given the full current contents of a remote table and the latest
// scraped snapshot, Diff computes the minimal set of creates, updates,
// and deletes that makes the table match the snapshot. Matched pairs are
// compared through a content hash over the mapped field values, computed
// in fixed catalog order on both sides so that identical content always
// hashes identically regardless of source.
//
// Value normalization is shared between hashing and write payloads:
// dates become epoch-millisecond integers, numbers and ratings become
// float64, text-like values become plain strings (remote rich-text
// segments are flattened), and absent values are omitted entirely.
//
// The engine fails open on malformed data: a pair whose hash cannot be
// computed is treated as changed and re-synced rather than silently
// skipped.
package diff
