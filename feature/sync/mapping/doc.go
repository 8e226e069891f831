// Package mapping resolves content-type catalogs onto remote table columns.
//
// The resolver answers one question: for this user's table, which remote
// column holds each domain field? Answers come from three layers, checked
// in order: the fast cache (30-minute TTL), the persisted store, and a
// live listing of the remote table. Missing columns are created on
// demand, serially, with an adaptive delay sized to the creation queue,
// because schema mutation is the most rate-limited part of the remote API.
//
// Column creation is not idempotent by name on the remote side, so the
// resolver always lists before creating and a persisted assignment always
// wins over name matching. Per-field creation failures are collected and
// returned next to the mapping; deciding whether a missing field aborts a
// sync is the caller's call (a missing Subject ID column must).
package mapping
