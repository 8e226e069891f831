// Package executor applies computed change sets to the remote table.
// Creates and updates go out in capped batches over a small worker pool;
// deletes run serially. Failures are isolated per batch and reported in
// the aggregate result instead of aborting the run.
package executor
