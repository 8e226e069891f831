// Package sync orchestrates incremental synchronization of media records
// into a remote Bitable table: field mapping resolution, content-hash
// change detection, batched application, and run tracking.
package sync
