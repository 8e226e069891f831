// Package state tracks in-flight sync runs in the fast store.
//
// A state record is created at run start, advanced at phase boundaries,
// and expires with a short TTL. Callers use it two ways: as a polling
// surface for progress UIs and as an advisory busy-check before starting
// a second run against the same target. Read failures of any kind are
// reported as "no state"; this layer deliberately favors availability
// over strict consistency.
package state
