// Package session manages conversational sessions and their append-only
// transcripts on disk. Session metadata lives in a single versioned index
// file under <vault>/sessions; each transcript is a separate JSONL file with
// one immutable record per line.
//
// The index is read, modified and rewritten whole on every update, guarded by
// an in-process mutex. Two processes sharing a vault can therefore race and
// silently drop each other's index changes; the design assumes at most one
// active runtime process per vault and does not attempt inter-process
// locking.
package session
