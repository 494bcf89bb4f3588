// Package knowledge builds recency-bucketed context snapshots for agents. A
// snapshot digests the knowledge-base items inside an agent's scope into
// three buckets (hot, warm, cold) by elapsed age, renders them as a markdown
// document and persists the result as context.md in the agent's directory.
//
// Snapshots are regenerated on demand rather than updated incrementally;
// staleness is decided by comparing the snapshot file age against a caller
// supplied threshold. The item provider is the only external boundary here:
// provider failures surface as empty results, never as errors.
package knowledge
