package core

import "time"

// ContextItem is one knowledge-base fragment relevant to an agent's scope,
// produced by the external content item provider and digested into a context
// snapshot.
type ContextItem struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	ItemType   string    `json:"item_type"`
	EntityName string    `json:"entity_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	SourcePath string    `json:"source_path"`
}

// ContextSections partitions context items into recency buckets. Buckets are
// disjoint and together cover the input set: hot is younger than 14 days,
// warm spans 14 to 45 days, cold is older than 45 days.
type ContextSections struct {
	Hot  []ContextItem `json:"hot"`
	Warm []ContextItem `json:"warm"`
	Cold []ContextItem `json:"cold"`
}

// ContextSnapshot is a regenerate-on-demand digest of the knowledge-base
// items in an agent's scope, persisted to the agent's context document.
type ContextSnapshot struct {
	AgentID     string          `json:"agent_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	ItemCount   int             `json:"item_count"`
	Sections    ContextSections `json:"sections"`
}
