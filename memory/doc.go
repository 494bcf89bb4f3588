// Package memory manages the durable, versioned long-term state document of
// a single agent. The document is markdown with YAML frontmatter, stored as
// memory.md inside the agent's directory: the first level-1 heading is the
// document title and every subsequent heading (any level) opens a section.
//
// Sections are addressed case-insensitively by title. The document is
// rewritten whole on every save; the version counter increments and the
// updated timestamp refreshes on each successful save.
package memory
