// Package core provides the foundational domain types shared by the
// AgentVault runtime. It defines the core abstractions for:
//
//   - Agent definitions (identity, kind, scope, free-text sections)
//   - Sessions (bounded conversational contexts with append-only transcripts)
//   - Transcript messages (immutable, ordered conversation records)
//   - Inter-agent messages (structured mailbox deliveries)
//   - Context items (knowledge-base fragments digested for prompts)
//   - A small coded error taxonomy used by the retry classifier
//
// The package intentionally keeps implementation concerns (persistence,
// prompt assembly, orchestration) out of scope, exposing plain data types so
// that stores and orchestrators can evolve independently.
package core
