// Package prompt composes agent identity, memory, context and conversation
// history into a token-budgeted system prompt for a language-model call.
//
// Token counts are a coarse length heuristic (four characters per token,
// rounded up), deliberately approximate: the default component budgets are
// calibrated against this estimate and must be revisited together with it.
// Assemblies are built fresh per call and never persisted.
package prompt
