// Package model defines the language-model handler contract consumed by the
// chat orchestrator, plus a deterministic mock for tests. Provider adapters
// for the official Anthropic and OpenAI SDKs live in subpackages; the
// orchestrator itself never imports a provider directly.
package model
