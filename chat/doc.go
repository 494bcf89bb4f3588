// Package chat ties agents, sessions and prompts together into a single
// "send a message, get a reply" operation. The language-model integration is
// a pluggable Handler: when none is wired the orchestrator substitutes a
// deterministic echo responder so callers always receive some reply.
package chat
