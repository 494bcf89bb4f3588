// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer VaultLogger with contextual
// helpers (agent, session, component) and domain specific logging helpers for
// model calls, message deliveries and retry attempts.
package logging
