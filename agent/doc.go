// Package agent resolves and parses agent definition documents stored inside
// a vault. An agent lives in one of three namespaces under the vault root
// (agents/admin, agents/skills, projects); its canonical document is the
// agent.md file inside its directory, a markdown body with YAML frontmatter.
//
// Definitions are parsed fresh on every resolution and never cached, so an
// edit to the document takes effect on the next chat or delivery. Lookups
// report absence as (nil, nil) rather than an error, and malformed documents
// degrade to best-effort defaults instead of failing.
package agent
