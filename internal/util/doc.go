// Package util contains small internal helpers shared by the vault stores:
// frontmatter splitting for markdown documents and durable file write
// primitives. It lives in internal to avoid committing to public API
// stability prematurely.
package util
