// Package messaging delivers structured messages between agents in the same
// vault. Each agent owns a mailbox file inside its directory; senders append
// to it and the recipient drains it via an explicit receive call.
//
// Delivery results are reported as values ({success, error string}) rather
// than errors so broadcast fan-out can report partial success per recipient.
// Mailbox files are single-writer-per-agent by convention; there is no
// inter-process locking (one active runtime process per vault is assumed).
package messaging
