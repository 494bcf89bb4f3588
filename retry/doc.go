// Package retry provides a generic exponential-backoff execution wrapper
// with error classification, lifecycle event notification and escalation.
// Any component calling an unreliable operation (typically the language-model
// handler) wraps the call in a Manager.Execute.
//
// Per operation the state machine is Pending -> Attempting -> {Succeeded |
// Attempting (after backoff) | Escalated}. Non-retryable errors (scope
// violation, authentication failure, invalid input) abort immediately without
// consuming further attempts; everything else is considered transient and
// retried per the configured policy. Escalation fires exactly once, after
// retries are exhausted, delivering the accumulated per-attempt error history
// to a caller-supplied handler. Execute reports failure through its result
// value and never panics; the stateless Do convenience wrapper instead
// returns the final error.
package retry
