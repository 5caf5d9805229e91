// Package retry retries connection establishment on transient failures.
//
// Only connecting is retried. Statements issued during a run (DDL, inserts,
// updates) are never wrapped in an Executor: a failed statement aborts the run.
//
// Components:
//   - Classifier: decides whether an error is transient
//   - Backoff: computes the wait before each retry
//   - Executor: runs an operation, retrying while the classifier allows
package retry
