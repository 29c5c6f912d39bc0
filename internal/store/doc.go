// Package store provides a SQLite-backed journal of tokenization runs.
//
// The journal is append-only:
//   - runs: one row per tokenized document (status, pass count, digests)
//   - resolutions: the trace of every token handled during a run
//
// # Ordering
//
// Resolutions are ordered by their logical seq (never by timestamps), so a
// trace reads back in the order the engine produced it. Runs list newest
// first by created_at, ties broken by id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
