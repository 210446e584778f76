// Package store provides SQLite-backed storage for run records.
//
// Every run executed with a database attached is appended to the runs
// table together with its transcript, so a past run can be listed, read
// back and replayed to confirm the engine still produces the same output.
//
// # Ordering
//
// Records are ordered by seq, a counter assigned at insert time. Queries
// never order by timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Transcripts are stored as canonical JSON, the same bytes that are hashed
// by ir.TranscriptHash.
package store
