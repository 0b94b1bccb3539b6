// Package archive keeps audit reports in SQLite for downstream tooling.
//
// Runs are append-only. Each run row carries the headline figures and the
// canonical JSON of the whole report; weeks, violations and transitions are
// broken out into their own tables so they can be queried directly.
//
// # Ordering
//
// Every query orders by a logical sequence (runs.seq, or the ordinal of a
// finding within its run), never by timestamps.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The archive is write-only from the audit's point of view: no verdict ever
// depends on a previous run.
package archive
